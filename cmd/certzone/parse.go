package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/pkg/utils"
	"github.com/spf13/cobra"
)

var errFilesFailed = errors.New("some files were not ingested")

type parseOptions struct {
	schema  string
	files   []string
	archive bool
}

func newParseCmd(root *rootOptions) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Validate and ingest XML files one after another",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.schema == "" {
				opts.schema = root.cfg.SchemaPath
			}
			if opts.schema == "" {
				return errors.New("schema is not set: pass -s or ingest.schema_path")
			}
			return runParse(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "XSD schema (default ingest.schema_path)")
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "XML file to ingest, may be repeated")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "bundle the log files into {timestamp}-results.zip")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runParse(cmd *cobra.Command, root *rootOptions, opts parseOptions) error {
	ctx := cmd.Context()
	cfg := root.cfg

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	logs := make([]string, 0, len(opts.files))
	failed := 0

	for _, file := range opts.files {
		logFile, err := utils.ReserveLogFile(cfg.LogDir, filepath.Base(file), time.Now())
		if err != nil {
			logger.Errorf(ctx, "%s", err.Error())
		}
		logs = append(logs, logFile)

		if a.handler.Handle(ctx, file, opts.schema, "parse", logFile) {
			fmt.Fprintf(out, "%s: OK\n", file)
		} else {
			failed++
			fmt.Fprintf(out, "%s: FAILED, see log %s\n", file, logFile)
		}
	}

	if opts.archive {
		archive, err := utils.ReserveArchive(cfg.LogDir, time.Now())
		if err == nil {
			err = utils.ZipFiles(archive, logs)
		}
		if err != nil {
			logger.Errorf(ctx, "archive logs: %s", err.Error())
		} else {
			fmt.Fprintf(out, "logs: %s\n", archive)
		}
	}

	if failed > 0 {
		return errFilesFailed
	}
	return nil
}

package ingest

import (
	"context"
	"runtime/debug"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/pkg/store"
	"github.com/ougirez/certzone/internal/service/xmlcheck"
	"go.uber.org/zap/zapcore"
)

// Handler processes one file end to end: validate, parse, apply and commit.
type Handler struct {
	store  store.Store
	engine *Engine
	level  zapcore.Level
}

func NewHandler(s store.Store, e *Engine) *Handler {
	return &Handler{store: s, engine: e, level: zapcore.InfoLevel}
}

// Handle reports whether the file was validated and fully ingested.
func (h *Handler) Handle(ctx context.Context, file, schema, loggerName, loggerFile string) bool {
	return h.HandleResult(ctx, file, schema, loggerName, loggerFile).OK
}

// HandleResult is Handle with the details. It never panics and never returns partial writes:
// everything runs in one transaction that is committed only when the whole walk succeeds.
func (h *Handler) HandleResult(ctx context.Context, file, schema, loggerName, loggerFile string) (res domain.FileResult) {
	res = domain.FileResult{File: file, LogFile: loggerFile}

	ctx, closeSink, err := logger.WithFileSink(ctx, loggerName, loggerFile, h.level)
	if err != nil {
		logger.Error(ctx, err.Error())
		res.Failure = domain.FailureInternal
		return res
	}
	defer func() {
		if err := closeSink(); err != nil {
			logger.Errorf(context.Background(), "close log file %s: %s", loggerFile, err.Error())
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "panic while processing %s: %v\n%s", file, r, debug.Stack())
			res.OK = false
			res.Failure = domain.FailureInternal
			res.Outcome = nil
		}
	}()

	logger.Infof(ctx, "processing %s with schema %s", file, schema)

	if report := xmlcheck.NewValidator(schema, file).Validate(ctx); !report.OK() {
		logger.Error(ctx, "XML file failed validation, exiting")
		res.Failure = domain.FailureStructural
		return res
	}

	doc, err := ParseFile(file)
	if err != nil {
		logger.Errorf(ctx, "parse: %s", err.Error())
		res.Failure = domain.KindOf(err)
		return res
	}

	outcome, err := h.apply(ctx, doc)
	if err != nil {
		logger.Errorf(ctx, "%s not ingested: %s", file, err.Error())
		res.Failure = domain.KindOf(err)
		return res
	}

	logger.Infof(ctx, "%s ingested", file)
	res.OK = true
	res.Outcome = &outcome
	return res
}

func (h *Handler) apply(ctx context.Context, doc *dto.CenterDocument) (out domain.Outcome, err error) {
	tx, err := h.store.Begin(ctx)
	if err != nil {
		return out, persistence("begin", err)
	}
	defer func() {
		// после Commit это no-op
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Errorf(ctx, "rollback: %s", rbErr.Error())
		}
	}()

	out, err = h.engine.Apply(ctx, tx, doc)
	if err != nil {
		return out, err
	}

	logger.Info(ctx, "committing transaction")
	if err = tx.Commit(ctx); err != nil {
		return out, persistence("commit", err)
	}
	logger.Info(ctx, "transaction committed")

	return out, nil
}

package utils

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ougirez/certzone/internal/pkg/constants"
)

// LogFileName returns "{dir}/{input filename}-{timestamp}.log".
func LogFileName(dir, input string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.log", filepath.Base(input), now.Format(constants.LogTimeLayout)))
}

// ArchiveName returns "{dir}/{timestamp}-results.zip".
func ArchiveName(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-results.zip", now.Format(constants.LogTimeLayout)))
}

const maxReserveAttempts = 1000

// ReserveLogFile creates an empty log file for input and returns its path. The name is
// LogFileName, with "-1", "-2"... appended when that is already taken, so two inputs never share
// a log even with equal base names and timestamps. On failure the unsuffixed name is returned
// along with the error.
func ReserveLogFile(dir, input string, now time.Time) (string, error) {
	return reserve(LogFileName(dir, input, now))
}

// ReserveArchive is ReserveLogFile for ArchiveName.
func ReserveArchive(dir string, now time.Time) (string, error) {
	return reserve(ArchiveName(dir, now))
}

func reserve(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	for i := 0; i < maxReserveAttempts; i++ {
		candidate := path
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}

		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		switch {
		case errors.Is(err, fs.ErrExist):
			continue
		case err != nil:
			return path, fmt.Errorf("reserve %s: %w", candidate, err)
		}
		return candidate, f.Close()
	}
	return path, fmt.Errorf("reserve %s: %d names already taken", path, maxReserveAttempts)
}

// ZipFiles packs files (by base name) into a new archive at dst.
func ZipFiles(dst string, files []string) (err error) {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive %s: %w", dst, closeErr)
		}
	}()

	zw := zip.NewWriter(out)
	for _, name := range files {
		if err = addToZip(zw, name); err != nil {
			_ = zw.Close()
			return err
		}
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("finish archive %s: %w", dst, err)
	}
	return nil
}

func addToZip(zw *zip.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	w, err := zw.Create(filepath.Base(name))
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	if _, err = io.Copy(w, f); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

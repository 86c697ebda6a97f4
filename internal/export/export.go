// Package export renders a user's transactions as CSV, XLSX or PDF files.
// Every writer is a pure transform of the slice it is given; row order is
// preserved.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

// ErrNoTransactions is returned when there is nothing to write.
var ErrNoTransactions = errors.New("no transactions to export")

// Header is the column layout shared by the CSV and XLSX exports.
var Header = []string{"ID", "User ID", "Price", "Category", "Type", "Date", "Description"}

// Formats lists every supported format.
func Formats() []Format {
	return []Format{CSV, XLSX, PDF}
}

// ParseFormat accepts a format name or file extension; "excel" is an alias
// for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Write renders txs to w in format f.
func Write(w io.Writer, f Format, txs []core.Transaction) error {
	if len(txs) == 0 {
		return ErrNoTransactions
	}
	switch f {
	case CSV:
		return WriteCSV(w, txs)
	case XLSX:
		return WriteXLSX(w, txs)
	case PDF:
		return WritePDF(w, txs)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteFile renders txs into path. A partially written file is removed.
func WriteFile(path string, f Format, txs []core.Transaction) (err error) {
	if len(txs) == 0 {
		return ErrNoTransactions
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Write(file, f, txs); err != nil {
		return fmt.Errorf("write %s export: %w", f, err)
	}
	return nil
}

// WriteAll writes one file per format into dir, named base plus the format
// extension, and returns the paths in Formats order.
func WriteAll(ctx context.Context, dir, base string, txs []core.Transaction) ([]string, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	formats := Formats()
	paths := make([]string, len(formats))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		path := filepath.Join(dir, base+f.Extension())
		paths[i] = path
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return WriteFile(path, f, txs)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

const flushInterval = 100_000

// EnrichedWriter writes enriched claim rows to a Parquet file.
type EnrichedWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[EnrichedRow]
	count  int64
}

// NewEnrichedWriter creates a new Parquet writer for enriched claims.
func NewEnrichedWriter(path string) (*EnrichedWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create enriched parquet: %w", err)
	}
	writer := parquet.NewGenericWriter[EnrichedRow](file,
		parquet.Compression(&parquet.Snappy),
	)
	return &EnrichedWriter{file: file, writer: writer}, nil
}

// Write writes a single enriched row.
func (w *EnrichedWriter) Write(row EnrichedRow) error {
	if _, err := w.writer.Write([]EnrichedRow{row}); err != nil {
		return fmt.Errorf("write enriched row: %w", err)
	}
	w.count++
	if w.count%flushInterval == 0 {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("flush enriched rows: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the writer.
func (w *EnrichedWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close enriched writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the number of rows written.
func (w *EnrichedWriter) Count() int64 { return w.count }

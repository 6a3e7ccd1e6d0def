package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteLookupCSV writes the canonical code table as a flat delimited file:
// code,description,code_type,source,year.
func WriteLookupCSV(path string, codes []CanonicalCode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)

	if err := w.Write([]string{"code", "description", "code_type", "source", "year"}); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range codes {
		row := []string{c.Code, c.Description, c.CodeType, c.Source, strconv.Itoa(c.Year)}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write code %s: %w", c.Code, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return f.Close()
}

// WriteValueSetCSV writes the value-set side table:
// code,definition,value_sets.
func WriteValueSetCSV(path string, mappings []ValueSetMapping) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)

	if err := w.Write([]string{"code", "definition", "value_sets"}); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range mappings {
		if err := w.Write([]string{m.Code, m.Definition, m.ValueSets}); err != nil {
			f.Close()
			return fmt.Errorf("write code %s: %w", m.Code, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return f.Close()
}

package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readLookupCSV opens a lookup artifact and hands each data row to fn,
// with a column accessor built from the header.
func readLookupCSV(path string, fn func(col func(string) string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 256*1024))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		col := func(name string) string {
			if i, ok := idx[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		if err := fn(col); err != nil {
			return err
		}
	}
}

// LoadCodeLookup reads the comprehensive code lookup into a map keyed by
// code. The enrichment join is many-claims-to-one-code; a duplicate code
// here would fan rows out, so it is detected at load time and fails loud.
func LoadCodeLookup(path string) (map[string]CodeInfo, error) {
	codes := make(map[string]CodeInfo)
	err := readLookupCSV(path, func(col func(string) string) error {
		code := col("code")
		if code == "" {
			return nil
		}
		if _, dup := codes[code]; dup {
			return fmt.Errorf("duplicate code %s in lookup %s", code, path)
		}
		year, _ := strconv.Atoi(col("year"))
		codes[code] = CodeInfo{
			Description: col("description"),
			CodeType:    col("code_type"),
			Source:      col("source"),
			Year:        int32(year),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// LoadValueSets reads the value-set mapping into a map keyed by code,
// with the same duplicate-key fan-out guard as the code lookup.
func LoadValueSets(path string) (map[string]ValueSetInfo, error) {
	sets := make(map[string]ValueSetInfo)
	err := readLookupCSV(path, func(col func(string) string) error {
		code := col("code")
		if code == "" {
			return nil
		}
		if _, dup := sets[code]; dup {
			return fmt.Errorf("duplicate code %s in value sets %s", code, path)
		}
		sets[code] = ValueSetInfo{
			Definition: col("definition"),
			ValueSets:  col("value_sets"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}

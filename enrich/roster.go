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

// LoadRoster reads the provider registry extract
// (npi,org_name,address_1,address_2,city,state,zip,taxonomy_code,taxonomy_desc)
// into a map keyed by NPI. The split address-line fields collapse into one
// normalized address string. A duplicate NPI would fan out the provider
// joins, so it fails the load.
func LoadRoster(path string) (map[int64]Provider, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer file.Close()

	bufReader := bufio.NewReaderSize(file, 256*1024)
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["npi"]; !ok {
		return nil, fmt.Errorf("roster %s: no npi column", path)
	}

	col := func(row []string, name string) string {
		if i, ok := idx[name]; ok && i < len(row) {
			return strings.ToValidUTF8(strings.TrimSpace(row[i]), "�")
		}
		return ""
	}

	roster := make(map[int64]Provider)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row: %w", err)
		}
		npiStr := col(row, "npi")
		if npiStr == "" {
			continue
		}
		npi, err := strconv.ParseInt(npiStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NPI %q: %w", npiStr, err)
		}
		if _, dup := roster[npi]; dup {
			return nil, fmt.Errorf("duplicate NPI %d in roster", npi)
		}
		roster[npi] = Provider{
			NPI:     npi,
			OrgName: col(row, "org_name"),
			Address: normalizeAddress(
				col(row, "address_1"),
				col(row, "address_2"),
				col(row, "city"),
				col(row, "state"),
				col(row, "zip"),
			),
			TaxonomyCode: col(row, "taxonomy_code"),
			TaxonomyDesc: col(row, "taxonomy_desc"),
		}
	}
	return roster, nil
}

// normalizeAddress concatenates address-line fields into one string with
// all runs of whitespace collapsed to single spaces.
func normalizeAddress(parts ...string) string {
	joined := strings.Join(parts, " ")
	return strings.Join(strings.Fields(joined), " ")
}

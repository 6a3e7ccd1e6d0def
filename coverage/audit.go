package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

const readBatch = 8192

// classOf maps a row's resolving source to its audit class. The two
// current official sources are reported separately so an operator can see
// what each contributes; any per-vintage source lands in other_source.
func classOf(source *string) string {
	if source == nil {
		return ClassUnresolved
	}
	switch *source {
	case "hcpcs":
		return ClassCurrentDictionary
	case "hedis":
		return ClassQualityCodebook
	default:
		return ClassOtherSource
	}
}

// Audit makes a single read-only pass over the enriched claims, tallying
// coverage per distinct code and per claim volume, and collecting the
// topN unresolved codes by volume.
func Audit(reader *parquet.GenericReader[EnrichedRow], topN int) (*AuditResult, error) {
	tallies := make(map[string]*CodeTally)
	result := &AuditResult{
		DistinctByClass: make(map[string]int64),
		ClaimsByClass:   make(map[string]int64),
	}

	buf := make([]EnrichedRow, readBatch)
	for {
		n, readErr := reader.Read(buf)

		for i := 0; i < n; i++ {
			row := buf[i]
			result.TotalRows++
			result.TotalClaims += row.ClaimCount

			class := classOf(row.CodeSource)
			result.ClaimsByClass[class] += row.ClaimCount

			t, ok := tallies[row.ProcedureCode]
			if !ok {
				t = &CodeTally{Code: row.ProcedureCode, Class: class}
				tallies[row.ProcedureCode] = t
			}
			t.Rows++
			t.Claims += row.ClaimCount
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, fmt.Errorf("read enriched claims: %w", readErr)
		}
	}

	result.Codes = make([]CodeTally, 0, len(tallies))
	for _, t := range tallies {
		result.DistinctByClass[t.Class]++
		result.Codes = append(result.Codes, *t)
	}
	sort.Slice(result.Codes, func(i, j int) bool {
		return result.Codes[i].Code < result.Codes[j].Code
	})

	var unresolved []CodeTally
	for _, t := range result.Codes {
		if t.Class == ClassUnresolved {
			unresolved = append(unresolved, t)
		}
	}
	sort.Slice(unresolved, func(i, j int) bool {
		if unresolved[i].Claims != unresolved[j].Claims {
			return unresolved[i].Claims > unresolved[j].Claims
		}
		return unresolved[i].Code < unresolved[j].Code
	})
	if topN > 0 && len(unresolved) > topN {
		unresolved = unresolved[:topN]
	}
	result.TopUnresolved = unresolved

	return result, nil
}

// DistinctCodes returns the number of distinct procedure codes seen.
func (a *AuditResult) DistinctCodes() int64 {
	return int64(len(a.Codes))
}

// DistinctCoverage is the fraction of distinct codes that resolved to a
// description, in percent.
func (a *AuditResult) DistinctCoverage() float64 {
	total := a.DistinctCodes()
	if total == 0 {
		return 0
	}
	return float64(total-a.DistinctByClass[ClassUnresolved]) / float64(total) * 100
}

// ClaimCoverage is the fraction of claim volume carried by resolved
// codes, in percent.
func (a *AuditResult) ClaimCoverage() float64 {
	if a.TotalClaims == 0 {
		return 0
	}
	return float64(a.TotalClaims-a.ClaimsByClass[ClassUnresolved]) / float64(a.TotalClaims) * 100
}

// WriteCoverageCSV writes the per-code coverage table:
// code,rows,claims,resolved,source_class.
func WriteCoverageCSV(path string, result *AuditResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)

	if err := w.Write([]string{"code", "rows", "claims", "resolved", "source_class"}); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range result.Codes {
		resolved := "true"
		if t.Class == ClassUnresolved {
			resolved = "false"
		}
		row := []string{
			t.Code,
			strconv.FormatInt(t.Rows, 10),
			strconv.FormatInt(t.Claims, 10),
			resolved,
			t.Class,
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write code %s: %w", t.Code, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return f.Close()
}

package main

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/parquet-go/parquet-go"
)

const readBatch = 8192

// EnrichStats tracks one enrichment run.
type EnrichStats struct {
	RowsScanned     int64
	RowsKept        int64
	RowsWritten     int64
	CodeMisses      int64
	BillingMisses   int64
	ServicingMisses int64
	BadMonths       int64
}

// Enricher streams the claims fact table, keeps rows naming a roster
// provider in either role, and left-joins code and provider attributes.
// The roster predicate runs inside the scan loop: unmatched claims are
// never materialized beyond the read buffer, which is what lets the
// source be orders of magnitude larger than memory.
type Enricher struct {
	roster    map[int64]Provider
	codes     map[string]CodeInfo
	valueSets map[string]ValueSetInfo
	verbose   bool
}

// NewEnricher creates an enricher over eagerly-loaded lookup tables.
func NewEnricher(roster map[int64]Provider, codes map[string]CodeInfo, valueSets map[string]ValueSetInfo, verbose bool) *Enricher {
	return &Enricher{
		roster:    roster,
		codes:     codes,
		valueSets: valueSets,
		verbose:   verbose,
	}
}

// Run scans the claims reader and writes enriched rows. Every join is
// many-to-one on a unique key, so the written row count must equal the
// roster-matched row count exactly; any difference is a join bug and
// fails the run.
func (e *Enricher) Run(reader *parquet.GenericReader[ClaimRow], writer *EnrichedWriter) (*EnrichStats, error) {
	stats := &EnrichStats{}
	buf := make([]ClaimRow, readBatch)
	lastLog := time.Now()
	start := time.Now()

	for {
		n, readErr := reader.Read(buf)

		for i := 0; i < n; i++ {
			row := buf[i]
			stats.RowsScanned++

			_, billingHit := e.roster[row.BillingNPI]
			_, servicingHit := e.roster[row.ServicingNPI]
			if !billingHit && !servicingHit {
				continue
			}
			stats.RowsKept++

			if err := writer.Write(e.enrichRow(row, stats)); err != nil {
				return nil, err
			}
			stats.RowsWritten++

			if e.verbose && time.Since(lastLog) >= 5*time.Second {
				elapsed := time.Since(start).Seconds()
				log.Printf("  progress: %d scanned, %d kept (%.0f rows/s)",
					stats.RowsScanned, stats.RowsKept, float64(stats.RowsScanned)/elapsed)
				lastLog = time.Now()
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, fmt.Errorf("read claims: %w", readErr)
		}
	}

	if stats.RowsWritten != stats.RowsKept {
		return nil, fmt.Errorf("enrichment changed row count: kept %d, wrote %d",
			stats.RowsKept, stats.RowsWritten)
	}
	return stats, nil
}

// enrichRow widens one filtered claim. A code or provider id with no
// match leaves its enrichment columns nil; the claim itself is retained.
func (e *Enricher) enrichRow(row ClaimRow, stats *EnrichStats) EnrichedRow {
	period, ok := claimPeriod(row.ClaimMonth)
	if !ok {
		stats.BadMonths++
	}

	out := EnrichedRow{
		BillingNPI:    row.BillingNPI,
		ServicingNPI:  row.ServicingNPI,
		ProcedureCode: row.ProcedureCode,
		ClaimPeriod:   period,
		ClaimCount:    row.ClaimCount,
		BeneCount:     row.BeneCount,
		PaidAmount:    row.PaidAmount,
	}

	if info, ok := e.codes[row.ProcedureCode]; ok {
		out.CodeDescription = strPtr(info.Description)
		out.CodeType = strPtr(info.CodeType)
		out.CodeSource = strPtr(info.Source)
		year := info.Year
		out.CodeYear = &year
	} else {
		stats.CodeMisses++
	}

	if vs, ok := e.valueSets[row.ProcedureCode]; ok {
		out.HEDISDefinition = strPtr(vs.Definition)
		out.CodeValueSets = strPtr(vs.ValueSets)
	}

	if p, ok := e.roster[row.BillingNPI]; ok {
		out.BillingName = strPtr(p.OrgName)
		out.BillingAddress = strPtr(p.Address)
		out.BillingTaxonomyCode = strPtr(p.TaxonomyCode)
		out.BillingTaxonomyDesc = strPtr(p.TaxonomyDesc)
	} else {
		stats.BillingMisses++
	}

	if p, ok := e.roster[row.ServicingNPI]; ok {
		out.ServicingName = strPtr(p.OrgName)
		out.ServicingAddress = strPtr(p.Address)
		out.ServicingTaxonomyCode = strPtr(p.TaxonomyCode)
		out.ServicingTaxonomyDesc = strPtr(p.TaxonomyDesc)
	} else {
		stats.ServicingMisses++
	}

	return out
}

// claimPeriod derives a "YYYY-MM" period from the packed YYYYMM month.
// Reports false for values that cannot be a real month; the raw value is
// not carried forward.
func claimPeriod(packed int32) (string, bool) {
	year := packed / 100
	month := packed % 100
	if year < 1900 || year > 2999 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", year, month), true
}

func strPtr(s string) *string { return &s }

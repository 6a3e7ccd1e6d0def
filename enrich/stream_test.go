package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func writeClaimsParquet(t *testing.T, rows []ClaimRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create claims parquet: %v", err)
	}
	w := parquet.NewGenericWriter[ClaimRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write claims: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func readEnrichedParquet(t *testing.T, path string) []EnrichedRow {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open enriched parquet: %v", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[EnrichedRow](f)
	defer reader.Close()

	rows := make([]EnrichedRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		t.Fatalf("read enriched: %v", err)
	}
	return rows[:n]
}

func runEnrich(t *testing.T, claims []ClaimRow, roster map[int64]Provider,
	codes map[string]CodeInfo, valueSets map[string]ValueSetInfo) ([]EnrichedRow, *EnrichStats) {
	t.Helper()

	claimsPath := writeClaimsParquet(t, claims)
	f, err := os.Open(claimsPath)
	if err != nil {
		t.Fatalf("open claims: %v", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[ClaimRow](f)
	defer reader.Close()

	outPath := filepath.Join(t.TempDir(), "enriched.parquet")
	writer, err := NewEnrichedWriter(outPath)
	if err != nil {
		t.Fatalf("NewEnrichedWriter: %v", err)
	}

	stats, err := NewEnricher(roster, codes, valueSets, false).Run(reader, writer)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return readEnrichedParquet(t, outPath), stats
}

func testRoster() map[int64]Provider {
	return map[int64]Provider{
		1234567890: {
			NPI:          1234567890,
			OrgName:      "Riverbend Behavioral Health",
			Address:      "100 Main St Springfield IL 62701",
			TaxonomyCode: "101YM0800X",
			TaxonomyDesc: "Counselor, Mental Health",
		},
		1987654321: {
			NPI:          1987654321,
			OrgName:      "Riverbend Outpatient Clinic",
			Address:      "200 Oak Ave Springfield IL 62702",
			TaxonomyCode: "261QM0801X",
			TaxonomyDesc: "Clinic/Center, Mental Health",
		},
	}
}

func testCodes() map[string]CodeInfo {
	return map[string]CodeInfo{
		"H0001": {Description: "Alcohol and/or drug assessment", CodeType: "HCPCS_Level_II", Source: "hcpcs", Year: 2024},
		"90791": {Description: "Psychiatric diagnostic evaluation", CodeType: "CPT", Source: "cpt_2023", Year: 2023},
	}
}

func TestEnrichEndToEnd(t *testing.T) {
	claims := []ClaimRow{
		// Code and billing provider both resolve.
		{BillingNPI: 1234567890, ServicingNPI: 5555555555, ProcedureCode: "H0001",
			ClaimMonth: 202403, ClaimCount: 12, BeneCount: 9, PaidAmount: 1450.25},
		// Unknown code, servicing provider resolves.
		{BillingNPI: 5555555555, ServicingNPI: 1987654321, ProcedureCode: "X9999",
			ClaimMonth: 202404, ClaimCount: 3, BeneCount: 3, PaidAmount: 210.00},
		// Neither provider on the roster: dropped by the filter.
		{BillingNPI: 7777777777, ServicingNPI: 8888888888, ProcedureCode: "H0001",
			ClaimMonth: 202403, ClaimCount: 40, BeneCount: 28, PaidAmount: 9000.00},
	}
	valueSets := map[string]ValueSetInfo{
		"H0001": {Definition: "Alcohol and/or drug assessment", ValueSets: "AOD Abuse and Dependence;IET Stand Alone Visits"},
	}

	rows, stats := runEnrich(t, claims, testRoster(), testCodes(), valueSets)

	if len(rows) != 2 {
		t.Fatalf("got %d enriched rows, want 2", len(rows))
	}
	if stats.RowsScanned != 3 || stats.RowsKept != 2 || stats.RowsWritten != 2 {
		t.Errorf("stats = %+v", stats)
	}

	// Row 0: full resolution on code and billing role.
	r := rows[0]
	if r.CodeDescription == nil || *r.CodeDescription != "Alcohol and/or drug assessment" {
		t.Errorf("row[0].CodeDescription = %v", r.CodeDescription)
	}
	if r.CodeType == nil || *r.CodeType != "HCPCS_Level_II" {
		t.Errorf("row[0].CodeType = %v", r.CodeType)
	}
	if r.CodeValueSets == nil || *r.CodeValueSets != "AOD Abuse and Dependence;IET Stand Alone Visits" {
		t.Errorf("row[0].CodeValueSets = %v", r.CodeValueSets)
	}
	if r.ClaimPeriod != "2024-03" {
		t.Errorf("row[0].ClaimPeriod = %q", r.ClaimPeriod)
	}
	if r.BillingName == nil || *r.BillingName != "Riverbend Behavioral Health" {
		t.Errorf("row[0].BillingName = %v", r.BillingName)
	}
	if r.BillingTaxonomyCode == nil || *r.BillingTaxonomyCode != "101YM0800X" {
		t.Errorf("row[0].BillingTaxonomyCode = %v", r.BillingTaxonomyCode)
	}
	// Servicing NPI 5555555555 is off-roster: null columns, row retained.
	if r.ServicingName != nil {
		t.Errorf("row[0].ServicingName = %q, want nil", *r.ServicingName)
	}
	if r.ClaimCount != 12 || r.BeneCount != 9 || r.PaidAmount != 1450.25 {
		t.Errorf("row[0] measures = %d/%d/%f", r.ClaimCount, r.BeneCount, r.PaidAmount)
	}

	// Row 1: unknown code stays with null code columns; servicing role matched.
	r = rows[1]
	if r.CodeDescription != nil {
		t.Errorf("row[1].CodeDescription = %q, want nil", *r.CodeDescription)
	}
	if r.CodeSource != nil {
		t.Errorf("row[1].CodeSource = %q, want nil", *r.CodeSource)
	}
	if r.ServicingName == nil || *r.ServicingName != "Riverbend Outpatient Clinic" {
		t.Errorf("row[1].ServicingName = %v", r.ServicingName)
	}
	if r.BillingName != nil {
		t.Errorf("row[1].BillingName = %q, want nil", *r.BillingName)
	}

	if stats.CodeMisses != 1 {
		t.Errorf("CodeMisses = %d, want 1", stats.CodeMisses)
	}
	if stats.BillingMisses != 1 || stats.ServicingMisses != 1 {
		t.Errorf("provider misses = %d/%d, want 1/1", stats.BillingMisses, stats.ServicingMisses)
	}
}

func TestEnrichRowCountConservation(t *testing.T) {
	// Every roster-matched row must come out exactly once, across code
	// hits, code misses, and either provider role matching.
	var claims []ClaimRow
	for i := 0; i < 500; i++ {
		row := ClaimRow{
			BillingNPI:    1234567890,
			ServicingNPI:  1987654321,
			ProcedureCode: "H0001",
			ClaimMonth:    202401,
			ClaimCount:    1,
		}
		switch i % 4 {
		case 1:
			row.ProcedureCode = "NOPE"
		case 2:
			row.BillingNPI = 42 // off roster
		case 3:
			row.ServicingNPI = 42
		}
		claims = append(claims, row)
	}
	// Plus some rows dropped entirely.
	for i := 0; i < 100; i++ {
		claims = append(claims, ClaimRow{BillingNPI: 1, ServicingNPI: 2, ProcedureCode: "H0001", ClaimMonth: 202401})
	}

	rows, stats := runEnrich(t, claims, testRoster(), testCodes(), nil)

	if stats.RowsScanned != 600 {
		t.Errorf("RowsScanned = %d, want 600", stats.RowsScanned)
	}
	if len(rows) != 500 {
		t.Errorf("enriched rows = %d, want 500", len(rows))
	}
	if stats.RowsWritten != stats.RowsKept {
		t.Errorf("written %d != kept %d", stats.RowsWritten, stats.RowsKept)
	}
}

func TestEnrichBadMonth(t *testing.T) {
	claims := []ClaimRow{
		{BillingNPI: 1234567890, ServicingNPI: 1234567890, ProcedureCode: "H0001", ClaimMonth: 202413, ClaimCount: 1},
		{BillingNPI: 1234567890, ServicingNPI: 1234567890, ProcedureCode: "H0001", ClaimMonth: 0, ClaimCount: 1},
	}
	rows, stats := runEnrich(t, claims, testRoster(), testCodes(), nil)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (bad months must not drop rows)", len(rows))
	}
	for i, r := range rows {
		if r.ClaimPeriod != "" {
			t.Errorf("row[%d].ClaimPeriod = %q, want empty", i, r.ClaimPeriod)
		}
	}
	if stats.BadMonths != 2 {
		t.Errorf("BadMonths = %d, want 2", stats.BadMonths)
	}
}

func TestClaimPeriod(t *testing.T) {
	cases := []struct {
		packed int32
		want   string
		ok     bool
	}{
		{202403, "2024-03", true},
		{201912, "2019-12", true},
		{202400, "", false},
		{202413, "", false},
		{0, "", false},
		{-202403, "", false},
		{99912, "", false},
	}
	for _, c := range cases {
		got, ok := claimPeriod(c.packed)
		if got != c.want || ok != c.ok {
			t.Errorf("claimPeriod(%d) = (%q, %v), want (%q, %v)", c.packed, got, ok, c.want, c.ok)
		}
	}
}

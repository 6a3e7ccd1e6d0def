package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bhclaims/reportdb/db"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parquet-go/parquet-go"
)

// loadReportToPg loads the consolidated code lookup CSV, the provider
// roster CSV, and the enriched claims Parquet into PostgreSQL. Any input
// path may be empty, in which case that artifact is skipped.
func loadReportToPg(ctx context.Context, lookupPath, rosterPath, enrichedPath, connStr string, initSchema bool, batchSize int) error {
	start := time.Now()

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	fmt.Println("Connected to PostgreSQL")

	if initSchema {
		if _, err := pool.Exec(ctx, db.Schema); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		fmt.Println("Schema initialized")
	}

	var codeCount int
	if lookupPath != "" {
		codeCount, err = loadCodeLookup(ctx, pool, lookupPath)
		if err != nil {
			return err
		}
		fmt.Printf("Code lookup: %d codes from %s\n", codeCount, lookupPath)
	}

	var providerCount int
	if rosterPath != "" {
		providerCount, err = loadProviders(ctx, pool, rosterPath)
		if err != nil {
			return err
		}
		fmt.Printf("Providers: %d from %s\n", providerCount, rosterPath)
	}

	var claimCount int64
	if enrichedPath != "" {
		claimCount, err = loadEnrichedClaims(ctx, pool, enrichedPath, batchSize, start)
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	fmt.Println()
	fmt.Printf("Done in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Codes:       %d\n", codeCount)
	fmt.Printf("  Providers:   %d\n", providerCount)
	fmt.Printf("  Claim rows:  %d\n", claimCount)
	if claimCount > 0 {
		fmt.Printf("  Throughput:  %.0f rows/s\n", float64(claimCount)/elapsed.Seconds())
	}
	return nil
}

// loadCodeLookup upserts the code lookup dimension inside one transaction.
func loadCodeLookup(ctx context.Context, pool *pgxpool.Pool, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open lookup: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read lookup header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"code", "description", "code_type", "source", "year"} {
		if _, ok := colIdx[col]; !ok {
			return 0, fmt.Errorf("lookup %s: missing column %q", path, col)
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	q := db.New(tx)

	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read lookup row: %w", err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(rec[colIdx["year"]]))
		if err != nil {
			return 0, fmt.Errorf("lookup row %d: bad year %q: %w", count+2, rec[colIdx["year"]], err)
		}

		if err := q.UpsertCode(ctx, db.UpsertCodeParams{
			Code:        rec[colIdx["code"]],
			Description: sanitizeUTF8(rec[colIdx["description"]]),
			CodeType:    rec[colIdx["code_type"]],
			Source:      rec[colIdx["source"]],
			Year:        int32(year),
		}); err != nil {
			return 0, fmt.Errorf("upsert code %s: %w", rec[colIdx["code"]], err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit lookup: %w", err)
	}
	return count, nil
}

// loadProviders upserts the provider roster
// (npi,org_name,address_1,address_2,city,state,zip,taxonomy_code,taxonomy_desc)
// inside one transaction, collapsing the split address-line fields the same
// way the enrichment stage does.
func loadProviders(ctx context.Context, pool *pgxpool.Pool, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read roster header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := colIdx["npi"]; !ok {
		return 0, fmt.Errorf("roster %s: no npi column", path)
	}
	col := func(row []string, name string) string {
		if i, ok := colIdx[name]; ok && i < len(row) {
			return sanitizeUTF8(strings.TrimSpace(row[i]))
		}
		return ""
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	q := db.New(tx)

	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read roster row: %w", err)
		}
		npiStr := col(rec, "npi")
		if npiStr == "" {
			continue
		}
		npi, err := strconv.ParseInt(npiStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid NPI %q: %w", npiStr, err)
		}

		address := strings.Join(strings.Fields(strings.Join([]string{
			col(rec, "address_1"), col(rec, "address_2"),
			col(rec, "city"), col(rec, "state"), col(rec, "zip"),
		}, " ")), " ")

		if err := q.UpsertProvider(ctx, db.UpsertProviderParams{
			Npi:          npi,
			OrgName:      col(rec, "org_name"),
			Address:      address,
			TaxonomyCode: col(rec, "taxonomy_code"),
			TaxonomyDesc: col(rec, "taxonomy_desc"),
		}); err != nil {
			return 0, fmt.Errorf("upsert provider %d: %w", npi, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit roster: %w", err)
	}
	return count, nil
}

// loadEnrichedClaims streams the enriched Parquet into enriched_claims
// with batched COPY.
func loadEnrichedClaims(ctx context.Context, pool *pgxpool.Pool, path string, batchSize int, start time.Time) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open enriched: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat enriched: %w", err)
	}

	reader := parquet.NewGenericReader[EnrichedRow](f)
	defer reader.Close()

	totalRows := reader.NumRows()
	fmt.Printf("Claims: %s (%.1f MB, %d rows)\n", path, float64(fi.Size())/1024/1024, totalRows)

	q := db.New(pool)

	const readBatch = 8192
	buf := make([]EnrichedRow, readBatch)
	pending := make([]db.InsertEnrichedClaimsParams, 0, batchSize)

	var (
		rowsRead int64
		copied   int64
		lastLog  = time.Now()
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := q.InsertEnrichedClaims(ctx, pending)
		if err != nil {
			return fmt.Errorf("copy enriched_claims: %w", err)
		}
		copied += n
		pending = pending[:0]
		return nil
	}

	for {
		n, readErr := reader.Read(buf)

		for i := 0; i < n; i++ {
			rowsRead++
			pending = append(pending, claimParams(&buf[i]))

			if len(pending) >= batchSize {
				if err := flush(); err != nil {
					return copied, err
				}
			}

			if time.Since(lastLog) >= 5*time.Second {
				elapsed := time.Since(start).Seconds()
				pct := float64(rowsRead) / float64(totalRows) * 100
				fmt.Printf("  progress: %d/%d rows (%.1f%%) | %d copied (%.0f rows/s)\n",
					rowsRead, totalRows, pct, copied, float64(rowsRead)/elapsed)
				lastLog = time.Now()
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return copied, fmt.Errorf("read enriched: %w", readErr)
		}
	}

	if err := flush(); err != nil {
		return copied, err
	}

	if copied != rowsRead {
		return copied, fmt.Errorf("load changed row count: read %d, copied %d", rowsRead, copied)
	}
	return copied, nil
}

func claimParams(r *EnrichedRow) db.InsertEnrichedClaimsParams {
	return db.InsertEnrichedClaimsParams{
		BillingNpi:            r.BillingNPI,
		ServicingNpi:          r.ServicingNPI,
		ProcedureCode:         r.ProcedureCode,
		ClaimPeriod:           r.ClaimPeriod,
		ClaimCount:            r.ClaimCount,
		BeneCount:             r.BeneCount,
		PaidAmount:            r.PaidAmount,
		CodeDescription:       optToPgText(r.CodeDescription),
		CodeType:              optToPgText(r.CodeType),
		CodeSource:            optToPgText(r.CodeSource),
		CodeYear:              optToPgInt4(r.CodeYear),
		HedisDefinition:       optToPgText(r.HEDISDefinition),
		CodeValueSets:         optToPgText(r.CodeValueSets),
		BillingName:           optToPgText(r.BillingName),
		BillingAddress:        optToPgText(r.BillingAddress),
		BillingTaxonomyCode:   optToPgText(r.BillingTaxonomyCode),
		BillingTaxonomyDesc:   optToPgText(r.BillingTaxonomyDesc),
		ServicingName:         optToPgText(r.ServicingName),
		ServicingAddress:      optToPgText(r.ServicingAddress),
		ServicingTaxonomyCode: optToPgText(r.ServicingTaxonomyCode),
		ServicingTaxonomyDesc: optToPgText(r.ServicingTaxonomyDesc),
	}
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with spaces.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, " ")
}

func optToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: sanitizeUTF8(*s), Valid: true}
}

func optToPgInt4(n *int32) pgtype.Int4 {
	if n == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: *n, Valid: true}
}

package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const upsertCode = `
INSERT INTO code_lookup (code, description, code_type, source, year)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (code) DO UPDATE
SET description = EXCLUDED.description,
    code_type   = EXCLUDED.code_type,
    source      = EXCLUDED.source,
    year        = EXCLUDED.year
`

type UpsertCodeParams struct {
	Code        string
	Description string
	CodeType    string
	Source      string
	Year        int32
}

func (q *Queries) UpsertCode(ctx context.Context, arg UpsertCodeParams) error {
	_, err := q.db.Exec(ctx, upsertCode,
		arg.Code, arg.Description, arg.CodeType, arg.Source, arg.Year)
	return err
}

const upsertProvider = `
INSERT INTO providers (npi, org_name, address, taxonomy_code, taxonomy_desc)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (npi) DO UPDATE
SET org_name      = EXCLUDED.org_name,
    address       = EXCLUDED.address,
    taxonomy_code = EXCLUDED.taxonomy_code,
    taxonomy_desc = EXCLUDED.taxonomy_desc
`

type UpsertProviderParams struct {
	Npi          int64
	OrgName      string
	Address      string
	TaxonomyCode string
	TaxonomyDesc string
}

func (q *Queries) UpsertProvider(ctx context.Context, arg UpsertProviderParams) error {
	_, err := q.db.Exec(ctx, upsertProvider,
		arg.Npi, arg.OrgName, arg.Address, arg.TaxonomyCode, arg.TaxonomyDesc)
	return err
}

const countProviders = `SELECT count(*) FROM providers`

func (q *Queries) CountProviders(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countProviders).Scan(&count)
	return count, err
}

const getProvider = `
SELECT org_name, address, taxonomy_code, taxonomy_desc
FROM providers
WHERE npi = $1
`

type GetProviderRow struct {
	OrgName      string
	Address      string
	TaxonomyCode string
	TaxonomyDesc string
}

func (q *Queries) GetProvider(ctx context.Context, npi int64) (GetProviderRow, error) {
	var row GetProviderRow
	err := q.db.QueryRow(ctx, getProvider, npi).
		Scan(&row.OrgName, &row.Address, &row.TaxonomyCode, &row.TaxonomyDesc)
	return row, err
}

type InsertEnrichedClaimsParams struct {
	BillingNpi            int64
	ServicingNpi          int64
	ProcedureCode         string
	ClaimPeriod           string
	ClaimCount            int64
	BeneCount             int64
	PaidAmount            float64
	CodeDescription       pgtype.Text
	CodeType              pgtype.Text
	CodeSource            pgtype.Text
	CodeYear              pgtype.Int4
	HedisDefinition       pgtype.Text
	CodeValueSets         pgtype.Text
	BillingName           pgtype.Text
	BillingAddress        pgtype.Text
	BillingTaxonomyCode   pgtype.Text
	BillingTaxonomyDesc   pgtype.Text
	ServicingName         pgtype.Text
	ServicingAddress      pgtype.Text
	ServicingTaxonomyCode pgtype.Text
	ServicingTaxonomyDesc pgtype.Text
}

// InsertEnrichedClaims bulk-inserts claim rows via COPY and returns the
// number of rows written.
func (q *Queries) InsertEnrichedClaims(ctx context.Context, arg []InsertEnrichedClaimsParams) (int64, error) {
	return q.db.CopyFrom(
		ctx,
		pgx.Identifier{"enriched_claims"},
		[]string{
			"billing_npi", "servicing_npi", "procedure_code", "claim_period",
			"claim_count", "bene_count", "paid_amount",
			"code_description", "code_type", "code_source", "code_year",
			"hedis_definition", "code_value_sets",
			"billing_name", "billing_address", "billing_taxonomy_code", "billing_taxonomy_desc",
			"servicing_name", "servicing_address", "servicing_taxonomy_code", "servicing_taxonomy_desc",
		},
		pgx.CopyFromSlice(len(arg), func(i int) ([]interface{}, error) {
			r := arg[i]
			return []interface{}{
				r.BillingNpi, r.ServicingNpi, r.ProcedureCode, r.ClaimPeriod,
				r.ClaimCount, r.BeneCount, r.PaidAmount,
				r.CodeDescription, r.CodeType, r.CodeSource, r.CodeYear,
				r.HedisDefinition, r.CodeValueSets,
				r.BillingName, r.BillingAddress, r.BillingTaxonomyCode, r.BillingTaxonomyDesc,
				r.ServicingName, r.ServicingAddress, r.ServicingTaxonomyCode, r.ServicingTaxonomyDesc,
			}, nil
		}),
	)
}

const countCodes = `SELECT count(*) FROM code_lookup`

func (q *Queries) CountCodes(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCodes).Scan(&count)
	return count, err
}

const getCode = `
SELECT description, code_type, source, year
FROM code_lookup
WHERE code = $1
`

type GetCodeRow struct {
	Description string
	CodeType    string
	Source      string
	Year        int32
}

func (q *Queries) GetCode(ctx context.Context, code string) (GetCodeRow, error) {
	var row GetCodeRow
	err := q.db.QueryRow(ctx, getCode, code).
		Scan(&row.Description, &row.CodeType, &row.Source, &row.Year)
	return row, err
}

const countClaims = `SELECT count(*) FROM enriched_claims`

func (q *Queries) CountClaims(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countClaims).Scan(&count)
	return count, err
}

const countUnresolvedClaims = `
SELECT count(*) FROM enriched_claims WHERE code_source IS NULL
`

func (q *Queries) CountUnresolvedClaims(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countUnresolvedClaims).Scan(&count)
	return count, err
}

const getClaimEnrichment = `
SELECT claim_period, paid_amount, code_description, code_source,
       billing_name, servicing_taxonomy_code
FROM enriched_claims
WHERE procedure_code = $1
ORDER BY id
LIMIT 1
`

type GetClaimEnrichmentRow struct {
	ClaimPeriod           string
	PaidAmount            float64
	CodeDescription       pgtype.Text
	CodeSource            pgtype.Text
	BillingName           pgtype.Text
	ServicingTaxonomyCode pgtype.Text
}

func (q *Queries) GetClaimEnrichment(ctx context.Context, procedureCode string) (GetClaimEnrichmentRow, error) {
	var row GetClaimEnrichmentRow
	err := q.db.QueryRow(ctx, getClaimEnrichment, procedureCode).
		Scan(&row.ClaimPeriod, &row.PaidAmount, &row.CodeDescription,
			&row.CodeSource, &row.BillingName, &row.ServicingTaxonomyCode)
	return row, err
}

const listClaimPeriods = `
SELECT DISTINCT claim_period FROM enriched_claims ORDER BY claim_period
`

func (q *Queries) ListClaimPeriods(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listClaimPeriods)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

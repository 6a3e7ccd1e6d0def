package main

// ClaimRow is one (provider pair, code, month) aggregate from the claims
// fact table. Read-only source of truth; the scan filters and joins but
// never mutates it.
type ClaimRow struct {
	BillingNPI    int64   `parquet:"billing_npi"`
	ServicingNPI  int64   `parquet:"servicing_npi"`
	ProcedureCode string  `parquet:"procedure_code"`
	ClaimMonth    int32   `parquet:"claim_month"` // packed YYYYMM
	ClaimCount    int64   `parquet:"claim_count"`
	BeneCount     int64   `parquet:"bene_count"`
	PaidAmount    float64 `parquet:"paid_amount"`
}

// EnrichedRow is a ClaimRow widened with resolved code attributes and
// role-prefixed provider attributes for the billing and servicing role.
// Enrichment columns are optional: a lookup miss leaves them null, it
// never drops the row.
type EnrichedRow struct {
	BillingNPI    int64   `parquet:"billing_npi"`
	ServicingNPI  int64   `parquet:"servicing_npi"`
	ProcedureCode string  `parquet:"procedure_code"`
	ClaimPeriod   string  `parquet:"claim_period"` // "YYYY-MM", empty if the packed month was malformed
	ClaimCount    int64   `parquet:"claim_count"`
	BeneCount     int64   `parquet:"bene_count"`
	PaidAmount    float64 `parquet:"paid_amount"`

	CodeDescription *string `parquet:"code_description,optional"`
	CodeType        *string `parquet:"code_type,optional"`
	CodeSource      *string `parquet:"code_source,optional"`
	CodeYear        *int32  `parquet:"code_year,optional"`
	HEDISDefinition *string `parquet:"hedis_definition,optional"`
	CodeValueSets   *string `parquet:"code_value_sets,optional"`

	BillingName         *string `parquet:"billing_name,optional"`
	BillingAddress      *string `parquet:"billing_address,optional"`
	BillingTaxonomyCode *string `parquet:"billing_taxonomy_code,optional"`
	BillingTaxonomyDesc *string `parquet:"billing_taxonomy_desc,optional"`

	ServicingName         *string `parquet:"servicing_name,optional"`
	ServicingAddress      *string `parquet:"servicing_address,optional"`
	ServicingTaxonomyCode *string `parquet:"servicing_taxonomy_code,optional"`
	ServicingTaxonomyDesc *string `parquet:"servicing_taxonomy_desc,optional"`
}

// Provider is one roster entry: a provider of interest with its
// organization name, normalized address, and taxonomy classification.
type Provider struct {
	NPI          int64
	OrgName      string
	Address      string
	TaxonomyCode string
	TaxonomyDesc string
}

// CodeInfo is one comprehensive-lookup entry joined onto claims by code.
type CodeInfo struct {
	Description string
	CodeType    string
	Source      string
	Year        int32
}

// ValueSetInfo is one value-set mapping entry joined onto claims by code.
type ValueSetInfo struct {
	Definition string
	ValueSets  string
}

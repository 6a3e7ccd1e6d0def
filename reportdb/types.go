package main

// EnrichedRow mirrors the enriched claims Parquet schema produced by the
// enrich stage.
type EnrichedRow struct {
	BillingNPI    int64   `parquet:"billing_npi"`
	ServicingNPI  int64   `parquet:"servicing_npi"`
	ProcedureCode string  `parquet:"procedure_code"`
	ClaimPeriod   string  `parquet:"claim_period"`
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

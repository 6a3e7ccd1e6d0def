package main

import "regexp"

// Source tags for the two current official reference sources. CPT addendum
// vintages get per-year tags from cptSourceTag so two files never share one.
const (
	SourceHCPCS = "hcpcs"
	SourceHEDIS = "hedis"
)

// Code type classifications.
const (
	CodeTypeCPT     = "CPT"
	CodeTypeLevelII = "HCPCS_Level_II"
	CodeTypeOther   = "Other"
)

// CodeRecord is one (code, source) row as read from a reference file.
type CodeRecord struct {
	Code        string
	Description string
	Source      string
	Year        int
}

// CanonicalCode is the winning record for one distinct code after
// consolidation. One row per code, persisted as the comprehensive lookup.
type CanonicalCode struct {
	Code        string
	Description string
	CodeType    string
	Source      string
	Year        int
}

// HEDISRow is one quality-measure codebook row, already filtered to the
// procedure coding systems of interest.
type HEDISRow struct {
	Code         string
	CodingSystem string
	ValueSetName string
	Definition   string
}

// ValueSetMapping is one row of the code → value-set side table.
// ValueSets is the ordered-unique set of value-set names joined with
// valueSetSep.
type ValueSetMapping struct {
	Code       string
	Definition string
	ValueSets  string
}

var (
	cptCodeRe     = regexp.MustCompile(`^[0-9]{5}$`)
	levelIICodeRe = regexp.MustCompile(`^[A-Z][0-9]{4}$`)
)

// CodeTypeOf classifies a procedure code by its lexical form alone.
// Exactly 5 numeric digits is CPT, an uppercase letter followed by 4
// digits is HCPCS Level II, everything else is Other. Total: every code
// gets exactly one type.
func CodeTypeOf(code string) string {
	switch {
	case cptCodeRe.MatchString(code):
		return CodeTypeCPT
	case levelIICodeRe.MatchString(code):
		return CodeTypeLevelII
	default:
		return CodeTypeOther
	}
}

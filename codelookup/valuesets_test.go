package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildValueSetMappings(t *testing.T) {
	rows := []HEDISRow{
		{Code: "H0001", CodingSystem: "HCPCS", ValueSetName: "AOD Abuse and Dependence", Definition: "Alcohol and/or drug assessment"},
		{Code: "H0001", CodingSystem: "HCPCS", ValueSetName: "IET Stand Alone Visits", Definition: "Alcohol and/or drug assessment"},
		{Code: "H0001", CodingSystem: "HCPCS", ValueSetName: "AOD Abuse and Dependence", Definition: "Alcohol and/or drug assessment"},
		{Code: "90791", CodingSystem: "CPT", ValueSetName: "Mental Health Visit", Definition: "Psychiatric diagnostic evaluation"},
	}

	mappings, err := BuildValueSetMappings(rows)
	if err != nil {
		t.Fatalf("BuildValueSetMappings: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("got %d mappings, want 2", len(mappings))
	}

	// Sorted by code.
	if mappings[0].Code != "90791" || mappings[1].Code != "H0001" {
		t.Fatalf("codes = %q, %q", mappings[0].Code, mappings[1].Code)
	}

	// Ordered-unique value sets, round-trippable through the separator.
	got := strings.Split(mappings[1].ValueSets, valueSetSep)
	want := []string{"AOD Abuse and Dependence", "IET Stand Alone Visits"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("value sets = %v, want %v", got, want)
	}
	if mappings[1].Definition != "Alcohol and/or drug assessment" {
		t.Errorf("definition = %q", mappings[1].Definition)
	}
}

func TestBuildValueSetMappingsConflictingDefinition(t *testing.T) {
	rows := []HEDISRow{
		{Code: "H0001", ValueSetName: "A", Definition: "first wording"},
		{Code: "H0001", ValueSetName: "B", Definition: "second wording"},
	}
	if _, err := BuildValueSetMappings(rows); err == nil {
		t.Fatal("expected error for conflicting definitions, got nil")
	} else if !strings.Contains(err.Error(), "H0001") {
		t.Errorf("error %q does not name the code", err)
	}
}

func TestBuildValueSetMappingsSkipsEmptyCodes(t *testing.T) {
	rows := []HEDISRow{
		{Code: "", ValueSetName: "A", Definition: "stray"},
		{Code: "H2019", ValueSetName: "A", Definition: "therapeutic behavioral services"},
	}
	mappings, err := BuildValueSetMappings(rows)
	if err != nil {
		t.Fatalf("BuildValueSetMappings: %v", err)
	}
	if len(mappings) != 1 || mappings[0].Code != "H2019" {
		t.Fatalf("mappings = %v, want single H2019 row", mappings)
	}
}

package main

import (
	"fmt"
	"sort"
	"strings"
)

// valueSetSep joins the ordered-unique value-set names for one code.
// Splitting the stored string on it reproduces the original set.
const valueSetSep = ";"

// BuildValueSetMappings groups the codebook rows by code, collecting the
// value-set names in discovery order with duplicates removed, and pairs
// each code with its single definition. A code carrying two distinct
// definitions is a source-data anomaly, not a tolerable condition: the
// build fails rather than silently picking one. Output is sorted by code.
func BuildValueSetMappings(rows []HEDISRow) ([]ValueSetMapping, error) {
	defs := make(map[string]string)
	sets := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, r := range rows {
		if r.Code == "" {
			continue
		}
		if prev, ok := defs[r.Code]; ok {
			if r.Definition != "" && r.Definition != prev {
				return nil, fmt.Errorf("code %s has conflicting definitions: %q vs %q",
					r.Code, prev, r.Definition)
			}
		} else if r.Definition != "" {
			defs[r.Code] = r.Definition
		}

		if r.ValueSetName == "" {
			continue
		}
		if seen[r.Code] == nil {
			seen[r.Code] = make(map[string]bool)
		}
		if !seen[r.Code][r.ValueSetName] {
			seen[r.Code][r.ValueSetName] = true
			sets[r.Code] = append(sets[r.Code], r.ValueSetName)
		}
	}

	out := make([]ValueSetMapping, 0, len(defs))
	for code, def := range defs {
		out = append(out, ValueSetMapping{
			Code:       code,
			Definition: def,
			ValueSets:  strings.Join(sets[code], valueSetSep),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

package main

import (
	"sort"
	"strings"
)

// PriorityPolicy controls how candidate records for the same code are
// ranked. The published rule: Level II entries from the current official
// sources win outright; everything else ranks by descending vintage, with
// a fixed source order breaking equal years. Whether CPT entries from the
// current sources should also get the top tier is an open policy question
// with the domain owner; the shipped table preserves the existing
// behavior.
type PriorityPolicy struct {
	// CurrentSources are the official current reference sources whose
	// Level-II entries take the highest tier. Earlier entries win within
	// the tier.
	CurrentSources []string
}

// DefaultPriorityPolicy ranks the current HCPCS dictionary ahead of the
// quality codebook.
func DefaultPriorityPolicy() PriorityPolicy {
	return PriorityPolicy{CurrentSources: []string{SourceHCPCS, SourceHEDIS}}
}

// rankKey sorts ascending: lower key wins.
type rankKey [3]int

func rankLess(a, b rankKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// sourceOrder fixes the ranking of source kinds at equal vintage.
func sourceOrder(source string) int {
	switch {
	case source == SourceHCPCS:
		return 0
	case source == SourceHEDIS:
		return 1
	case strings.HasPrefix(source, "cpt_"):
		return 2
	default:
		return 3
	}
}

// rank computes the priority key for one candidate. Tier 0 is reserved for
// Level-II records from a current source; all other records land in tier 1
// ranked by descending year then source order. The key is a strict total
// order over (source, type) pairs, so ties can only come from literal
// duplicate rows within one source file.
func (p PriorityPolicy) rank(rec CodeRecord, codeType string) rankKey {
	if codeType == CodeTypeLevelII {
		for i, s := range p.CurrentSources {
			if rec.Source == s {
				return rankKey{0, i, 0}
			}
		}
	}
	return rankKey{1, -rec.Year, sourceOrder(rec.Source)}
}

// Consolidate folds the per-source record slices into one canonical table
// with exactly one row per distinct code: the highest-priority candidate
// under the policy. Duplicate rows from the identical source are resolved
// to the lexicographically smallest description, so the result depends
// only on the set of input records, never on their order. Output is
// sorted by code.
func Consolidate(sources [][]CodeRecord, policy PriorityPolicy) []CanonicalCode {
	best := make(map[string]CanonicalCode)
	bestKey := make(map[string]rankKey)

	for _, records := range sources {
		for _, rec := range records {
			if rec.Code == "" {
				continue
			}
			codeType := CodeTypeOf(rec.Code)
			key := policy.rank(rec, codeType)

			cur, exists := best[rec.Code]
			switch {
			case !exists, rankLess(key, bestKey[rec.Code]):
			case key == bestKey[rec.Code] && rec.Description < cur.Description:
			default:
				continue
			}
			best[rec.Code] = CanonicalCode{
				Code:        rec.Code,
				Description: rec.Description,
				CodeType:    codeType,
				Source:      rec.Source,
				Year:        rec.Year,
			}
			bestKey[rec.Code] = key
		}
	}

	out := make([]CanonicalCode, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// TypeBreakdown counts canonical codes per code type.
func TypeBreakdown(codes []CanonicalCode) map[string]int {
	counts := make(map[string]int)
	for _, c := range codes {
		counts[c.CodeType]++
	}
	return counts
}

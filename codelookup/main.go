package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

func main() {
	hcpcsFile := flag.String("hcpcs", "", "Current HCPCS dictionary CSV (supports .gz)")
	hcpcsYear := flag.Int("hcpcs-year", time.Now().Year(), "Vintage year of the HCPCS dictionary")
	cptDir := flag.String("cptdir", "", "Directory of CPT addendum .zip archives (year in filename)")
	hedisFile := flag.String("hedis", "", "Quality-measure codebook CSV (supports .gz)")
	hedisYear := flag.Int("hedis-year", time.Now().Year(), "Vintage year of the codebook")
	outLookup := flag.String("out", "code_lookup.csv", "Output comprehensive code lookup CSV")
	outValueSets := flag.String("valuesets", "value_sets.csv", "Output value-set mapping CSV")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codelookup - Consolidate procedure-code reference sources

Merges the current HCPCS dictionary, CPT addendum vintages, and the
quality-measure codebook into one priority-ranked code lookup, and builds
the code → value-set side table. A missing source is skipped with a
warning; consolidation proceeds with whatever sources are available.

Usage:
  codelookup [-hcpcs file] [-cptdir dir] [-hedis file] [-out file] [-valuesets file]

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	start := time.Now()
	var sources [][]CodeRecord

	if *hcpcsFile != "" {
		records, err := ReadHCPCSDictionary(*hcpcsFile, *hcpcsYear)
		if err != nil {
			log.Printf("WARNING: skipping HCPCS dictionary: %v", err)
		} else {
			log.Printf("%s: %d records (%s)", SourceHCPCS, len(records), *hcpcsFile)
			sources = append(sources, records)
		}
	}

	if *cptDir != "" {
		archives, err := filepath.Glob(filepath.Join(*cptDir, "*.zip"))
		if err != nil {
			log.Printf("WARNING: listing %s: %v", *cptDir, err)
		}
		sort.Strings(archives)
		for _, archive := range archives {
			year, records, err := ReadCPTAddendum(archive)
			if err != nil {
				log.Printf("WARNING: skipping %s: %v", filepath.Base(archive), err)
				continue
			}
			log.Printf("%s: %d records (%s)", cptSourceTag(year), len(records), filepath.Base(archive))
			sources = append(sources, records)
		}
	}

	var hedisRows []HEDISRow
	if *hedisFile != "" {
		rows, err := ReadHEDISCodebook(*hedisFile)
		if err != nil {
			log.Printf("WARNING: skipping codebook: %v", err)
		} else {
			hedisRows = rows
			records := hedisCodeRecords(rows, *hedisYear)
			log.Printf("%s: %d codebook rows, %d distinct codes (%s)",
				SourceHEDIS, len(rows), len(records), *hedisFile)
			sources = append(sources, records)
		}
	}

	if len(sources) == 0 {
		log.Fatal("no reference sources could be read")
	}

	codes := Consolidate(sources, DefaultPriorityPolicy())
	if err := WriteLookupCSV(*outLookup, codes); err != nil {
		log.Fatalf("write lookup: %v", err)
	}

	breakdown := TypeBreakdown(codes)
	fmt.Printf("\nComprehensive code lookup: %d codes (%s)\n", len(codes), *outLookup)
	for _, ct := range []string{CodeTypeCPT, CodeTypeLevelII, CodeTypeOther} {
		fmt.Printf("  %-16s %d\n", ct+":", breakdown[ct])
	}

	if len(hedisRows) > 0 {
		mappings, err := BuildValueSetMappings(hedisRows)
		if err != nil {
			log.Fatalf("value-set mapping: %v", err)
		}
		if err := WriteValueSetCSV(*outValueSets, mappings); err != nil {
			log.Fatalf("write value sets: %v", err)
		}
		fmt.Printf("Value-set mapping: %d codes (%s)\n", len(mappings), *outValueSets)
	}

	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

func main() {
	claimsFile := flag.String("claims", "", "Claims fact table Parquet (required)")
	rosterFile := flag.String("roster", "", "Provider roster CSV (required)")
	lookupFile := flag.String("lookup", "", "Comprehensive code lookup CSV (required)")
	valueSetsFile := flag.String("valuesets", "", "Value-set mapping CSV (optional)")
	outputFile := flag.String("out", "enriched_claims.parquet", "Output enriched claims Parquet")
	verbose := flag.Bool("v", false, "Verbose output with progress updates")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `enrich - Filter claims to the provider roster and join enrichment attributes

Streams the claims Parquet, keeps rows where the billing or servicing NPI
is on the roster, and left-joins code descriptions, value sets, and
provider attributes for both roles. Output row count always equals the
roster-matched input row count.

Usage:
  enrich -claims <claims.parquet> -roster <roster.csv> -lookup <lookup.csv> [-valuesets <file>] [-out <file>] [-v]

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *claimsFile == "" || *rosterFile == "" || *lookupFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -claims, -roster, and -lookup are required")
		flag.Usage()
		os.Exit(1)
	}

	start := time.Now()

	roster, err := LoadRoster(*rosterFile)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}
	log.Printf("Roster: %d providers (%s)", len(roster), *rosterFile)

	codes, err := LoadCodeLookup(*lookupFile)
	if err != nil {
		log.Fatalf("Failed to load code lookup: %v", err)
	}
	log.Printf("Code lookup: %d codes (%s)", len(codes), *lookupFile)

	valueSets := map[string]ValueSetInfo{}
	if *valueSetsFile != "" {
		valueSets, err = LoadValueSets(*valueSetsFile)
		if err != nil {
			log.Fatalf("Failed to load value sets: %v", err)
		}
		log.Printf("Value sets: %d codes (%s)", len(valueSets), *valueSetsFile)
	}

	file, err := os.Open(*claimsFile)
	if err != nil {
		log.Fatalf("Failed to open claims: %v", err)
	}
	defer file.Close()

	fi, _ := file.Stat()
	if fi != nil {
		log.Printf("Claims: %.1f MB (%s)", float64(fi.Size())/1024/1024, *claimsFile)
	}

	reader := parquet.NewGenericReader[ClaimRow](file)
	defer reader.Close()

	writer, err := NewEnrichedWriter(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create writer: %v", err)
	}

	enricher := NewEnricher(roster, codes, valueSets, *verbose)
	stats, err := enricher.Run(reader, writer)
	if err != nil {
		writer.Close()
		log.Fatalf("Enrichment failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("Failed to close writer: %v", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("\nDone in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Rows scanned:     %d\n", stats.RowsScanned)
	fmt.Printf("  Rows kept:        %d (%s)\n", stats.RowsKept, *outputFile)
	fmt.Printf("  Code misses:      %d\n", stats.CodeMisses)
	fmt.Printf("  Billing misses:   %d\n", stats.BillingMisses)
	fmt.Printf("  Servicing misses: %d\n", stats.ServicingMisses)
	fmt.Printf("  Bad months:       %d\n", stats.BadMonths)
	if stats.RowsKept > 0 {
		resolved := stats.RowsKept - stats.CodeMisses
		fmt.Printf("  Code coverage:    %.1f%% of kept rows\n",
			float64(resolved)/float64(stats.RowsKept)*100)
	}
	fmt.Printf("  Throughput:       %.0f rows/s\n",
		float64(stats.RowsScanned)/elapsed.Seconds())
}

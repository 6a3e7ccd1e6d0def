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
	enrichedFile := flag.String("enriched", "", "Enriched claims Parquet (required)")
	outputFile := flag.String("out", "coverage_codes.csv", "Output per-code coverage CSV")
	topN := flag.Int("top", 20, "How many unresolved codes to report by claim volume")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `coverage - Audit code-description coverage of enriched claims

Reports, at distinct-code level and at claim-volume level, how much of
the data resolved to a description and from which reference source, plus
the most frequent unresolved codes. Read-only.

Usage:
  coverage -enriched <enriched.parquet> [-out <file>] [-top N]

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *enrichedFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -enriched is required")
		flag.Usage()
		os.Exit(1)
	}

	start := time.Now()

	file, err := os.Open(*enrichedFile)
	if err != nil {
		log.Fatalf("Failed to open enriched claims: %v", err)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[EnrichedRow](file)
	defer reader.Close()

	result, err := Audit(reader, *topN)
	if err != nil {
		log.Fatalf("Audit failed: %v", err)
	}

	if err := WriteCoverageCSV(*outputFile, result); err != nil {
		log.Fatalf("Failed to write coverage CSV: %v", err)
	}

	fmt.Printf("Enriched claims: %d rows, %d claims, %d distinct codes (%s)\n",
		result.TotalRows, result.TotalClaims, result.DistinctCodes(), *enrichedFile)
	fmt.Printf("Coverage: %.1f%% of distinct codes, %.1f%% of claim volume\n",
		result.DistinctCoverage(), result.ClaimCoverage())

	fmt.Println("\nBy resolving source:")
	for _, class := range []string{ClassCurrentDictionary, ClassQualityCodebook, ClassOtherSource, ClassUnresolved} {
		fmt.Printf("  %-20s %6d codes  %10d claims\n",
			class+":", result.DistinctByClass[class], result.ClaimsByClass[class])
	}

	if len(result.TopUnresolved) > 0 {
		fmt.Printf("\nTop %d unresolved codes by claim volume:\n", len(result.TopUnresolved))
		for _, t := range result.TopUnresolved {
			fmt.Printf("  %-12s %10d claims  %8d rows\n", t.Code, t.Claims, t.Rows)
		}
	}

	fmt.Printf("\nPer-code table: %s\n", *outputFile)
	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
}

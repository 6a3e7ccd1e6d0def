package main

import (
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeHCPCSCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadHCPCSDictionary(t *testing.T) {
	content := "code,description\n" +
		"G0101,\"Cervical or vaginal cancer screening\"\n" +
		"H0001,Alcohol and/or drug assessment\n" +
		",orphan description\n" +
		"H9999,\n" +
		"\n"
	path := writeHCPCSCSV(t, "hcpcs.csv", content)

	records, err := ReadHCPCSDictionary(path, 2024)
	if err != nil {
		t.Fatalf("ReadHCPCSDictionary: %v", err)
	}
	// Rows with empty code or description excluded, not nulled.
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	r := records[0]
	if r.Code != "G0101" || r.Description != "Cervical or vaginal cancer screening" {
		t.Errorf("record[0] = %+v", r)
	}
	if r.Source != SourceHCPCS || r.Year != 2024 {
		t.Errorf("record[0] tagging = %q/%d", r.Source, r.Year)
	}
}

func TestReadHCPCSDictionaryGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hcpcs.csv.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte("code,description\nT1017,Targeted case management\n"))
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	records, err := ReadHCPCSDictionary(path, 2024)
	if err != nil {
		t.Fatalf("ReadHCPCSDictionary: %v", err)
	}
	if len(records) != 1 || records[0].Code != "T1017" {
		t.Fatalf("records = %+v", records)
	}
}

func TestReadHCPCSDictionaryBOM(t *testing.T) {
	content := "\xEF\xBB\xBFcode,description\nH2019,Therapeutic behavioral services\n"
	path := writeHCPCSCSV(t, "bom.csv", content)

	records, err := ReadHCPCSDictionary(path, 2024)
	if err != nil {
		t.Fatalf("ReadHCPCSDictionary: %v", err)
	}
	if len(records) != 1 || records[0].Code != "H2019" {
		t.Fatalf("records = %+v", records)
	}
}

func TestReadHCPCSDictionaryMissing(t *testing.T) {
	if _, err := ReadHCPCSDictionary(filepath.Join(t.TempDir(), "nope.csv"), 2024); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeCPTArchive(t *testing.T, name string, memberRows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(cptAddendumMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	// Preamble rows before the code/description columns.
	preamble := "CPT Addendum,\nPublished by AMA,\nCode,Long Description\n"
	if _, err := w.Write([]byte(preamble + memberRows)); err != nil {
		t.Fatalf("write member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestReadCPTAddendum(t *testing.T) {
	path := writeCPTArchive(t, "cpt_addendum_2022.zip",
		"99213,\"Office visit, established patient\"\n"+
			"90791,Psychiatric diagnostic evaluation\n"+
			",stray\n")

	year, records, err := ReadCPTAddendum(path)
	if err != nil {
		t.Fatalf("ReadCPTAddendum: %v", err)
	}
	if year != 2022 {
		t.Errorf("year = %d, want 2022", year)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Code != "99213" || records[0].Description != "Office visit, established patient" {
		t.Errorf("record[0] = %+v", records[0])
	}
	if records[0].Source != "cpt_2022" || records[0].Year != 2022 {
		t.Errorf("record[0] tagging = %q/%d", records[0].Source, records[0].Year)
	}
}

func TestReadCPTAddendumNoYear(t *testing.T) {
	path := writeCPTArchive(t, "cpt_addendum.zip", "99213,visit\n")
	if _, _, err := ReadCPTAddendum(path); err == nil {
		t.Fatal("expected error for archive without vintage year in name")
	}
}

func TestReadCPTAddendumDistinctTags(t *testing.T) {
	// Two vintages of the same series must never conflate into one tag.
	p22 := writeCPTArchive(t, "cpt_addendum_2022.zip", "99213,v22\n")
	p23 := writeCPTArchive(t, "cpt_addendum_2023.zip", "99213,v23\n")

	_, r22, err := ReadCPTAddendum(p22)
	if err != nil {
		t.Fatalf("2022: %v", err)
	}
	_, r23, err := ReadCPTAddendum(p23)
	if err != nil {
		t.Fatalf("2023: %v", err)
	}
	if r22[0].Source == r23[0].Source {
		t.Errorf("both vintages tagged %q", r22[0].Source)
	}
}

func TestReadHEDISCodebook(t *testing.T) {
	content := "code,coding_system,value_set_name,definition\n" +
		"H0001,HCPCS,AOD Abuse and Dependence,Alcohol and/or drug assessment\n" +
		"90791,CPT,Mental Health Visit,Psychiatric diagnostic evaluation\n" +
		"F10.10,ICD10CM,AOD Diagnosis,Alcohol abuse uncomplicated\n" +
		",CPT,Stray,No code\n"
	path := writeHCPCSCSV(t, "hedis.csv", content)

	rows, err := ReadHEDISCodebook(path)
	if err != nil {
		t.Fatalf("ReadHEDISCodebook: %v", err)
	}
	// ICD10CM and empty-code rows filtered out.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Code != "H0001" || rows[0].CodingSystem != "HCPCS" {
		t.Errorf("rows[0] = %+v", rows[0])
	}

	records := hedisCodeRecords(rows, 2024)
	if len(records) != 2 {
		t.Fatalf("got %d code records, want 2", len(records))
	}
	if records[0].Source != SourceHEDIS || records[0].Description != "Alcohol and/or drug assessment" {
		t.Errorf("records[0] = %+v", records[0])
	}
}

func TestHEDISCodeRecordsDedupe(t *testing.T) {
	rows := []HEDISRow{
		{Code: "H0001", ValueSetName: "A", Definition: "assessment"},
		{Code: "H0001", ValueSetName: "B", Definition: "assessment"},
	}
	records := hedisCodeRecords(rows, 2024)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

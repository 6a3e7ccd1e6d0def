package main

import (
	"archive/zip"
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// cptAddendumMember is the fixed-name spreadsheet inside each CPT addendum
// archive, and cptHeaderRows the preamble rows before the code/description
// columns begin.
const (
	cptAddendumMember = "cpt_addendum.csv"
	cptHeaderRows     = 3
)

var cptArchiveYearRe = regexp.MustCompile(`(\d{4})`)

// cptSourceTag returns the per-vintage source tag for a CPT addendum year.
func cptSourceTag(year int) string {
	return fmt.Sprintf("cpt_%d", year)
}

// newCSVReader wraps r in a buffered CSV reader with BOM skip and the
// lenient quoting settings the reference files need.
func newCSVReader(r io.Reader) *csv.Reader {
	bufReader := bufio.NewReaderSize(r, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// openSource opens a reference file, transparently decompressing .gz.
// The returned closer closes both the gzip layer and the file.
func openSource(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		closer := func() error {
			gz.Close()
			return file.Close()
		}
		return gz, closer, nil
	}
	return file, file.Close, nil
}

// headerIndex builds a lowercase column-name → index map from a header row.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func fieldAt(row []string, idx map[string]int, col string) string {
	if i, ok := idx[col]; ok && i < len(row) {
		return strings.ToValidUTF8(strings.TrimSpace(row[i]), "�")
	}
	return ""
}

// ReadHCPCSDictionary reads the current HCPCS dictionary CSV
// (code,description with one header row; .gz supported). Rows with an
// empty code or description are dropped, not nulled.
func ReadHCPCSDictionary(path string, year int) ([]CodeRecord, error) {
	r, closeFn, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer closeFn()

	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx["code"]; !ok {
		return nil, fmt.Errorf("%s: no code column in header", path)
	}

	var records []CodeRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		code := fieldAt(row, idx, "code")
		desc := fieldAt(row, idx, "description")
		if code == "" || desc == "" {
			continue
		}
		records = append(records, CodeRecord{
			Code:        code,
			Description: desc,
			Source:      SourceHCPCS,
			Year:        year,
		})
	}
	return records, nil
}

// ReadCPTAddendum reads one CPT addendum archive: a .zip containing the
// fixed-name member CSV with cptHeaderRows preamble rows, then code in the
// first column and its long description in the second. The vintage year is
// parsed from the archive filename.
func ReadCPTAddendum(zipPath string) (int, []CodeRecord, error) {
	m := cptArchiveYearRe.FindString(filepath.Base(zipPath))
	if m == "" {
		return 0, nil, fmt.Errorf("no vintage year in archive name %s", filepath.Base(zipPath))
	}
	year := 0
	fmt.Sscanf(m, "%d", &year)

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, nil, fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer zr.Close()

	var member *zip.File
	for _, f := range zr.File {
		if filepath.Base(f.Name) == cptAddendumMember {
			member = f
			break
		}
	}
	if member == nil {
		return 0, nil, fmt.Errorf("%s: no %s member", zipPath, cptAddendumMember)
	}

	rc, err := member.Open()
	if err != nil {
		return 0, nil, fmt.Errorf("open member: %w", err)
	}
	defer rc.Close()

	reader := newCSVReader(rc)
	for i := 0; i < cptHeaderRows; i++ {
		if _, err := reader.Read(); err != nil {
			return 0, nil, fmt.Errorf("skip header row %d: %w", i+1, err)
		}
	}

	var records []CodeRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		code := strings.ToValidUTF8(strings.TrimSpace(row[0]), "�")
		desc := strings.ToValidUTF8(strings.TrimSpace(row[1]), "�")
		if code == "" || desc == "" {
			continue
		}
		records = append(records, CodeRecord{
			Code:        code,
			Description: desc,
			Source:      cptSourceTag(year),
			Year:        year,
		})
	}
	return year, records, nil
}

// procedureSystems are the codebook coding systems of interest.
var procedureSystems = map[string]bool{
	"CPT":   true,
	"HCPCS": true,
}

// ReadHEDISCodebook reads the quality-measure codebook CSV
// (code,coding_system,value_set_name,definition), keeping only rows whose
// coding system is one of the procedure systems of interest.
func ReadHEDISCodebook(path string) ([]HEDISRow, error) {
	r, closeFn, err := openSource(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer closeFn()

	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx["code"]; !ok {
		return nil, fmt.Errorf("%s: no code column in header", path)
	}

	var rows []HEDISRow
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		system := strings.ToUpper(fieldAt(row, idx, "coding_system"))
		if !procedureSystems[system] {
			continue
		}
		code := fieldAt(row, idx, "code")
		if code == "" {
			continue
		}
		rows = append(rows, HEDISRow{
			Code:         code,
			CodingSystem: system,
			ValueSetName: fieldAt(row, idx, "value_set_name"),
			Definition:   fieldAt(row, idx, "definition"),
		})
	}
	return rows, nil
}

// hedisCodeRecords collapses codebook rows (one per code × value set) into
// one CodeRecord per code, keeping the first-seen definition as the
// description. Rows with an empty definition are dropped.
func hedisCodeRecords(rows []HEDISRow, year int) []CodeRecord {
	seen := make(map[string]bool, len(rows))
	var records []CodeRecord
	for _, r := range rows {
		if r.Definition == "" || seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		records = append(records, CodeRecord{
			Code:        r.Code,
			Description: r.Definition,
			Source:      SourceHEDIS,
			Year:        year,
		})
	}
	return records
}

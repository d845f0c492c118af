package etl

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/dvloznov/txn-etl/internal/logger"
)

// Load reads a CSV file and returns one Record per data line, keyed by
// header column names. The file is scanned twice: a structural pass that
// must fully succeed before any record is produced, then a keyed pass.
// Structural defects (missing mandatory columns, mismatched column
// counts, empty rows) are fatal for the whole file.
func Load(ctx context.Context, path string) ([]Record, error) {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Cannot open source file")
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}

	header, err := scanStructure(data)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Structural validation failed")
		return nil, err
	}

	records, err := readRecords(data, header)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Parsing failed")
		return nil, &LoadError{Path: path, Err: err}
	}

	log.Info().Int("rows", len(records)).Str("path", path).Msg("Loaded CSV file")
	return records, nil
}

// scanStructure runs the structural pass: header shape, per-line column
// counts, and empty-row detection. It returns the header on success.
// encoding/csv silently drops blank physical lines before the reader
// sees them, so blanks are caught by watching for gaps in the line
// numbering; a blank line is an empty row and fails the file.
func scanStructure(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // column counts are checked here, with line context

	header, err := r.Read()
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if line, _ := r.FieldPos(0); line > 1 {
		return nil, &EmptyRowError{Line: 1}
	}

	if missing := missingMandatoryColumns(header); len(missing) > 0 {
		return nil, &MissingMandatoryColumnsError{Columns: missing}
	}

	expected := len(header)
	nextLine := 2
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Err: err}
		}

		line, _ := r.FieldPos(0)
		if line > nextLine {
			return nil, &EmptyRowError{Line: nextLine}
		}

		if len(row) != expected {
			return nil, &WrongColumnCountError{Line: line, Expected: expected, Actual: len(row)}
		}

		if allFieldsEmpty(row) {
			return nil, &EmptyRowError{Line: line}
		}

		endLine, _ := r.FieldPos(len(row) - 1)
		nextLine = endLine + 1
	}

	if physicalLineCount(data) >= nextLine {
		return nil, &EmptyRowError{Line: nextLine}
	}

	return header, nil
}

// physicalLineCount counts the lines in the raw file. A terminating
// newline closes the last line rather than opening a new one.
func physicalLineCount(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// readRecords runs the keyed pass over structurally valid data. Columns
// beyond the mandatory set are preserved verbatim.
func readRecords(data []byte, header []string) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(data))

	// Skip the header; the structural pass already read it.
	if _, err := r.Read(); err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := NewRecord()
		for i, name := range header {
			rec.Set(name, String(row[i]))
		}
		records = append(records, rec)
	}

	return records, nil
}

func missingMandatoryColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}

	var missing []string
	for _, name := range MandatoryColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func allFieldsEmpty(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// IsStructuralError reports whether err is one of the typed structural
// load failures, as opposed to a generic parse or IO failure.
func IsStructuralError(err error) bool {
	var (
		missing *MissingMandatoryColumnsError
		count   *WrongColumnCountError
		empty   *EmptyRowError
	)
	return errors.As(err, &missing) || errors.As(err, &count) || errors.As(err, &empty)
}

// Package csvimport turns an uploaded invitee spreadsheet into candidate tuples.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"eventseating/internal/domain"
)

// MaxRows caps the number of data rows read from one upload.
const MaxRows = 5000

// Column names in the header row. Matching ignores case and surrounding space.
const (
	ColFirstName = "first_name"
	ColLastName  = "last_name"
	ColEmail     = "email_address"
	ColCategory  = "category"
)

var aliases = map[string]string{
	"firstname": ColFirstName,
	"lastname":  ColLastName,
	"email":     ColEmail,
}

// Upload is the parsed content of one file. Rows that could not be read as a
// tuple are in Failures; everything else is in Candidates, still unvalidated.
type Upload struct {
	Candidates []domain.InviteeCandidate
	Failures   []domain.ImportFailure
}

// Read parses r as CSV with a header row. Row numbers are file line numbers, so
// the first data row is row 2.
func Read(r io.Reader) (*Upload, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.InvalidInput("csv file is empty")
	}
	if err != nil {
		return nil, domain.InvalidInput(fmt.Sprintf("csv header: %v", err))
	}
	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	up := &Upload{
		Candidates: make([]domain.InviteeCandidate, 0),
		Failures:   make([]domain.ImportFailure, 0),
	}
	for n := 0; ; n++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if n >= MaxRows {
			return nil, domain.InvalidInput(fmt.Sprintf("csv has more than %d rows", MaxRows))
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			up.Failures = append(up.Failures, domain.ImportFailure{Row: parseErr.Line, Reason: parseErr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}
		if len(record) != len(header) {
			up.Failures = append(up.Failures, domain.ImportFailure{
				Row:    line,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(record)),
			})
			continue
		}
		up.Candidates = append(up.Candidates, domain.InviteeCandidate{
			Row:       line,
			FirstName: record[index[ColFirstName]],
			LastName:  record[index[ColLastName]],
			Email:     record[index[ColEmail]],
			Category:  record[index[ColCategory]],
		})
	}
	return up, nil
}

func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := aliases[key]; ok {
			key = canonical
		}
		if _, dup := index[key]; dup {
			return nil, domain.InvalidInput(fmt.Sprintf("csv header repeats column %q", key))
		}
		index[key] = i
	}
	var missing []string
	for _, col := range []string{ColFirstName, ColLastName, ColEmail, ColCategory} {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, domain.InvalidInput("csv header missing columns: " + strings.Join(missing, ", "))
	}
	return index, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Package export flattens TestLink test cases into CSV rows.
package export

import (
	"fmt"
	"slices"
	"sort"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/fedutinova/tlexport/internal/models"
)

// Schema is the ordered column layout of one export run: requested scalar
// fields without steps, then custom fields, then the two step columns.
type Schema struct {
	fields  []string
	custom  []string
	columns []string
}

func NewSchema(fields, customFields []string) (*Schema, error) {
	if !slices.Contains(fields, models.FieldSteps) {
		return nil, common.ValidationError{Field: "fields", Message: fmt.Sprintf("%q is required", models.FieldSteps)}
	}

	s := &Schema{}
	seen := map[string]bool{}
	for _, f := range fields {
		if !models.KnownFields[f] {
			return nil, common.ValidationError{Field: "fields", Message: fmt.Sprintf("unknown test case field %q", f)}
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		if f != models.FieldSteps {
			s.fields = append(s.fields, f)
		}
	}
	for _, f := range customFields {
		if seen[f] {
			return nil, common.ValidationError{Field: "custom_fields", Message: fmt.Sprintf("duplicate column %q", f)}
		}
		seen[f] = true
		s.custom = append(s.custom, f)
	}

	s.columns = make([]string, 0, len(s.fields)+len(s.custom)+2)
	s.columns = append(s.columns, s.fields...)
	s.columns = append(s.columns, s.custom...)
	s.columns = append(s.columns, models.ColumnActions, models.ColumnExpectedResults)
	return s, nil
}

// Header returns the column names in output order.
func (s *Schema) Header() []string {
	return slices.Clone(s.columns)
}

// Fields returns the scalar test case fields.
func (s *Schema) Fields() []string {
	return slices.Clone(s.fields)
}

// CustomFields returns the custom field columns.
func (s *Schema) CustomFields() []string {
	return slices.Clone(s.custom)
}

// Record is one flattened test case before step expansion.
type Record struct {
	TestCaseID string
	Values     map[string]string
	Steps      []models.Step
}

// Rows expands the record: the first row carries every column plus the
// first step, each further step gets a row with only the step columns.
// A record without steps still yields the first row, with empty step
// columns.
func (r Record) Rows(s *Schema) [][]string {
	first := make([]string, len(s.columns))
	for j, col := range s.columns[:len(s.columns)-2] {
		first[j] = r.Values[col]
	}
	rows := [][]string{first}
	if len(r.Steps) == 0 {
		return rows
	}

	for i, step := range r.Steps {
		row := first
		if i > 0 {
			row = make([]string, len(s.columns))
			rows = append(rows, row)
		}
		row[len(row)-2] = step.Actions
		row[len(row)-1] = step.ExpectedResults
	}
	return rows
}

// orderSteps drops steps whose texts are both empty, keeps the last step
// for a repeated number and orders by step number compared as text, so
// "10" sorts before "2".
func orderSteps(steps []models.Step) []models.Step {
	byNumber := make(map[string]models.Step, len(steps))
	for _, st := range steps {
		if st.IsEmpty() {
			continue
		}
		byNumber[st.Number] = st
	}

	numbers := make([]string, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	out := make([]models.Step, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, byNumber[n])
	}
	return out
}

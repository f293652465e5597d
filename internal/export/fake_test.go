package export

import (
	"context"
	"fmt"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/fedutinova/tlexport/internal/models"
)

// fakeAPI is an in-memory TestLink project.
type fakeAPI struct {
	project     models.Project
	suites      []models.Suite
	suiteCases  map[string][]string
	nested      map[string]models.Suite
	cases       map[string]models.TestCase
	fieldValues map[string]string // "<external id>/<field>"
	badFields   map[string]bool
	fieldErr    error

	suiteCalls map[string]int
	fieldCalls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		project:     models.Project{ID: "1", Name: "My Project"},
		suiteCases:  map[string][]string{},
		nested:      map[string]models.Suite{},
		cases:       map[string]models.TestCase{},
		fieldValues: map[string]string{},
		badFields:   map[string]bool{},
		suiteCalls:  map[string]int{},
		fieldCalls:  map[string]int{},
	}
}

func (f *fakeAPI) ProjectByName(_ context.Context, name string) (models.Project, error) {
	if name != f.project.Name {
		return models.Project{}, fmt.Errorf("%q: %w", name, common.ErrProjectNotFound)
	}
	return f.project, nil
}

func (f *fakeAPI) FirstLevelSuites(context.Context, string) ([]models.Suite, error) {
	return f.suites, nil
}

func (f *fakeAPI) TestCaseIDsForSuite(_ context.Context, suiteID string) ([]string, error) {
	return f.suiteCases[suiteID], nil
}

func (f *fakeAPI) TestCase(_ context.Context, id string) (models.TestCase, error) {
	tc, ok := f.cases[id]
	if !ok {
		return models.TestCase{}, fmt.Errorf("test case %s: %w", id, common.ErrNotFound)
	}
	return tc, nil
}

func (f *fakeAPI) SuiteByID(_ context.Context, suiteID string) (models.Suite, error) {
	f.suiteCalls[suiteID]++
	s, ok := f.nested[suiteID]
	if !ok {
		return models.Suite{}, fmt.Errorf("suite %s: %w", suiteID, common.ErrNotFound)
	}
	return s, nil
}

func (f *fakeAPI) CustomFieldValue(_ context.Context, externalID, field string, _ int, _ string) (string, error) {
	f.fieldCalls[field]++
	if f.fieldErr != nil {
		return "", f.fieldErr
	}
	if f.badFields[field] {
		return "", &common.FieldLookupError{Field: field, ExternalID: externalID, Err: common.ErrRemote}
	}
	return f.fieldValues[externalID+"/"+field], nil
}

func (f *fakeAPI) addCase(suiteID string, tc models.TestCase) {
	f.cases[tc.ID] = tc
	f.suiteCases[suiteID] = append(f.suiteCases[suiteID], tc.ID)
}

func testCase(id, ext, suiteID string, steps ...models.Step) models.TestCase {
	return models.TestCase{
		ID:         id,
		ExternalID: ext,
		Version:    1,
		SuiteID:    suiteID,
		Fields: map[string]string{
			"name":                "Case " + id,
			"summary":             "<p>Summary of <b>" + id + "</b></p>",
			"preconditions":       "logged in",
			"testsuite_id":        suiteID,
			"importance":          "2",
			"version":             "1",
			"execution_type":      "1",
			"full_tc_external_id": ext,
		},
		Steps: steps,
	}
}

func step(n, actions, expected string) models.Step {
	return models.Step{Number: n, Actions: actions, ExpectedResults: expected}
}

// memSink collects writes.
type memSink struct {
	headers [][]string
	rows    [][]string
	err     error
}

func (m *memSink) Write(header []string, rows [][]string) error {
	if m.err != nil {
		return m.err
	}
	m.headers = append(m.headers, header)
	m.rows = append(m.rows, rows...)
	return nil
}

type countingProgress struct {
	total, done int
	finished    bool
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Increment()      { p.done++ }
func (p *countingProgress) Finish()         { p.finished = true }

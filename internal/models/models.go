package models

// Project is a test project in the remote repository.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix,omitempty"`
}

// Suite is a folder of test cases. Root suites have an empty ParentID
// or one pointing at the project itself.
type Suite struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// Step is one action / expected-result pair of a test case.
type Step struct {
	Number          string `json:"step_number"`
	Actions         string `json:"actions"`
	ExpectedResults string `json:"expected_results"`
}

// IsEmpty reports whether both texts are empty.
func (s Step) IsEmpty() bool {
	return s.Actions == "" && s.ExpectedResults == ""
}

// TestCase is a test case as returned by the remote repository, un-normalized.
type TestCase struct {
	ID         string            `json:"id"`
	ExternalID string            `json:"full_tc_external_id"`
	Version    int               `json:"version"`
	SuiteID    string            `json:"testsuite_id"`
	Fields     map[string]string `json:"fields"`
	Steps      []Step            `json:"steps"`
}

// Field returns a scalar field value, or "" when the field was not returned.
func (tc TestCase) Field(name string) string {
	return tc.Fields[name]
}

// Scalar field names understood by the exporter.
const (
	FieldName                  = "name"
	FieldSummary               = "summary"
	FieldPreconditions         = "preconditions"
	FieldTestSuiteID           = "testsuite_id"
	FieldImportance            = "importance"
	FieldVersion               = "version"
	FieldExecutionType         = "execution_type"
	FieldEstimatedExecDuration = "estimated_exec_duration"
	FieldFullExternalID        = "full_tc_external_id"
	FieldSteps                 = "steps"

	ColumnActions         = "actions"
	ColumnExpectedResults = "expected_results"
)

// KnownFields lists every scalar field a test case fetch can be projected onto.
var KnownFields = map[string]bool{
	FieldName:                  true,
	FieldSummary:               true,
	FieldPreconditions:         true,
	FieldTestSuiteID:           true,
	FieldImportance:            true,
	FieldVersion:               true,
	FieldExecutionType:         true,
	FieldEstimatedExecDuration: true,
	FieldFullExternalID:        true,
	FieldSteps:                 true,
	"status":                   true,
	"author_login":             true,
	"creation_ts":              true,
	"modification_ts":          true,
	"is_open":                  true,
	"active":                   true,
	"tc_external_id":           true,
	"layout":                   true,
	"node_order":               true,
}

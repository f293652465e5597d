package export

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/fedutinova/tlexport/internal/models"
	"github.com/fedutinova/tlexport/internal/suite"
	"github.com/fedutinova/tlexport/internal/testlink"
	"github.com/fedutinova/tlexport/internal/textnorm"
)

// IgnoredFields holds custom fields disabled for the rest of a run.
type IgnoredFields struct {
	set map[string]bool
}

func NewIgnoredFields() *IgnoredFields {
	return &IgnoredFields{set: map[string]bool{}}
}

func (f *IgnoredFields) Has(field string) bool {
	return f.set[field]
}

func (f *IgnoredFields) Add(field string) {
	f.set[field] = true
}

func (f *IgnoredFields) List() []string {
	out := make([]string, 0, len(f.set))
	for k := range f.set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Flattener turns one test case id into a Record.
type Flattener struct {
	api       testlink.API
	resolver  *suite.Resolver
	schema    *Schema
	ignored   *IgnoredFields
	projectID string
}

func NewFlattener(api testlink.API, resolver *suite.Resolver, schema *Schema, ignored *IgnoredFields, projectID string) *Flattener {
	return &Flattener{
		api:       api,
		resolver:  resolver,
		schema:    schema,
		ignored:   ignored,
		projectID: projectID,
	}
}

func (f *Flattener) Flatten(ctx context.Context, id string) (Record, error) {
	tc, err := f.api.TestCase(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("fetch test case %s: %w", id, err)
	}

	rec := Record{
		TestCaseID: id,
		Values:     make(map[string]string, len(f.schema.columns)),
	}
	for _, field := range f.schema.fields {
		rec.Values[field] = tc.Field(field)
	}
	rec.Values[models.FieldPreconditions] = textnorm.Normalize(tc.Field(models.FieldPreconditions))
	rec.Values[models.FieldSummary] = textnorm.Normalize(tc.Field(models.FieldSummary))

	for _, st := range orderSteps(tc.Steps) {
		rec.Steps = append(rec.Steps, models.Step{
			Number:          st.Number,
			Actions:         textnorm.Normalize(st.Actions),
			ExpectedResults: textnorm.Normalize(st.ExpectedResults),
		})
	}

	path, err := f.resolver.Resolve(ctx, tc.SuiteID)
	if err != nil {
		return Record{}, fmt.Errorf("test case %s: %w", id, err)
	}
	rec.Values[models.FieldTestSuiteID] = path

	for _, field := range f.schema.custom {
		if f.ignored.Has(field) {
			continue
		}
		v, err := f.api.CustomFieldValue(ctx, tc.ExternalID, field, tc.Version, f.projectID)
		if err != nil {
			if !common.IsFieldLookup(err) {
				return Record{}, fmt.Errorf("test case %s: %w", id, err)
			}
			slog.Error("ignoring custom field going forward", "field", field, "test_case", tc.ExternalID, "error", err)
			f.ignored.Add(field)
			continue
		}
		rec.Values[field] = v
	}

	return rec, nil
}

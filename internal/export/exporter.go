package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fedutinova/tlexport/internal/models"
	"github.com/fedutinova/tlexport/internal/suite"
	"github.com/fedutinova/tlexport/internal/testlink"
)

// RowWriter receives the rows of one test case at a time.
type RowWriter interface {
	Write(header []string, rows [][]string) error
}

// Progress is notified as test cases are exported.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)  {}
func (nopProgress) Increment() {}
func (nopProgress) Finish()    {}

type Summary struct {
	Project       models.Project
	TestCases     int
	Exported      int
	Rows          int
	NoSteps       int
	IgnoredFields []string
}

// Exporter walks every test case of a project and writes it through a
// RowWriter. Each Run owns its suite cache and ignored field set.
type Exporter struct {
	api      testlink.API
	sink     RowWriter
	schema   *Schema
	project  string
	progress Progress
	onTotal  func(project models.Project, total int)
}

type Option func(*Exporter)

func WithProgress(p Progress) Option {
	return func(e *Exporter) {
		if p != nil {
			e.progress = p
		}
	}
}

// WithTotal registers fn to learn the number of test cases once they are
// collected, before any is exported.
func WithTotal(fn func(project models.Project, total int)) Option {
	return func(e *Exporter) {
		e.onTotal = fn
	}
}

func NewExporter(api testlink.API, sink RowWriter, schema *Schema, project string, opts ...Option) *Exporter {
	e := &Exporter{
		api:      api,
		sink:     sink,
		schema:   schema,
		project:  project,
		progress: nopProgress{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run exports sequentially. Any failure other than a custom field lookup
// stops the run; rows written so far stay in the sink.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	sum := Summary{}

	project, err := e.api.ProjectByName(ctx, e.project)
	if err != nil {
		return sum, fmt.Errorf("lookup project: %w", err)
	}
	sum.Project = project

	resolver := suite.NewResolver(e.api)
	ids, err := e.collect(ctx, project.ID, resolver)
	if err != nil {
		return sum, err
	}
	sum.TestCases = len(ids)
	slog.Info("test cases found", "project", project.Name, "total", len(ids))
	if e.onTotal != nil {
		e.onTotal(project, len(ids))
	}

	ignored := NewIgnoredFields()
	flattener := NewFlattener(e.api, resolver, e.schema, ignored, project.ID)
	header := e.schema.Header()

	e.progress.Start(len(ids))
	defer e.progress.Finish()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return e.finish(sum, ignored), err
		}

		slog.Info("exporting test case", "id", id)
		rec, err := flattener.Flatten(ctx, id)
		if err != nil {
			return e.finish(sum, ignored), err
		}

		if len(rec.Steps) == 0 {
			slog.Warn("test case has no steps, step columns left empty", "id", id, "name", rec.Values[models.FieldName])
			sum.NoSteps++
		}
		rows := rec.Rows(e.schema)
		if err := e.sink.Write(header, rows); err != nil {
			return e.finish(sum, ignored), fmt.Errorf("write test case %s: %w", id, err)
		}

		sum.Exported++
		sum.Rows += len(rows)
		e.progress.Increment()
	}

	return e.finish(sum, ignored), nil
}

func (e *Exporter) collect(ctx context.Context, projectID string, resolver *suite.Resolver) ([]string, error) {
	suites, err := e.api.FirstLevelSuites(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list suites: %w", err)
	}

	var ids []string
	for _, s := range suites {
		resolver.Seed(s)
		suiteIDs, err := e.api.TestCaseIDsForSuite(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("list test cases of suite %s: %w", s.Name, err)
		}
		ids = append(ids, suiteIDs...)
	}
	return ids, nil
}

func (e *Exporter) finish(sum Summary, ignored *IgnoredFields) Summary {
	sum.IgnoredFields = ignored.List()
	return sum
}

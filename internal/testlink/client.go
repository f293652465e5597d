// Package testlink talks to a TestLink server over its XML-RPC API.
package testlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/fedutinova/tlexport/internal/models"
)

// API is the subset of the TestLink API the exporter needs.
type API interface {
	ProjectByName(ctx context.Context, name string) (models.Project, error)
	FirstLevelSuites(ctx context.Context, projectID string) ([]models.Suite, error)
	TestCaseIDsForSuite(ctx context.Context, suiteID string) ([]string, error)
	TestCase(ctx context.Context, id string) (models.TestCase, error)
	SuiteByID(ctx context.Context, suiteID string) (models.Suite, error)
	CustomFieldValue(ctx context.Context, externalID, field string, version int, projectID string) (string, error)
}

// codeProjectNotFound is TestLink's error code for an unknown project name.
const codeProjectNotFound = 7011

// caller is satisfied by *xmlrpc.Client.
type caller interface {
	Call(serviceMethod string, args interface{}, reply interface{}) error
	Close() error
}

type Client struct {
	rpc    caller
	devKey string
}

var _ API = (*Client)(nil)

// NewClient connects to the XML-RPC endpoint at serverURL. A zero timeout
// leaves calls unbounded.
func NewClient(serverURL, devKey string, timeout time.Duration) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
	}

	rpc, err := xmlrpc.NewClient(serverURL, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}

	slog.Debug("testlink client created", "url", serverURL, "timeout", timeout)
	return &Client{rpc: rpc, devKey: devKey}, nil
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

// call invokes tl.<method> with devKey plus args as a single struct param.
func (c *Client) call(ctx context.Context, method string, args map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := map[string]any{"devKey": c.devKey}
	for k, v := range args {
		params[k] = v
	}

	var reply any
	if err := c.rpc.Call("tl."+method, params, &reply); err != nil {
		return nil, fmt.Errorf("%s: %w", method, errors.Join(common.ErrRemote, err))
	}
	if rerr := remoteError(method, reply); rerr != nil {
		return nil, rerr
	}
	return reply, nil
}

func (c *Client) ProjectByName(ctx context.Context, name string) (models.Project, error) {
	reply, err := c.call(ctx, "getTestProjectByName", map[string]any{"testprojectname": name})
	if err != nil {
		var rerr *common.RemoteError
		if errors.As(err, &rerr) && rerr.Code == codeProjectNotFound {
			return models.Project{}, fmt.Errorf("%q: %w (%s)", name, common.ErrProjectNotFound, rerr.Message)
		}
		return models.Project{}, fmt.Errorf("lookup project %q: %w", name, err)
	}

	// older servers wrap the project in a one element array
	if list, ok := reply.([]any); ok {
		if len(list) == 0 {
			return models.Project{}, fmt.Errorf("%q: %w", name, common.ErrProjectNotFound)
		}
		reply = list[0]
	}
	m, ok := reply.(map[string]any)
	if !ok || asString(m["id"]) == "" {
		return models.Project{}, fmt.Errorf("%q: %w", name, common.ErrProjectNotFound)
	}

	return models.Project{
		ID:     asString(m["id"]),
		Name:   asString(m["name"]),
		Prefix: asString(m["prefix"]),
	}, nil
}

func (c *Client) FirstLevelSuites(ctx context.Context, projectID string) ([]models.Suite, error) {
	reply, err := c.call(ctx, "getFirstLevelTestSuitesForTestProject", map[string]any{"testprojectid": projectID})
	if err != nil {
		return nil, err
	}

	var suites []models.Suite
	for _, item := range asList(reply) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		suites = append(suites, suiteFromMap(m))
	}
	return suites, nil
}

func (c *Client) TestCaseIDsForSuite(ctx context.Context, suiteID string) ([]string, error) {
	reply, err := c.call(ctx, "getTestCasesForTestSuite", map[string]any{
		"testsuiteid": suiteID,
		"deep":        true,
		"details":     "only_id",
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, item := range asList(reply) {
		if id := asString(item); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *Client) TestCase(ctx context.Context, id string) (models.TestCase, error) {
	reply, err := c.call(ctx, "getTestCase", map[string]any{"testcaseid": id})
	if err != nil {
		return models.TestCase{}, err
	}

	list := asList(reply)
	if len(list) == 0 {
		return models.TestCase{}, fmt.Errorf("test case %s: %w", id, common.ErrNotFound)
	}
	m, ok := list[0].(map[string]any)
	if !ok {
		return models.TestCase{}, fmt.Errorf("test case %s: unexpected reply %T", id, list[0])
	}

	return testCaseFromMap(id, m)
}

func (c *Client) SuiteByID(ctx context.Context, suiteID string) (models.Suite, error) {
	reply, err := c.call(ctx, "getTestSuiteByID", map[string]any{"testsuiteid": suiteID})
	if err != nil {
		return models.Suite{}, err
	}

	m, ok := reply.(map[string]any)
	if !ok {
		return models.Suite{}, fmt.Errorf("suite %s: unexpected reply %T", suiteID, reply)
	}
	return suiteFromMap(m), nil
}

// CustomFieldValue wraps an error reply from TestLink in a
// *common.FieldLookupError so the caller can decide to stop asking for the
// field. Transport failures are returned as they are.
func (c *Client) CustomFieldValue(ctx context.Context, externalID, field string, version int, projectID string) (string, error) {
	reply, err := c.call(ctx, "getTestCaseCustomFieldDesignValue", map[string]any{
		"testcaseexternalid": externalID,
		"version":            version,
		"testprojectid":      projectID,
		"customfieldname":    field,
		"details":            "value",
	})
	if err != nil {
		var rerr *common.RemoteError
		if errors.As(err, &rerr) {
			return "", &common.FieldLookupError{Field: field, ExternalID: externalID, Err: err}
		}
		return "", err
	}

	switch v := reply.(type) {
	case map[string]any:
		return asString(v["value"]), nil
	default:
		return asString(v), nil
	}
}

func suiteFromMap(m map[string]any) models.Suite {
	return models.Suite{
		ID:       asString(m["id"]),
		Name:     asString(m["name"]),
		ParentID: asString(m["parent_id"]),
	}
}

func testCaseFromMap(id string, m map[string]any) (models.TestCase, error) {
	tc := models.TestCase{
		ID:         id,
		ExternalID: asString(m[models.FieldFullExternalID]),
		SuiteID:    asString(m[models.FieldTestSuiteID]),
		Fields:     make(map[string]string, len(m)),
	}

	for k, v := range m {
		if k == models.FieldSteps {
			continue
		}
		tc.Fields[k] = asString(v)
	}

	if raw := asString(m[models.FieldVersion]); raw != "" {
		version, err := strconv.Atoi(raw)
		if err != nil {
			return models.TestCase{}, fmt.Errorf("test case %s: bad version %q: %w", id, raw, err)
		}
		tc.Version = version
	}

	for _, item := range asList(m[models.FieldSteps]) {
		sm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tc.Steps = append(tc.Steps, models.Step{
			Number:          asString(sm["step_number"]),
			Actions:         asString(sm["actions"]),
			ExpectedResults: asString(sm["expected_results"]),
		})
	}

	return tc, nil
}

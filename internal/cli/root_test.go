package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/fedutinova/tlexport/internal/config"
	"github.com/fedutinova/tlexport/internal/models"
	"github.com/fedutinova/tlexport/internal/testlink"
)

type stubAPI struct {
	projectName string
	failCases   bool
}

func (s stubAPI) ProjectByName(_ context.Context, name string) (models.Project, error) {
	if name != s.projectName {
		return models.Project{}, common.ErrProjectNotFound
	}
	return models.Project{ID: "1", Name: name}, nil
}

func (stubAPI) FirstLevelSuites(context.Context, string) ([]models.Suite, error) {
	return []models.Suite{{ID: "10", Name: "Login"}}, nil
}

func (stubAPI) TestCaseIDsForSuite(context.Context, string) ([]string, error) {
	return []string{"100"}, nil
}

func (s stubAPI) TestCase(_ context.Context, id string) (models.TestCase, error) {
	if s.failCases {
		return models.TestCase{}, fmt.Errorf("getTestCase: %w", common.ErrRemote)
	}
	return models.TestCase{
		ID:         id,
		ExternalID: "MP-1",
		Version:    1,
		SuiteID:    "10",
		Fields: map[string]string{
			"name":                "Login works",
			"summary":             "<p>sum</p>",
			"preconditions":       "",
			"version":             "1",
			"full_tc_external_id": "MP-1",
		},
		Steps: []models.Step{
			{Number: "1", Actions: "open", ExpectedResults: "form"},
			{Number: "2", Actions: "submit", ExpectedResults: "home"},
		},
	}, nil
}

func (stubAPI) SuiteByID(context.Context, string) (models.Suite, error) {
	return models.Suite{}, errors.New("not expected")
}

func (stubAPI) CustomFieldValue(_ context.Context, ext, field string, _ int, _ string) (string, error) {
	return "", &common.FieldLookupError{Field: field, ExternalID: ext, Err: common.ErrRemote}
}

func testDeps(t *testing.T, out string) (Deps, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	return Deps{
		LoadConfig: func() config.Config {
			return config.Config{
				ServerURL:    "http://testlink.local/xmlrpc.php",
				DevKey:       "key",
				Project:      "My Project",
				CustomFields: []string{"Defects"},
				Fields:       append([]string(nil), config.DefaultFields...),
				Output:       out,
				StorageMode:  "none",
				LockTTL:      time.Hour,
			}
		},
		Dial: func(config.Config) (testlink.API, func() error, error) {
			return stubAPI{projectName: "My Project"}, nil, nil
		},
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	}, &stdout
}

func TestRootCmd_ExportsWithoutFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	deps, stdout := testDeps(t, out)

	cmd := NewRootCmd(deps)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "name,summary,preconditions,testsuite_id"))
	assert.True(t, strings.HasSuffix(lines[0], "Defects,actions,expected_results"))
	assert.True(t, strings.HasPrefix(lines[1], "Login works,sum,,Login,"))
	assert.Equal(t, ",,,,,,,,,,submit,home", lines[2])

	assert.Contains(t, stdout.String(), "Total test cases in the project are: 1")
	assert.Contains(t, stdout.String(), "Total test cases exported: 1")
}

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	deps, _ := testDeps(t, filepath.Join(dir, "ignored.csv"))
	out := filepath.Join(dir, "other.csv")

	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"--output", out, "--custom-fields", "", "--progress"})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Defects")
	assert.NoFileExists(t, filepath.Join(dir, "ignored.csv"))
}

func TestRootCmd_AbortedRunStillReportsTotal(t *testing.T) {
	deps, stdout := testDeps(t, filepath.Join(t.TempDir(), "results.csv"))
	deps.Dial = func(config.Config) (testlink.API, func() error, error) {
		return stubAPI{projectName: "My Project", failCases: true}, nil, nil
	}

	cmd := NewRootCmd(deps)
	err := cmd.Execute()
	require.ErrorIs(t, err, common.ErrRemote)

	assert.Contains(t, stdout.String(), "Project My Project. Total test cases in the project are: 1")
	assert.NotContains(t, stdout.String(), "Success!")
}

func TestRootCmd_UnknownProject(t *testing.T) {
	deps, _ := testDeps(t, filepath.Join(t.TempDir(), "results.csv"))

	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"--project", "Nope"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, common.IsNotFound(err))
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	deps, _ := testDeps(t, filepath.Join(t.TempDir(), "results.csv"))

	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"--fields", "name,summary"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	deps, _ := testDeps(t, filepath.Join(t.TempDir(), "results.csv"))

	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.Execute())
}

func TestRootCmd_PublishesLocally(t *testing.T) {
	dir := t.TempDir()
	deps, stdout := testDeps(t, filepath.Join(dir, "results.csv"))
	load := deps.LoadConfig
	deps.LoadConfig = func() config.Config {
		cfg := load()
		cfg.StorageMode = "local"
		cfg.LocalStorageDir = filepath.Join(dir, "published")
		return cfg
	}

	cmd := NewRootCmd(deps)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "Published: file://")
	matches, err := filepath.Glob(filepath.Join(dir, "published", "exports", "*", "*", "*", "results_*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

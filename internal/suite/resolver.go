// Package suite resolves test suite ids to "Parent / Child" paths.
package suite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fedutinova/tlexport/internal/common"
	"github.com/fedutinova/tlexport/internal/models"
)

// Separator joins suite names in a resolved path.
const Separator = " / "

// Fetcher looks up a single suite; testlink.API satisfies it.
type Fetcher interface {
	SuiteByID(ctx context.Context, suiteID string) (models.Suite, error)
}

// Resolver memoizes suite paths for one export run. It is not safe for
// concurrent use.
type Resolver struct {
	api   Fetcher
	paths map[string]string
}

func NewResolver(api Fetcher) *Resolver {
	return &Resolver{
		api:   api,
		paths: make(map[string]string),
	}
}

// Seed registers first level suites; their path is their name.
func (r *Resolver) Seed(suites ...models.Suite) {
	for _, s := range suites {
		r.paths[s.ID] = s.Name
	}
}

// Len reports how many suite paths are cached.
func (r *Resolver) Len() int {
	return len(r.paths)
}

// Resolve returns the full path of suiteID, walking up parent links until
// it meets a cached suite. Every suite on the walk is cached on the way
// back down.
func (r *Resolver) Resolve(ctx context.Context, suiteID string) (string, error) {
	if p, ok := r.paths[suiteID]; ok {
		return p, nil
	}

	var chain []models.Suite
	visited := map[string]bool{}
	id := suiteID

	for {
		if visited[id] {
			return "", &common.SuiteResolutionError{SuiteID: suiteID, Chain: ids(chain, id), Reason: "cyclic parent reference"}
		}
		visited[id] = true

		s, err := r.api.SuiteByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("resolve suite %s: %w", suiteID, err)
		}
		if s.ID == "" {
			s.ID = id
		}
		chain = append(chain, s)

		if _, ok := r.paths[s.ParentID]; ok {
			break
		}
		if isRoot(s.ParentID) {
			return "", &common.SuiteResolutionError{SuiteID: suiteID, Chain: ids(chain, ""), Reason: "reached a root suite that is not a first level suite of the project"}
		}
		id = s.ParentID
	}

	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		r.paths[s.ID] = r.paths[s.ParentID] + Separator + s.Name
	}

	slog.Debug("suite path resolved", "suite_id", suiteID, "path", r.paths[suiteID], "fetched", len(chain))
	return r.paths[suiteID], nil
}

func isRoot(parentID string) bool {
	return parentID == "" || parentID == "0"
}

func ids(chain []models.Suite, next string) []string {
	out := make([]string, 0, len(chain)+1)
	for _, s := range chain {
		out = append(out, s.ID)
	}
	if next != "" {
		out = append(out, next)
	}
	return out
}

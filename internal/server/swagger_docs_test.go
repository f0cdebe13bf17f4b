package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var fiberParam = regexp.MustCompile(`:(\w+)`)

// documentedRoutes returns "METHOD /path" for every operation in the
// registered swagger document, relative to its base path.
func documentedRoutes(t *testing.T) []string {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		BasePath string                               `json:"basePath"`
		Paths    map[string]map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "/api", doc.BasePath)

	var out []string
	for path, ops := range doc.Paths {
		for method := range ops {
			out = append(out, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(out)
	return out
}

// servedRoutes returns the JSON API routes of the app in the same form.
func servedRoutes(env *testEnv) []string {
	seen := map[string]struct{}{}
	for _, r := range env.app.GetRoutes(true) {
		if !strings.HasPrefix(r.Path, "/api/") || r.Method == http.MethodHead {
			continue
		}
		path := strings.TrimPrefix(r.Path, "/api")
		if strings.HasPrefix(path, "/ws/") || strings.HasPrefix(path, "/swagger/") {
			continue
		}
		if len(path) > 1 {
			path = strings.TrimSuffix(path, "/")
		}
		path = fiberParam.ReplaceAllString(path, "{$1}")
		seen[r.Method+" "+path] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestSwaggerDocumentMatchesRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	served := servedRoutes(env)
	require.NotEmpty(t, served)
	assert.Contains(t, served, "POST /posts")
	assert.Contains(t, served, "DELETE /follow/{username}")
	assert.Equal(t, served, documentedRoutes(t))
}

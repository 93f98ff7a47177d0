package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"crosseco/internal/combo"
	gh "crosseco/internal/github"
	"crosseco/internal/match"
	"crosseco/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves /repos/acme/{name}; "gone" is 404 and "broken" is 500.
func fakeGitHub(t *testing.T) (*gh.Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		name := strings.TrimPrefix(r.URL.Path, "/repos/acme/")
		switch name {
		case "gone":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"boom"}`)
		default:
			fmt.Fprintf(w, `{"full_name":"Acme/%s","stargazers_count":7,"forks_count":2,"archived":false,"fork":true}`, name)
		}
	}))
	t.Cleanup(server.Close)

	c, err := gh.NewClient(context.Background(), "", gh.WithBaseURL(server.URL))
	require.NoError(t, err)
	return c, &hits
}

func TestTargets(t *testing.T) {
	results := []*match.Result{
		{Subset: combo.Subset{"Go", "NPM"}, Rows: []match.Row{{Key: "github.com/acme/a"}, {Key: "github.com/acme/b"}}},
		nil,
		{Subset: combo.Subset{"NPM", "PyPI"}, Rows: []match.Row{{Key: "github.com/acme/b"}}},
	}
	got := Targets(results)
	require.Len(t, got, 2)
	assert.Equal(t, Target{Key: "github.com/acme/a", Combinations: []string{"Go + NPM"}}, got[0])
	assert.Equal(t, Target{Key: "github.com/acme/b", Combinations: []string{"Go + NPM", "NPM + PyPI"}}, got[1])
}

func TestEnricher_LookupCaches(t *testing.T) {
	client, hits := fakeGitHub(t)
	e, err := New(client, NewBudget(0), 16, 2)
	require.NoError(t, err)

	md, err := e.Lookup(context.Background(), "github.com/acme/widget")
	require.NoError(t, err)
	assert.Equal(t, Metadata{Found: true, FullName: "Acme/widget", Stars: 7, Forks: 2, Fork: true}, md)

	_, err = e.Lookup(context.Background(), "github.com/acme/widget")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnricher_LookupNotFound(t *testing.T) {
	client, _ := fakeGitHub(t)
	e, err := New(client, NewBudget(0), 16, 1)
	require.NoError(t, err)

	md, err := e.Lookup(context.Background(), "github.com/acme/gone")
	require.NoError(t, err)
	assert.False(t, md.Found)
}

func TestEnricher_LookupRejectsBadKey(t *testing.T) {
	client, hits := fakeGitHub(t)
	e, err := New(client, NewBudget(0), 16, 1)
	require.NoError(t, err)

	_, err = e.Lookup(context.Background(), normalize.Key("nonsense"))
	assert.Error(t, err)
	assert.Zero(t, hits.Load())
}

func TestEnricher_RunRecordsFailuresPerRow(t *testing.T) {
	client, hits := fakeGitHub(t)
	// One worker runs the targets in order, so the last one exceeds the budget.
	e, err := New(client, NewBudget(3), 16, 1)
	require.NoError(t, err)

	targets := []Target{
		{Key: "github.com/acme/one"},
		{Key: "github.com/acme/gone"},
		{Key: "github.com/acme/broken"},
		{Key: "github.com/acme/four"},
	}
	repos, err := e.Run(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, repos, 4)
	assert.Equal(t, int32(3), hits.Load())

	for i, r := range repos {
		assert.Equal(t, targets[i].Key, r.Key)
	}
	assert.True(t, repos[0].Found)
	assert.Empty(t, repos[0].Err)
	assert.False(t, repos[1].Found)
	assert.Empty(t, repos[1].Err)
	assert.NotEmpty(t, repos[2].Err)
	assert.Contains(t, repos[3].Err, ErrBudgetExhausted.Error())
}

func TestEnricher_RunCancelled(t *testing.T) {
	client, _ := fakeGitHub(t)
	e, err := New(client, NewBudget(0), 16, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, []Target{{Key: "github.com/acme/one"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	client, _ := fakeGitHub(t)
	_, err := New(nil, NewBudget(0), 1, 1)
	assert.Error(t, err)
	_, err = New(client, nil, 1, 1)
	assert.Error(t, err)
	_, err = New(client, NewBudget(0), 1, 0)
	assert.Error(t, err)
	_, err = New(client, NewBudget(0), 0, 1)
	assert.Error(t, err, "the cache needs a positive size")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "enriched.csv")
	repos := []Repo{
		{
			Target:   Target{Key: "github.com/acme/a", Combinations: []string{"Go + NPM", "NPM + PyPI"}},
			Metadata: Metadata{Found: true, FullName: "acme/a", Stars: 3, Forks: 1},
		},
		{Target: Target{Key: "github.com/acme/b"}, Err: "boom"},
	}
	require.NoError(t, WriteCSV(path, repos))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Repository,Combinations,Found,Full Name,Stars,Forks,Archived,Fork,Error\n"+
			"github.com/acme/a,Go + NPM; NPM + PyPI,true,acme/a,3,1,false,false,\n"+
			"github.com/acme/b,,false,,0,0,false,false,boom\n",
		string(data))
}

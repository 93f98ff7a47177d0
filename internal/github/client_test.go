package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ctx is nil")
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(context.Background(), "", WithBaseURL("://bad"))
	assert.Error(t, err)
}

func TestClient_Repository_LogsAndAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/repos/acme/widget" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"full_name":"acme/widget","stargazers_count":42,"archived":true}`)
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name     string
		token    string
		wantAuth string
	}{
		{name: "unauthenticated", token: "", wantAuth: ""},
		{name: "authenticated", token: "test-token", wantAuth: "Bearer test-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAuth = ""
			logger, hook := logtest.NewNullLogger()
			logger.SetLevel(log.DebugLevel)

			c, err := NewClient(context.Background(), tt.token, WithBaseURL(server.URL), WithLogger(logger))
			require.NoError(t, err)

			repo, _, err := c.Repository(context.Background(), "acme", "widget")
			require.NoError(t, err)
			assert.Equal(t, "acme/widget", repo.GetFullName())
			assert.Equal(t, 42, repo.GetStargazersCount())
			assert.True(t, repo.GetArchived())
			assert.Equal(t, tt.wantAuth, gotAuth)

			entries := hook.AllEntries()
			require.Len(t, entries, 2)
			assert.Equal(t, "GET", entries[0].Data["method"])
			assert.Equal(t, http.StatusOK, entries[1].Data["status"])
		})
	}
}

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name     string
		latest   string
		current  string
		expected bool
	}{
		{"same version", "0.1.0", "0.1.0", false},
		{"patch upgrade", "0.1.1", "0.1.0", true},
		{"patch downgrade", "0.1.0", "0.1.1", false},
		{"minor upgrade", "0.2.0", "0.1.9", true},
		{"major upgrade", "1.0.0", "0.9.9", true},
		{"multi-digit patch", "0.0.100", "0.0.99", true},
		{"shorter latest", "1.0", "0.9.3", true},
		{"shorter current", "0.9.3", "1.0", false},
		{"pre-release same base", "0.1.0-alpha", "0.1.0", false},
		{"build metadata", "0.1.1+build7", "0.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isNewerVersion(tt.latest, tt.current)
			if result != tt.expected {
				t.Errorf("isNewerVersion(%q, %q) = %v, want %v", tt.latest, tt.current, result, tt.expected)
			}
		})
	}
}

func TestChecker_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "taxdesk/0.1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"tag_name":"v0.2.0","html_url":"https://example.test/r/0.2.0"}`))
	}))
	defer srv.Close()

	c := &Checker{URL: srv.URL, Client: srv.Client()}
	got, err := c.Check(context.Background(), "0.1.0")

	require.NoError(t, err)
	assert.Equal(t, Update{Available: true, Latest: "0.2.0", URL: "https://example.test/r/0.2.0"}, got)
}

func TestChecker_CheckStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Checker{URL: srv.URL, Client: srv.Client()}
	_, err := c.Check(context.Background(), "0.1.0")
	assert.Error(t, err)
}

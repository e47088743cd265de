package e2e_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const complexJSON = `{
	"id": 12345,
	"uuid": "550e8400-e29b-41d4-a716-446655440000",
	"created_at": "2023-05-20T14:56:23Z",
	"updated_at": null,
	"homepage": "https://example.com/app",
	"status": "active",
	"config": {
		"enabled": true,
		"timeout_seconds": 30,
		"features": ["logging", "metrics", "alerting"],
		"rate_limits": {
			"per_second": 100,
			"burst": 150
		}
	},
	"users": [
		{"id": 1, "name": "Alice", "roles": ["admin", "user"]},
		{"id": 2, "name": "Bob", "roles": ["user"]}
	],
	"stats": {
		"requests": 1234567,
		"success_rate": 0.9999,
		"response_times": [0.045, 0.067, 0.032, 0.051]
	},
	"active": true
}`

func runGloss(t *testing.T, args ...string) map[string]interface{} {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	output, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		require.NoError(t, err, "CLI command failed: %s", string(exitErr.Stderr))
	}
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(output, &got), "output is not a JSON object: %s", string(output))
	return got
}

// TestEndToEnd_ComplexNestedStructures decodes a nested document with every field kind
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexJSON), 0644))

	got := runGloss(t, "-i", jsonFile,
		"-F", "id:int!",
		"-F", "created_at:date",
		"-F", "updated_at:date",
		"-F", "homepage:url",
		"-F", "status:enum(active|suspended)",
		"-F", "config.enabled:bool",
		"-F", "config.features:[]string",
		"-F", "config.rate_limits.burst:int",
		"-F", "users:[]object",
		"-F", "stats.success_rate:double",
		"-F", "stats.response_times:[]float",
		"-F", "active:bool",
	)

	assert.Equal(t, float64(12345), got["id"])
	assert.Equal(t, "2023-05-20T14:56:23Z", got["created_at"])
	assert.NotContains(t, got, "updated_at")
	assert.Equal(t, "https://example.com/app", got["homepage"])
	assert.Equal(t, "active", got["status"])
	assert.Equal(t, map[string]interface{}{
		"enabled":     true,
		"features":    []interface{}{"logging", "metrics", "alerting"},
		"rate_limits": map[string]interface{}{"burst": float64(150)},
	}, got["config"])
	assert.Len(t, got["users"], 2)
	stats, ok := got["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.9999, stats["success_rate"])
	assert.Len(t, stats["response_times"], 4)
	assert.Equal(t, true, got["active"])
}

// TestEndToEnd_ConfigFile drives the run from a config file alone
func TestEndToEnd_ConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexJSON), 0644))

	configFile := filepath.Join(tempDir, "gloss.yml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
fields:
  - "id:int!"
  - "created_at:date"
  - "stats.success_rate:double"
decoding:
  timezone: "UTC"
encoding:
  key_style: lower_camel
log:
  backend: none
`), 0644))

	got := runGloss(t, "-c", configFile, "-i", jsonFile)
	assert.Equal(t, float64(12345), got["id"])
	assert.Equal(t, "2023-05-20T14:56:23Z", got["createdAt"])
	assert.Equal(t, map[string]interface{}{"successRate": 0.9999}, got["stats"])
}

// TestEndToEnd_URL fetches the document over HTTP
func TestEndToEnd_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token e2e" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(complexJSON))
	}))
	defer srv.Close()

	got := runGloss(t, "-u", srv.URL+"/app", "-H", "Authorization: token e2e", "-F", "id:int!", "-F", "status:string")
	assert.Equal(t, map[string]interface{}{"id": float64(12345), "status": "active"}, got)
}

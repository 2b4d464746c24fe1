package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domdiag "github.com/bryanwahyu/mealsense/internal/domain/diagnostics"
)

func testCommand(t *testing.T, stdin string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())

	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	debug = false
	return cmd, &buf
}

func withSnapshot(t *testing.T, vars map[string]string) {
	t.Helper()
	prev := credentialSnapshot
	credentialSnapshot = func() domdiag.ConfigSnapshot { return domdiag.NewConfigSnapshot(vars) }
	t.Cleanup(func() { credentialSnapshot = prev })
}

func TestRunDiagnose_Unhealthy(t *testing.T) {
	withSnapshot(t, nil)
	cmd, buf := testCommand(t, "")
	diagnoseJSON = true

	err := runDiagnose(cmd, nil)
	assert.ErrorIs(t, err, errUnhealthy)

	var report domdiag.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, domdiag.HealthUnhealthy, report.Status)
	assert.Equal(t, domdiag.StatusSkipped, report.Checks.FirebaseInitialization.Status)
}

func TestRunDiagnose_Healthy(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	withSnapshot(t, map[string]string{
		domdiag.VarProjectID:   "meal-app",
		domdiag.VarClientEmail: "svc@meal-app.iam.gserviceaccount.com",
		domdiag.VarPrivateKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
	})
	cmd, buf := testCommand(t, "")
	diagnoseJSON = false

	require.NoError(t, runDiagnose(cmd, nil))
	out := buf.String()
	assert.Contains(t, out, `"status": "healthy"`)
	assert.Contains(t, out, "initialization")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "healthy"))
}

func TestRunValidate(t *testing.T) {
	cmd, buf := testCommand(t, `{"description":"Test","nutrients":[{"name":"Protein","value":20,"unit":"g","isHighlight":true}]}`)
	require.NoError(t, runValidate(cmd, nil))
	assert.Contains(t, buf.String(), `"valid": true`)
	assert.Contains(t, buf.String(), `"model": "unknown"`)
}

func TestRunValidate_FileAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"description":"x","nutrients":[]}`), 0o600))

	cmd, buf := testCommand(t, "")
	err := runValidate(cmd, []string{path})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), `"valid": false`)

	cmd, _ = testCommand(t, `[1,2]`)
	assert.Error(t, runValidate(cmd, []string{"-"}))
}

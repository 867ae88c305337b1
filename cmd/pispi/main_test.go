package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/pispi/internal/normalizer"
)

func runCLI(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIStreams(t, fs, args...)
	return out, err
}

func runCLIStreams(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("PISPI_CONFIG_FILE", "")
	t.Setenv("PISPI_OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&app{fs: fs})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, afero.NewMemMapFs(), "version")
	require.NoError(t, err)
	assert.Equal(t, "pispi dev\n", out)
}

func TestNormalizeCmd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "openapi.json",
		[]byte(`{"openapi":"3.0.3","info":{},"paths":{"/webhooks":{"get":{}}},"components":{}}`), 0o644))

	_, err := runCLI(t, fs, "normalize", "--source", "openapi.json", "--output", "out.json", "--log-level", "error")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "out.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operationId": "getWebhooks"`)
}

func TestNormalizeCmd_ProgressOnStdout(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "openapi.json",
		[]byte(`{"openapi":"3.0.3","info":{},"paths":{"/webhooks":{"get":{}}},"components":{}}`), 0o644))

	out, errOut, err := runCLIStreams(t, fs, "normalize", "-s", "openapi.json", "-o", "out.json", "--log-level", "info")
	require.NoError(t, err)

	assert.Contains(t, out, "category=fixed")
	assert.Contains(t, out, "Added default tag")
	assert.NotContains(t, errOut, "category=fixed")
}

func TestNormalizeCmd_StructuralFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "openapi.json", []byte(`{"openapi":"3.0.3","paths":{}}`), 0o644))

	_, err := runCLI(t, fs, "normalize", "-s", "openapi.json", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, normalizer.ErrStructuralValidation)

	data, err := afero.ReadFile(fs, "openapi.json")
	require.NoError(t, err)
	assert.Equal(t, `{"openapi":"3.0.3","paths":{}}`, string(data))
}

func TestPatchCmd_MissingTargetsSucceeds(t *testing.T) {
	_, err := runCLI(t, afero.NewMemMapFs(), "patch", "--models-dir", "nope", "--core-config", "nope.ts", "--log-level", "error")
	assert.NoError(t, err)
}

func TestPatchCmd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "gen/core/OpenAPI.ts", []byte("export const OpenAPI = {\n    BASE: '',\n    VERSION: '0.0.1',\n};\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "gen/models/WebhookModificationRequest.ts", []byte("export type WebhookModificationRequest = ;\n"), 0o644))

	_, err := runCLI(t, fs, "patch", "--models-dir", "gen/models", "--core-config", "gen/core/OpenAPI.ts", "--api-version", "2.0.0", "--log-level", "error")
	require.NoError(t, err)

	core, err := afero.ReadFile(fs, "gen/core/OpenAPI.ts")
	require.NoError(t, err)
	assert.Contains(t, string(core), "BASE: 'https://sandbox.pi-spi.bceao.int/api'")
	assert.Contains(t, string(core), "VERSION: '2.0.0'")

	model, err := afero.ReadFile(fs, "gen/models/WebhookModificationRequest.ts")
	require.NoError(t, err)
	assert.Contains(t, string(model), "callbackUrl?: string;")
}

package testutil

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specPath = "../../api/openapi/openapi.yaml"

func TestLoadOpenAPIValidator(t *testing.T) {
	v, err := LoadOpenAPIValidator(specPath)

	require.NoError(t, err)
	assert.Equal(t, 14, v.Operations())
}

func TestLoadOpenAPIValidator_MissingFile(t *testing.T) {
	_, err := LoadOpenAPIValidator("does-not-exist.yaml")

	assert.Error(t, err)
}

func TestValidateResponse_Version(t *testing.T) {
	v := NewOpenAPIValidator(t, specPath)

	req, err := http.NewRequest(http.MethodGet, "/version", nil)
	require.NoError(t, err)

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"version":"0.0.0","commit":"unknown","build_date":"unknown"}`)),
	}

	v.ValidateResponse(t, req, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"version"`, "body is restored after validation")
}

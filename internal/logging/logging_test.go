package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false, true)

	logger.Info("collected pull requests", "repo", "octo/hello", "prs", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "collected pull requests", rec["msg"])
	assert.Equal(t, "octo/hello", rec["repo"])
	assert.EqualValues(t, 3, rec["prs"])
}

func TestNewLevels(t *testing.T) {
	var quiet bytes.Buffer
	New(&quiet, false, true).Debug("page fetched")
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	New(&loud, true, true).Debug("page fetched")
	assert.True(t, strings.Contains(loud.String(), "page fetched"))
}

package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = stdout, stderr
	t.Cleanup(func() { Stdout, Stderr = oldOut, oldErr })
	return stdout, stderr
}

func TestMessages(t *testing.T) {
	stdout, stderr := capture(t)

	Success("created user %d", 7)
	Info("no pending migrations")
	Error("user %d: %s", 9, "not found")

	assert.Contains(t, stdout.String(), "created user 7")
	assert.Contains(t, stdout.String(), "no pending migrations")
	assert.NotContains(t, stdout.String(), "not found")
	assert.Contains(t, stderr.String(), "user 9: not found")
}

func TestSection(t *testing.T) {
	stdout, _ := capture(t)

	Section("Favorites")

	assert.Contains(t, stdout.String(), "Favorites")
	assert.Contains(t, stdout.String(), "═════════")
}

func TestJSON(t *testing.T) {
	stdout, _ := capture(t)

	require.NoError(t, JSON(map[string]any{"id": 1, "planet": nil}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.EqualValues(t, 1, got["id"])
	assert.Contains(t, got, "planet")
	assert.Nil(t, got["planet"])
}

func TestIcons(t *testing.T) {
	assert.Contains(t, StatusIcon("applied"), "✓")
	assert.Contains(t, StatusIcon("pending"), "○")
	assert.Contains(t, StatusIcon("failed"), "✗")
	assert.Contains(t, StatusIcon("unknown"), "•")

	assert.Contains(t, KindIcon("planet"), "◍")
	assert.Contains(t, KindIcon("starship"), "•")
}

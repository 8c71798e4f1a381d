package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Output(t *testing.T) {
	original := versionInfo
	t.Cleanup(func() { versionInfo = original })

	SetVersion("1.2.3", "abc123", "2026-01-31")

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Marionette 1.2.3")
	assert.Contains(t, out, "Commit: abc123")
	assert.Contains(t, out, "Built:  2026-01-31")
}

func TestVersionCmd_Defaults(t *testing.T) {
	cmd := NewVersionCmd()
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Long)
	assert.Equal(t, "dev", versionInfo.Version)
}

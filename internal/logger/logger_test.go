package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebug(t *testing.T) {
	t.Run("suppressed when verbose is off", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf)
		SetVerbose(false)

		Debug("fetching page %d", 3)

		assert.Empty(t, buf.String())
	})

	t.Run("printed when verbose is on", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf)
		SetVerbose(true)
		t.Cleanup(func() { SetVerbose(false) })

		Debug("fetching page %d", 3)

		assert.Equal(t, "[DEBUG] fetching page 3\n", buf.String())
	})
}

func TestWarn(t *testing.T) {
	t.Run("printed regardless of verbose mode", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf)
		SetVerbose(false)

		Warn("skipping issue %d: %s", 17, "retries exhausted")

		assert.Equal(t, "[WARN] skipping issue 17: retries exhausted\n", buf.String())
	})
}

func TestIsVerbose(t *testing.T) {
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

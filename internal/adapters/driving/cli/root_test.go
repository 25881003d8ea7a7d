package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRepository(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		owner, repo, err := splitRepository("ethereum/EIPs")
		require.NoError(t, err)
		assert.Equal(t, "ethereum", owner)
		assert.Equal(t, "EIPs", repo)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, arg := range []string{"", "noslash", "too/many/parts", "/repo", "owner/"} {
			_, _, err := splitRepository(arg)
			assert.Error(t, err, "expected %q to be rejected", arg)
		}
	})
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "ghp_...wxyz", maskToken("ghp_abcdefghijklmnopwxyz"))
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "****", maskToken(""))
}

package jsonl

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eipforge/eipharvest/internal/core/domain"
)

func issueRecord(number int, title string) domain.HarvestRecord {
	return domain.HarvestRecord{
		Kind: domain.KindIssue,
		Issue: &domain.Issue{
			Number:    number,
			Title:     title,
			Labels:    []string{},
			Reactions: domain.NewReactionCounts(),
			Comments:  []domain.Comment{},
		},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestSink_Append(t *testing.T) {
	t.Run("writes one parseable line per record", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "github_discussions.jsonl")
		sink, err := NewSink(path)
		require.NoError(t, err)
		defer sink.Close()

		require.NoError(t, sink.Append(issueRecord(1, "first")))
		require.NoError(t, sink.Append(issueRecord(2, "second")))

		lines := readLines(t, path)
		require.Len(t, lines, 2)

		var first domain.HarvestRecord
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, domain.KindIssue, first.Kind)
		require.NotNil(t, first.Issue)
		assert.Equal(t, 1, first.Issue.Number)
		assert.Equal(t, "first", first.Issue.Title)
		assert.Len(t, first.Issue.Reactions, 8, "the reaction key set survives the round trip")
	})

	t.Run("records are durable before the sink closes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")
		sink, err := NewSink(path)
		require.NoError(t, err)
		defer sink.Close()

		require.NoError(t, sink.Append(issueRecord(7, "durable")))

		// Read back without closing: the record must already be on disk.
		lines := readLines(t, path)
		require.Len(t, lines, 1)
	})

	t.Run("appends to an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")

		first, err := NewSink(path)
		require.NoError(t, err)
		require.NoError(t, first.Append(issueRecord(1, "from the first run")))
		require.NoError(t, first.Close())

		second, err := NewSink(path)
		require.NoError(t, err)
		require.NoError(t, second.Append(issueRecord(2, "from the second run")))
		require.NoError(t, second.Close())

		assert.Len(t, readLines(t, path), 2)
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "out.jsonl")

		sink, err := NewSink(path)
		require.NoError(t, err)
		defer sink.Close()

		require.NoError(t, sink.Append(issueRecord(1, "nested")))
		assert.FileExists(t, path)
	})

	t.Run("rejects appends after close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")
		sink, err := NewSink(path)
		require.NoError(t, err)
		require.NoError(t, sink.Close())

		err = sink.Append(issueRecord(1, "late"))
		assert.ErrorIs(t, err, domain.ErrSinkClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		sink, err := NewSink(filepath.Join(t.TempDir(), "out.jsonl"))
		require.NoError(t, err)

		require.NoError(t, sink.Close())
		require.NoError(t, sink.Close())
	})
}

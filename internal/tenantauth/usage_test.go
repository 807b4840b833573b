package tenantauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderPersistsEntry(t *testing.T) {
	st := newMockStore()
	rec := NewRecorder(st, nil)

	rec.Record(context.Background(), "u1", "t1", "app1", "translation", map[string]any{
		"source_lang": "en",
		"target_lang": "de",
	})

	require.Len(t, st.usageLogs, 1)
	entry := st.usageLogs[0]
	assert.Equal(t, "translation", entry.Action)
	assert.Contains(t, entry.Metadata, "source_lang")
}

func TestRecorderSwallowsWriteFailure(t *testing.T) {
	st := newMockStore()
	st.failUsageInsert = true
	rec := NewRecorder(st, nil)

	// Must not panic or surface the failure in any way.
	rec.Record(context.Background(), "u1", "t1", "app1", "prompt_completion", nil)
	assert.Empty(t, st.usageLogs)
}

func TestRecorderAcceptsNilMetadata(t *testing.T) {
	st := newMockStore()
	rec := NewRecorder(st, nil)

	rec.Record(context.Background(), "u1", "t1", "app1", "prompt_completion", nil)

	require.Len(t, st.usageLogs, 1)
	assert.Equal(t, "{}", st.usageLogs[0].Metadata)
}

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/compujudge/internal/grade"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(Config{Dir: filepath.Join(t.TempDir(), DefaultDataDir), CacheSize: 4})
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return s
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Folder/My Story.md", "My_Story_md_343170781.json"},
		{"a", "a_97.json"},
		{"drafts/chapter-1.md", "chapter_1_md_495739407.json"},
		{"notes/ünï.md", "_n__md_582114294.json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentName(tt.path))
		})
	}

	assert.Regexp(t, `^untitled_\d+\.json$`, DocumentName("folder/"))
	assert.NotEqual(t, DocumentName("a/story.md"), DocumentName("b/story.md"))
}

func TestLoad_MissingReturnsDefaults(t *testing.T) {
	s := newTestStore(t)

	data, err := s.Load(context.Background(), "drafts/one.md")
	require.NoError(t, err)
	assert.Equal(t, "drafts/one.md", data.FilePath)
	assert.Nil(t, data.LastResult)
	assert.Nil(t, data.LastAnalysisMtime)
	assert.Equal(t, int64(1_700_000_000_000), data.UpdatedAt)
}

func TestLoad_CorruptReturnsDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.documentPath("bad.md"), []byte("{not json"), 0o644))

	data, err := s.Load(context.Background(), "bad.md")
	require.NoError(t, err)
	assert.Equal(t, "bad.md", data.FilePath)
	assert.Nil(t, data.LastResult)
}

func TestSaveResult_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &ProjectData{
		FilePath:   "story.md",
		StoryBible: json.RawMessage(`{"theme":"time"}`),
	}, nil))

	mtime := time.UnixMilli(1_650_000_000_000)
	result := &grade.GradeResult{CommercialScore: 42, CommercialReason: "Sells", TensionArc: []float64{1, 2}}
	require.NoError(t, s.SaveResult(ctx, "story.md", result, &mtime))

	// A fresh store reads back from disk, bypassing the cache.
	fresh, err := New(Config{Dir: s.Dir()})
	require.NoError(t, err)
	data, err := fresh.Load(ctx, "story.md")
	require.NoError(t, err)

	require.NotNil(t, data.LastResult)
	assert.Equal(t, 42.0, data.LastResult.CommercialScore)
	assert.Equal(t, []float64{1, 2}, data.LastResult.TensionArc)
	assert.JSONEq(t, `{"theme":"time"}`, string(data.StoryBible))
	require.NotNil(t, data.LastAnalysisMtime)
	assert.Equal(t, int64(1_650_000_000_000), *data.LastAnalysisMtime)
	assert.Equal(t, int64(1_700_000_000_000), data.UpdatedAt)

	raw, err := os.ReadFile(filepath.Join(s.Dir(), DocumentName("story.md")))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lastAiResult"`)
	assert.Contains(t, string(raw), "\n  \"filePath\": \"story.md\"")
}

func TestLoad_ReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &ProjectData{FilePath: "story.md"}, nil))

	first, err := s.Load(ctx, "story.md")
	require.NoError(t, err)
	first.FilePath = "mutated"

	second, err := s.Load(ctx, "story.md")
	require.NoError(t, err)
	assert.Equal(t, "story.md", second.FilePath)
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, p := range []string{"a.md", "b.md", "c/a.md"} {
		require.NoError(t, s.SaveResult(ctx, p, &grade.GradeResult{CommercialScore: 1}, nil))
	}

	n, err = s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The cache is cleared too.
	data, err := s.Load(ctx, "a.md")
	require.NoError(t, err)
	assert.Nil(t, data.LastResult)
}

func TestSave_RequiresPath(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Save(context.Background(), &ProjectData{}, nil), ErrNoPath)

	_, err := s.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestLoad_Cancelled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx, "story.md")
	assert.ErrorIs(t, err, context.Canceled)
}

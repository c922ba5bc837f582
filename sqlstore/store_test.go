package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/approval"
	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTableCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t).TranslationCache()

	_, ok, err := c.Get(ctx, "Hello", "es")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "Hello", "es", "Hola"))

	val, ok, err := c.Get(ctx, "Hello", "es")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hola", val)

	_, ok, _ = c.Get(ctx, "Hello", "fr")
	assert.False(t, ok)
}

func TestTableCache_DuplicatesTolerated(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t).TranslationCache()

	require.NoError(t, c.Set(ctx, "Hello", "es", "Hola"))
	require.NoError(t, c.Set(ctx, "Hello", "es", "Hola!"))

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	val, _, _ := c.Get(ctx, "Hello", "es")
	assert.Equal(t, "Hola!", val)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []cache.Entry{{Text: "Hello", Lang: "es", Value: "Hola!"}}, entries)
}

func TestTableCache_NumeralCacheIsSeparate(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	require.NoError(t, s.TranslationCache().Set(ctx, "Room 1", "hi", "कमरा 1"))

	_, ok, err := s.NumeralCache().Get(ctx, "Room 1", "hi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ut.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	// Reopening applies the schema idempotently.
	s2, err := Open(path)
	require.NoError(t, err)
	s2.Close()
}

func TestApprovalRecords(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, err := s.GetRecord(ctx, "h1")
	assert.True(t, translator.IsNotFound(err))
	assert.True(t, translator.IsNotFound(s.AddDocumentRef(ctx, "h1", "A")))

	reviewed := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	rec := &approval.Record{
		ContentHash: "h1", OriginalText: "Hello", TranslatedText: "Hola",
		SourceLang: "en", TargetLang: "es", Status: approval.StatusPending,
		DocumentRefs: []string{"A"},
	}
	require.NoError(t, s.SaveRecord(ctx, rec))
	require.NoError(t, s.AddDocumentRef(ctx, "h1", "B"))
	require.NoError(t, s.AddDocumentRef(ctx, "h1", "B"))

	rec.Status = approval.StatusApproved
	rec.ReviewedBy = "alice"
	rec.ReviewedAt = reviewed
	rec.DocumentRefs = []string{"A"}
	require.NoError(t, s.SaveRecord(ctx, rec))

	got, err := s.GetRecord(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, got.Status)
	assert.Equal(t, "alice", got.ReviewedBy)
	assert.True(t, reviewed.Equal(got.ReviewedAt))
	assert.Equal(t, []string{"A", "B"}, got.DocumentRefs, "refs are never removed")
}

func TestFieldApprovals(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	fa := approval.FieldApproval{Status: approval.StatusRejected, ReviewedBy: "bob", ReviewedAt: time.Unix(1700000000, 0).UTC()}
	assert.True(t, translator.IsNotFound(s.SetFieldApproval(ctx, "A", "es", "title", fa)))

	require.NoError(t, s.RegisterDocument(ctx, "A"))
	require.NoError(t, s.RegisterDocument(ctx, "A"))

	empty, err := s.FieldApprovals(ctx, "A", "es")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.SetFieldApproval(ctx, "A", "es", "title", fa))
	fa.Status = approval.StatusApproved
	require.NoError(t, s.SetFieldApproval(ctx, "A", "es", "title", fa))

	got, err := s.FieldApprovals(ctx, "A", "es")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, approval.StatusApproved, got["title"].Status)
	assert.True(t, fa.ReviewedAt.Equal(got["title"].ReviewedAt))
}

func TestPropagatorOverSQLite(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	p := approval.NewPropagator(s, s)

	src := document.MustParse(`{"title":"Hello"}`)
	dst := document.MustParse(`{"title":"Hola"}`)
	for _, id := range []string{"A", "B"} {
		_, err := p.IndexDocument(ctx, id, src, dst, "en", "es")
		require.NoError(t, err)
	}

	_, err := p.RecordApproval(ctx, approval.Request{
		OriginalText: "Hello", TranslatedText: "Hola", SourceLang: "en", TargetLang: "es",
		FieldPath: "title", DocumentID: "A", Status: approval.StatusApproved, Reviewer: "alice",
	})
	require.NoError(t, err)

	got, err := s.FieldApprovals(ctx, "B", "es")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, got["title"].Status)
}

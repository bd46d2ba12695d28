package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonlang/toon-ls/parser"
)

const testURI = "file:///test.toon"

func buildSnap(t *testing.T, version int32, text string) *Snapshot {
	t.Helper()
	snap := BuildSnapshot(testURI, version, text, parser.Limits{})
	require.NotNil(t, snap)
	require.NotNil(t, snap.Root)
	require.NotNil(t, snap.Index)
	return snap
}

func TestDocumentStore_OpenAndSnapshot(t *testing.T) {
	store := NewDocumentStore()
	store.Open(testURI, 1, "name: Ada\n")

	text, version, ok := store.Text(testURI)
	require.True(t, ok)
	assert.Equal(t, "name: Ada\n", text)
	assert.Equal(t, int32(1), version)

	// No snapshot until a parse commits.
	assert.Nil(t, store.Snapshot(testURI))

	require.True(t, store.Commit(buildSnap(t, 1, "name: Ada\n")))
	snap := store.Snapshot(testURI)
	require.NotNil(t, snap)
	assert.Equal(t, int32(1), snap.Version)
}

func TestDocumentStore_UpdateRejectsStaleVersion(t *testing.T) {
	store := NewDocumentStore()
	store.Open(testURI, 1, "a: 1\n")

	assert.True(t, store.Update(testURI, 3, "a: 3\n"))
	assert.False(t, store.Update(testURI, 2, "a: 2\n"))

	text, version, ok := store.Text(testURI)
	require.True(t, ok)
	assert.Equal(t, "a: 3\n", text)
	assert.Equal(t, int32(3), version)
}

func TestDocumentStore_UpdateUnknownDocument(t *testing.T) {
	store := NewDocumentStore()
	assert.False(t, store.Update("file:///nope.toon", 1, "a: 1\n"))
}

func TestDocumentStore_CommitLastVersionWins(t *testing.T) {
	store := NewDocumentStore()
	store.Open(testURI, 1, "a: 1\n")
	store.Update(testURI, 2, "a: 2\n")

	// Version 2's parse finishes first; version 1's slow parse lands late
	// and must not clobber it.
	require.True(t, store.Commit(buildSnap(t, 2, "a: 2\n")))
	assert.False(t, store.Commit(buildSnap(t, 1, "a: 1\n")))

	snap := store.Snapshot(testURI)
	require.NotNil(t, snap)
	assert.Equal(t, int32(2), snap.Version)
	assert.Equal(t, "a: 2\n", snap.Text)
}

func TestDocumentStore_CommitAfterClose(t *testing.T) {
	store := NewDocumentStore()
	store.Open(testURI, 1, "a: 1\n")
	store.Close(testURI)

	assert.False(t, store.Commit(buildSnap(t, 1, "a: 1\n")))
	assert.Nil(t, store.Snapshot(testURI))
}

func TestDocumentStore_OpenResetsPreviousState(t *testing.T) {
	store := NewDocumentStore()
	store.Open(testURI, 5, "old: 1\n")
	require.True(t, store.Commit(buildSnap(t, 5, "old: 1\n")))

	// Editor closed and reopened the file; versions restart.
	store.Open(testURI, 1, "new: 2\n")
	assert.Nil(t, store.Snapshot(testURI))

	require.True(t, store.Commit(buildSnap(t, 1, "new: 2\n")))
	snap := store.Snapshot(testURI)
	require.NotNil(t, snap)
	assert.Equal(t, "new: 2\n", snap.Text)
}

func TestDocumentStore_Len(t *testing.T) {
	store := NewDocumentStore()
	assert.Equal(t, 0, store.Len())

	store.Open("file:///a.toon", 1, "a: 1\n")
	store.Open("file:///b.toon", 1, "b: 2\n")
	assert.Equal(t, 2, store.Len())

	store.Close("file:///a.toon")
	assert.Equal(t, 1, store.Len())
}

func TestBuildSnapshot_CarriesErrorsAndIndex(t *testing.T) {
	snap := BuildSnapshot(testURI, 1, "key value\n", parser.Limits{})
	require.NotNil(t, snap)
	assert.NotEmpty(t, snap.Errors)
	assert.Equal(t, testURI, snap.URI)
	assert.Equal(t, 2, snap.Index.LineCount())
}

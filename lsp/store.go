// Package lsp implements the TOON language service: a concurrent document
// store plus stateless query handlers (diagnostics, symbols, hover,
// completion, navigation, rename, semantic tokens, formatting) that each
// operate on an immutable snapshot of one document.
package lsp

import (
	"sync"

	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/parser"
)

// Snapshot is one fully parsed revision of a document. It is immutable after
// commit; every query handler reads a snapshot and never the live store
// entry, so an in-flight reparse can never expose a half-updated tree.
type Snapshot struct {
	URI     string
	Version int32
	Text    string
	Root    *ast.Node
	Errors  []*parser.ParseError
	Index   *parser.LineIndex
}

// document is one store entry. Text and version advance on every change
// notification; the committed snapshot trails until a reparse lands.
type document struct {
	mu      sync.RWMutex
	version int32
	text    string
	snap    *Snapshot
}

// DocumentStore tracks every open document. Entries are replaced wholesale
// under a per-entry lock; the outer map lock is held only to look entries up.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*document)}
}

func (s *DocumentStore) lookup(uri string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// Open registers a document revision. Reopening an already-open URI replaces
// its text and drops the stale snapshot.
func (s *DocumentStore) Open(uri string, version int32, text string) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.version = version
	doc.text = text
	doc.snap = nil
	doc.mu.Unlock()
}

// Update records a change notification's new full text. It returns false if
// the document is not open or the version is older than the current one.
func (s *DocumentStore) Update(uri string, version int32, text string) bool {
	doc, ok := s.lookup(uri)
	if !ok {
		return false
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if version < doc.version {
		return false
	}
	doc.version = version
	doc.text = text
	return true
}

// Commit installs the parse result for a revision. A commit loses if a newer
// snapshot already landed: last-committed-version-wins, never stale over
// fresh. Returns whether the snapshot was installed.
func (s *DocumentStore) Commit(snap *Snapshot) bool {
	doc, ok := s.lookup(snap.URI)
	if !ok {
		return false
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.snap != nil && doc.snap.Version > snap.Version {
		return false
	}
	doc.snap = snap
	return true
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Snapshot returns the last committed snapshot for the URI, or nil if the
// document is unknown or has not finished its first parse.
func (s *DocumentStore) Snapshot(uri string) *Snapshot {
	doc, ok := s.lookup(uri)
	if !ok {
		return nil
	}
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.snap
}

// Text returns the current (possibly not yet parsed) text and version.
func (s *DocumentStore) Text(uri string) (string, int32, bool) {
	doc, ok := s.lookup(uri)
	if !ok {
		return "", 0, false
	}
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.text, doc.version, true
}

// Len returns the number of open documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// BuildSnapshot parses text in recovery mode and bundles the result with a
// fresh position index. It does no store access; callers run it on a worker
// and Commit the result.
func BuildSnapshot(uri string, version int32, text string, limits parser.Limits) *Snapshot {
	root, errs := parser.ParseWithErrors(text, limits)
	return &Snapshot{
		URI:     uri,
		Version: version,
		Text:    text,
		Root:    root,
		Errors:  errs,
		Index:   parser.NewLineIndex(text),
	}
}

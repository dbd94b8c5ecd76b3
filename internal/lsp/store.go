package lsp

import (
	"sync"

	"linebasic/internal/program"
)

// Document is an open file and its compiled lines.
type Document struct {
	Text  string
	Lines []program.SourceLine
}

type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document // uri -> document
}

func NewStore() *Store {
	return &Store{docs: map[string]*Document{}}
}

// Set replaces the text of uri and recompiles it.
func (s *Store) Set(uri, text string) *Document {
	doc := &Document{Text: text, Lines: program.ParseSource(text)}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
	return doc
}

func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

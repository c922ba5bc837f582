package approval

import (
	"context"
	"sync"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

// MemoryStore is an in-memory RecordStore and DocumentStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	docs    map[string]map[string]map[string]FieldApproval // doc -> lang -> path
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		docs:    make(map[string]map[string]map[string]FieldApproval),
	}
}

// GetRecord implements RecordStore.
func (s *MemoryStore) GetRecord(_ context.Context, hash string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[hash]
	if !ok {
		return nil, &translator.NotFoundError{Resource: "approval record", ID: hash}
	}
	return rec.clone(), nil
}

// SaveRecord implements RecordStore.
func (s *MemoryStore) SaveRecord(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := rec.clone()
	if old, ok := s.records[rec.ContentHash]; ok {
		for _, ref := range old.DocumentRefs {
			cp.AddRef(ref)
		}
	}
	s.records[rec.ContentHash] = cp
	return nil
}

// AddDocumentRef implements RecordStore.
func (s *MemoryStore) AddDocumentRef(_ context.Context, hash, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[hash]
	if !ok {
		return &translator.NotFoundError{Resource: "approval record", ID: hash}
	}
	rec.AddRef(docID)
	return nil
}

// RegisterDocument implements DocumentStore.
func (s *MemoryStore) RegisterDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[docID]; !ok {
		s.docs[docID] = make(map[string]map[string]FieldApproval)
	}
	return nil
}

// SetFieldApproval implements DocumentStore.
func (s *MemoryStore) SetFieldApproval(_ context.Context, docID, lang, fieldPath string, fa FieldApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	langs, ok := s.docs[docID]
	if !ok {
		return &translator.NotFoundError{Resource: "document", ID: docID}
	}
	fields, ok := langs[lang]
	if !ok {
		fields = make(map[string]FieldApproval)
		langs[lang] = fields
	}
	fields[fieldPath] = fa
	return nil
}

// FieldApprovals implements DocumentStore.
func (s *MemoryStore) FieldApprovals(_ context.Context, docID, lang string) (map[string]FieldApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	langs, ok := s.docs[docID]
	if !ok {
		return nil, &translator.NotFoundError{Resource: "document", ID: docID}
	}
	out := make(map[string]FieldApproval, len(langs[lang]))
	for path, fa := range langs[lang] {
		out[path] = fa
	}
	return out, nil
}

var (
	_ RecordStore   = (*MemoryStore)(nil)
	_ DocumentStore = (*MemoryStore)(nil)
)

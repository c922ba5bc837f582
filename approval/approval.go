// Package approval records reviewer decisions on translations and spreads
// them across documents.
//
// Decisions are keyed by content hash, the digest of (original text,
// translated text, source language, target language). Every document that
// carries the same pair shares the decision, whether or not it was reviewed
// itself. Two fields with identical text but different meaning therefore
// cannot be reviewed independently.
package approval

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Status is a review decision.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("invalid approval status %q", s)
}

// Record is the review state of one translation pair.
type Record struct {
	ContentHash    string    `json:"content_hash"`
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	Status         Status    `json:"status"`
	ReviewedBy     string    `json:"reviewed_by,omitempty"`
	ReviewedAt     time.Time `json:"reviewed_at,omitempty"`
	DocumentRefs   []string  `json:"document_refs"`
}

// HasRef reports whether docID is among the record's documents.
func (r *Record) HasRef(docID string) bool {
	for _, ref := range r.DocumentRefs {
		if ref == docID {
			return true
		}
	}
	return false
}

// AddRef adds docID to the record's documents unless already present.
func (r *Record) AddRef(docID string) bool {
	if r.HasRef(docID) {
		return false
	}
	r.DocumentRefs = append(r.DocumentRefs, docID)
	sort.Strings(r.DocumentRefs)
	return true
}

func (r *Record) clone() *Record {
	cp := *r
	cp.DocumentRefs = append([]string(nil), r.DocumentRefs...)
	return &cp
}

// FieldApproval is the decision stamped onto a single document field.
type FieldApproval struct {
	Status     Status    `json:"status"`
	ReviewedAt time.Time `json:"reviewed_at"`
	ReviewedBy string    `json:"reviewed_by,omitempty"`
}

// RecordStore persists approval records.
type RecordStore interface {
	// GetRecord returns the record for hash or a *translator.NotFoundError.
	GetRecord(ctx context.Context, hash string) (*Record, error)

	// SaveRecord creates or overwrites the record. Document refs are merged
	// with the stored ones, never removed.
	SaveRecord(ctx context.Context, rec *Record) error

	// AddDocumentRef adds docID to the record's refs. The record must exist.
	AddDocumentRef(ctx context.Context, hash, docID string) error
}

// DocumentStore holds per-document, per-language field approvals.
type DocumentStore interface {
	// RegisterDocument makes docID known to the store. It is idempotent.
	RegisterDocument(ctx context.Context, docID string) error

	// SetFieldApproval stamps fa at fieldPath. Unknown documents yield a
	// *translator.NotFoundError.
	SetFieldApproval(ctx context.Context, docID, lang, fieldPath string, fa FieldApproval) error

	// FieldApprovals returns the approval map of docID for lang, which may be
	// empty. Unknown documents yield a *translator.NotFoundError.
	FieldApprovals(ctx context.Context, docID, lang string) (map[string]FieldApproval, error)
}

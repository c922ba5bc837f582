package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/approval"
)

// GetRecord implements approval.RecordStore.
func (s *Store) GetRecord(ctx context.Context, hash string) (*approval.Record, error) {
	query, args, err := s.sq.
		Select("original_text", "translated_text", "source_language", "target_language",
			"status", "reviewed_by", "reviewed_at").
		From("approval_records").
		Where(sq.Eq{"content_hash": hash}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rec := &approval.Record{ContentHash: hash}
	var status, reviewedAt string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.OriginalText,
		&rec.TranslatedText,
		&rec.SourceLang,
		&rec.TargetLang,
		&status,
		&rec.ReviewedBy,
		&reviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &translator.NotFoundError{Resource: "approval record", ID: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("get approval record: %w", err)
	}
	rec.Status = approval.Status(status)
	if rec.ReviewedAt, err = parseTime(reviewedAt); err != nil {
		return nil, fmt.Errorf("parse reviewed_at: %w", err)
	}

	rec.DocumentRefs, err = s.documentRefs(ctx, hash)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) documentRefs(ctx context.Context, hash string) ([]string, error) {
	query, args, err := s.sq.
		Select("document_id").
		From("approval_document_refs").
		Where(sq.Eq{"content_hash": hash}).
		OrderBy("document_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get document refs: %w", err)
	}
	defer rows.Close()

	refs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		refs = append(refs, id)
	}
	return refs, rows.Err()
}

// SaveRecord implements approval.RecordStore.
func (s *Store) SaveRecord(ctx context.Context, rec *approval.Record) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		query, args, err := s.sq.
			Insert("approval_records").
			Columns("content_hash", "original_text", "translated_text", "source_language",
				"target_language", "status", "reviewed_by", "reviewed_at").
			Values(rec.ContentHash, rec.OriginalText, rec.TranslatedText, rec.SourceLang,
				rec.TargetLang, string(rec.Status), rec.ReviewedBy, formatTime(rec.ReviewedAt)).
			Suffix("ON CONFLICT(content_hash) DO UPDATE SET status=excluded.status, " +
				"reviewed_by=excluded.reviewed_by, reviewed_at=excluded.reviewed_at").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save approval record: %w", err)
		}

		for _, ref := range rec.DocumentRefs {
			if err := s.insertRef(ctx, tx, rec.ContentHash, ref); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddDocumentRef implements approval.RecordStore.
func (s *Store) AddDocumentRef(ctx context.Context, hash, docID string) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		query, args, err := s.sq.
			Select("1").
			From("approval_records").
			Where(sq.Eq{"content_hash": hash}).
			ToSql()
		if err != nil {
			return err
		}
		var one int
		err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return &translator.NotFoundError{Resource: "approval record", ID: hash}
		}
		if err != nil {
			return err
		}
		return s.insertRef(ctx, tx, hash, docID)
	})
}

func (s *Store) insertRef(ctx context.Context, tx *sql.Tx, hash, docID string) error {
	query, args, err := s.sq.
		Insert("approval_document_refs").
		Options("OR IGNORE").
		Columns("content_hash", "document_id").
		Values(hash, docID).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add document ref: %w", err)
	}
	return nil
}

// RegisterDocument implements approval.DocumentStore.
func (s *Store) RegisterDocument(ctx context.Context, docID string) error {
	query, args, err := s.sq.
		Insert("documents").
		Options("OR IGNORE").
		Columns("id", "created_at").
		Values(docID, now()).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) checkDocument(ctx context.Context, docID string) error {
	query, args, err := s.sq.Select("1").From("documents").Where(sq.Eq{"id": docID}).ToSql()
	if err != nil {
		return err
	}
	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &translator.NotFoundError{Resource: "document", ID: docID}
	}
	return err
}

// SetFieldApproval implements approval.DocumentStore.
func (s *Store) SetFieldApproval(ctx context.Context, docID, lang, fieldPath string, fa approval.FieldApproval) error {
	if err := s.checkDocument(ctx, docID); err != nil {
		return err
	}
	query, args, err := s.sq.
		Insert("field_approvals").
		Options("OR REPLACE").
		Columns("document_id", "language", "field_path", "status", "reviewed_by", "reviewed_at").
		Values(docID, lang, fieldPath, string(fa.Status), fa.ReviewedBy, formatTime(fa.ReviewedAt)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set field approval: %w", err)
	}
	return nil
}

// FieldApprovals implements approval.DocumentStore.
func (s *Store) FieldApprovals(ctx context.Context, docID, lang string) (map[string]approval.FieldApproval, error) {
	if err := s.checkDocument(ctx, docID); err != nil {
		return nil, err
	}
	query, args, err := s.sq.
		Select("field_path", "status", "reviewed_by", "reviewed_at").
		From("field_approvals").
		Where(sq.Eq{"document_id": docID, "language": lang}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get field approvals: %w", err)
	}
	defer rows.Close()

	out := map[string]approval.FieldApproval{}
	for rows.Next() {
		var path, status, by, at string
		if err := rows.Scan(&path, &status, &by, &at); err != nil {
			return nil, err
		}
		ts, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		out[path] = approval.FieldApproval{Status: approval.Status(status), ReviewedBy: by, ReviewedAt: ts}
	}
	return out, rows.Err()
}

var (
	_ approval.RecordStore   = (*Store)(nil)
	_ approval.DocumentStore = (*Store)(nil)
)

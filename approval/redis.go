package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

const defaultRedisPrefix = "ut:approval:"

// RedisStore keeps records as hashes, document refs as sets and field
// approvals as one hash per (document, language).
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. An empty prefix means "ut:approval:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) recordKey(hash string) string { return s.prefix + "record:" + hash }
func (s *RedisStore) refsKey(hash string) string   { return s.prefix + "record:" + hash + ":refs" }
func (s *RedisStore) docsKey() string              { return s.prefix + "documents" }
func (s *RedisStore) fieldsKey(docID, lang string) string {
	return s.prefix + "doc:" + docID + ":" + lang
}

// GetRecord implements RecordStore.
func (s *RedisStore) GetRecord(ctx context.Context, hash string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, s.recordKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("get approval record: %w", err)
	}
	if len(fields) == 0 {
		return nil, &translator.NotFoundError{Resource: "approval record", ID: hash}
	}

	refs, err := s.client.SMembers(ctx, s.refsKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("get document refs: %w", err)
	}
	sort.Strings(refs)

	rec := &Record{
		ContentHash:    hash,
		OriginalText:   fields["original_text"],
		TranslatedText: fields["translated_text"],
		SourceLang:     fields["source_lang"],
		TargetLang:     fields["target_lang"],
		Status:         Status(fields["status"]),
		ReviewedBy:     fields["reviewed_by"],
		DocumentRefs:   refs,
	}
	if ts := fields["reviewed_at"]; ts != "" {
		if rec.ReviewedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse reviewed_at: %w", err)
		}
	}
	return rec, nil
}

// SaveRecord implements RecordStore.
func (s *RedisStore) SaveRecord(ctx context.Context, rec *Record) error {
	err := s.client.HSet(ctx, s.recordKey(rec.ContentHash),
		"original_text", rec.OriginalText,
		"translated_text", rec.TranslatedText,
		"source_lang", rec.SourceLang,
		"target_lang", rec.TargetLang,
		"status", string(rec.Status),
		"reviewed_by", rec.ReviewedBy,
		"reviewed_at", formatTime(rec.ReviewedAt),
	).Err()
	if err != nil {
		return fmt.Errorf("save approval record: %w", err)
	}

	if len(rec.DocumentRefs) == 0 {
		return nil
	}
	members := make([]interface{}, len(rec.DocumentRefs))
	for i, ref := range rec.DocumentRefs {
		members[i] = ref
	}
	if err := s.client.SAdd(ctx, s.refsKey(rec.ContentHash), members...).Err(); err != nil {
		return fmt.Errorf("save document refs: %w", err)
	}
	return nil
}

// AddDocumentRef implements RecordStore.
func (s *RedisStore) AddDocumentRef(ctx context.Context, hash, docID string) error {
	n, err := s.client.Exists(ctx, s.recordKey(hash)).Result()
	if err != nil {
		return fmt.Errorf("check approval record: %w", err)
	}
	if n == 0 {
		return &translator.NotFoundError{Resource: "approval record", ID: hash}
	}
	return s.client.SAdd(ctx, s.refsKey(hash), docID).Err()
}

// RegisterDocument implements DocumentStore.
func (s *RedisStore) RegisterDocument(ctx context.Context, docID string) error {
	return s.client.SAdd(ctx, s.docsKey(), docID).Err()
}

func (s *RedisStore) checkDocument(ctx context.Context, docID string) error {
	ok, err := s.client.SIsMember(ctx, s.docsKey(), docID).Result()
	if err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if !ok {
		return &translator.NotFoundError{Resource: "document", ID: docID}
	}
	return nil
}

// SetFieldApproval implements DocumentStore.
func (s *RedisStore) SetFieldApproval(ctx context.Context, docID, lang, fieldPath string, fa FieldApproval) error {
	if err := s.checkDocument(ctx, docID); err != nil {
		return err
	}
	data, err := json.Marshal(fa)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.fieldsKey(docID, lang), fieldPath, string(data)).Err()
}

// FieldApprovals implements DocumentStore.
func (s *RedisStore) FieldApprovals(ctx context.Context, docID, lang string) (map[string]FieldApproval, error) {
	if err := s.checkDocument(ctx, docID); err != nil {
		return nil, err
	}
	raw, err := s.client.HGetAll(ctx, s.fieldsKey(docID, lang)).Result()
	if err != nil {
		return nil, fmt.Errorf("get field approvals: %w", err)
	}
	out := make(map[string]FieldApproval, len(raw))
	for path, v := range raw {
		var fa FieldApproval
		if err := json.Unmarshal([]byte(v), &fa); err != nil {
			return nil, fmt.Errorf("decode approval at %s: %w", path, err)
		}
		out[path] = fa
	}
	return out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var (
	_ RecordStore   = (*RedisStore)(nil)
	_ DocumentStore = (*RedisStore)(nil)
)

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
)

// TableCache is a translation cache stored in one table. Rows are only ever
// inserted; the newest row for a key wins.
type TableCache struct {
	store *Store
	table string
}

// Get implements cache.TranslationCache.
func (c *TableCache) Get(ctx context.Context, text, lang string) (string, bool, error) {
	query, args, err := c.store.sq.
		Select("translated_text").
		From(c.table).
		Where(sq.Eq{"source_text": text, "target_language": lang}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = c.store.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", c.table, err)
	}
	return value, true, nil
}

// Set implements cache.TranslationCache.
func (c *TableCache) Set(ctx context.Context, text, lang, value string) error {
	query, args, err := c.store.sq.
		Insert(c.table).
		Columns("source_text", "target_language", "translated_text", "created_at").
		Values(text, lang, value, now()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := c.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", c.table, err)
	}
	return nil
}

// Entries implements cache.Enumerable, returning the newest row per key.
func (c *TableCache) Entries(ctx context.Context) ([]cache.Entry, error) {
	query, args, err := c.store.sq.
		Select("source_text", "target_language", "translated_text").
		From(c.table).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.table, err)
	}
	defer rows.Close()

	latest := map[[2]string]string{}
	for rows.Next() {
		var text, lang, value string
		if err := rows.Scan(&text, &lang, &value); err != nil {
			return nil, err
		}
		latest[[2]string{text, lang}] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]cache.Entry, 0, len(latest))
	for k, v := range latest {
		out = append(out, cache.Entry{Text: k[0], Lang: k[1], Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lang != out[j].Lang {
			return out[i].Lang < out[j].Lang
		}
		return out[i].Text < out[j].Text
	})
	return out, nil
}

// Count returns the number of rows, duplicates included.
func (c *TableCache) Count(ctx context.Context) (int, error) {
	query, args, err := c.store.sq.Select("COUNT(*)").From(c.table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = c.store.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

var (
	_ cache.TranslationCache = (*TableCache)(nil)
	_ cache.Enumerable       = (*TableCache)(nil)
)

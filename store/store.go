// Package store persists list items and their attachments.
//
// A Store is scoped to one list: every query filters on the list title it was
// opened with, so several lists can share a database. The backend is chosen
// by Config.Kind from the registered dialects (sqlite, postgres).
//
// Store is safe for concurrent use; the underlying sql.DB handles pooling.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/logging"
	"github.com/dtkav/casemap/usecase"
)

// ErrNotFound is returned when an item or attachment does not exist.
var ErrNotFound = errors.New("not found")

// createdLayout sorts lexically in time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

// Config selects a backend and the list to serve.
type Config struct {
	Kind string
	DSN  string
	List string
}

// Store is a list-scoped item and attachment store.
type Store struct {
	db   *sql.DB
	d    dialect
	list string
}

// Open connects to the configured backend and applies migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.List) == "" {
		return nil, fmt.Errorf("store: missing list title")
	}
	d, err := lookup(cfg.Kind)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN
	if d.prepare != nil {
		if dsn, err = d.prepare(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	memory := d.memory != nil && d.memory(cfg.DSN)
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Kind, err)
	}

	s := &Store{db: db, d: d, list: cfg.List}
	if err := s.migrate(ctx, memory); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Debug("store opened", "kind", cfg.Kind, "list", cfg.List, "memory", memory)
	return s, nil
}

func (s *Store) migrate(ctx context.Context, memory bool) error {
	if !memory {
		for _, stmt := range s.d.setup {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
	}
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// List is the list title this store serves.
func (s *Store) List() string {
	return s.list
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.d.rebind(q), args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.d.rebind(q), args...)
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.d.rebind(q), args...)
}

// Items returns every item of the list, newest first.
func (s *Store) Items(ctx context.Context) ([]aggregate.Record, error) {
	rows, err := s.query(ctx,
		`SELECT fields FROM items WHERE list = ? ORDER BY created DESC, id DESC`, s.list)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []aggregate.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var rec aggregate.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Item returns one item by id.
func (s *Store) Item(ctx context.Context, id int64) (aggregate.Record, error) {
	var raw string
	err := s.queryRow(ctx, `SELECT fields FROM items WHERE list = ? AND id = ?`, s.list, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query item %d: %w", id, err)
	}
	var rec aggregate.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode item %d: %w", id, err)
	}
	return rec, nil
}

// Attachments lists an item's attachments in upload order. An unknown item
// has no attachments.
func (s *Store) Attachments(ctx context.Context, id int64) ([]usecase.Attachment, error) {
	rows, err := s.query(ctx,
		`SELECT file_name FROM attachments WHERE list = ? AND item_id = ? ORDER BY position`, s.list, id)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	var out []usecase.Attachment
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, usecase.Attachment{
			FileName:          name,
			ServerRelativeURL: s.AttachmentURL(id, name),
		})
	}
	return out, rows.Err()
}

// AttachmentURL is the server-relative address of an attachment.
func (s *Store) AttachmentURL(id int64, name string) string {
	return "/Lists/" + url.PathEscape(s.list) + "/Attachments/" +
		strconv.FormatInt(id, 10) + "/" + url.PathEscape(name)
}

// Download returns the bytes behind a server-relative attachment URL.
func (s *Store) Download(ctx context.Context, serverRelativeURL string) ([]byte, error) {
	id, name, err := s.parseAttachmentURL(serverRelativeURL)
	if err != nil {
		return nil, err
	}
	var content []byte
	err = s.queryRow(ctx,
		`SELECT content FROM attachments WHERE list = ? AND item_id = ? AND file_name = ?`,
		s.list, id, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %s: %w", serverRelativeURL, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", serverRelativeURL, err)
	}
	return content, nil
}

func (s *Store) parseAttachmentURL(raw string) (int64, string, error) {
	prefix := "/Lists/" + url.PathEscape(s.list) + "/Attachments/"
	rest, ok := strings.CutPrefix(raw, prefix)
	if !ok {
		return 0, "", fmt.Errorf("attachment %s: %w", raw, ErrNotFound)
	}
	idPart, namePart, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, "", fmt.Errorf("attachment %s: %w", raw, ErrNotFound)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("attachment %s: %w", raw, ErrNotFound)
	}
	name, err := url.PathUnescape(namePart)
	if err != nil {
		return 0, "", fmt.Errorf("attachment %s: %w", raw, ErrNotFound)
	}
	return id, name, nil
}

// PutItem inserts or replaces an item. The id comes from the item's Id (or
// ID) field; Created, when parseable, orders the list, otherwise now is used.
func (s *Store) PutItem(ctx context.Context, rec aggregate.Record) (int64, error) {
	id, err := ItemID(rec)
	if err != nil {
		return 0, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode item %d: %w", id, err)
	}
	created := createdAt(rec).UTC().Format(createdLayout)

	_, err = s.exec(ctx,
		`INSERT INTO items (list, id, created, fields) VALUES (?, ?, ?, ?)
		ON CONFLICT (list, id) DO UPDATE SET created = excluded.created, fields = excluded.fields`,
		s.list, id, created, string(raw))
	if err != nil {
		return 0, fmt.Errorf("save item %d: %w", id, err)
	}
	return id, nil
}

// PutAttachment stores a file against an item. Re-uploading a name replaces
// its content and keeps its position.
func (s *Store) PutAttachment(ctx context.Context, id int64, name string, content []byte) error {
	if name == "" {
		return fmt.Errorf("attachment for item %d: empty file name", id)
	}
	if content == nil {
		content = []byte{}
	}
	_, err := s.exec(ctx,
		`INSERT INTO attachments (list, item_id, file_name, position, content)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM attachments WHERE list = ? AND item_id = ?), ?)
		ON CONFLICT (list, item_id, file_name) DO UPDATE SET content = excluded.content`,
		s.list, id, name, s.list, id, content)
	if err != nil {
		return fmt.Errorf("save attachment %s for item %d: %w", name, id, err)
	}
	return nil
}

// ItemID reads the numeric id of a list item.
func ItemID(rec aggregate.Record) (int64, error) {
	for _, key := range []string{"Id", "ID"} {
		switch v := rec[key].(type) {
		case float64:
			if v > 0 && v == float64(int64(v)) {
				return int64(v), nil
			}
		case int:
			if v > 0 {
				return int64(v), nil
			}
		case int64:
			if v > 0 {
				return v, nil
			}
		case json.Number:
			if n, err := v.Int64(); err == nil && n > 0 {
				return n, nil
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
				return n, nil
			}
		}
	}
	return 0, fmt.Errorf("item has no positive Id")
}

func createdAt(rec aggregate.Record) time.Time {
	if s, ok := rec.Text("Created"); ok {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Now()
}

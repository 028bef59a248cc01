// Package drafts stores editor drafts in sqlite. Each draft keeps the
// rendered markup next to a msgpack snapshot of the full document, so
// embeds still uploading survive a restart.
package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"richedit/document"
	"richedit/html"
)

// ErrNotFound is returned for unknown draft IDs.
var ErrNotFound = errors.New("draft not found")

const titleRunes = 60

// Draft describes a stored draft.
type Draft struct {
	ID      string
	Title   string // first non-empty block, shortened
	Markup  string
	Pending int // embeds still waiting for upload
	Updated time.Time
}

// Store is a sqlite-backed draft store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the draft database at path.
func Open(path string) (*Store, error) {
	db, err := initDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening drafts %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func initDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		id TEXT PRIMARY KEY,
		title TEXT,
		markup TEXT NOT NULL,
		snapshot BLOB NOT NULL,
		pending INTEGER DEFAULT 0,
		updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_drafts_updated ON drafts(updated DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores d under id, replacing any earlier version.
func (s *Store) Save(ctx context.Context, id string, d *document.Document) error {
	snap, err := Encode(d)
	if err != nil {
		return fmt.Errorf("encoding draft %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (id, title, markup, snapshot, pending, updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			markup = excluded.markup,
			snapshot = excluded.snapshot,
			pending = excluded.pending,
			updated = excluded.updated`,
		id, title(d), html.Render(d), snap, len(d.PendingEmbeds()), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving draft %s: %w", id, err)
	}
	return nil
}

// Load returns the draft and its full document.
func (s *Store) Load(ctx context.Context, id string) (*Draft, *document.Document, error) {
	var (
		dr   = Draft{ID: id}
		snap []byte
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT title, markup, snapshot, pending, updated FROM drafts WHERE id = ?", id,
	).Scan(&dr.Title, &dr.Markup, &snap, &dr.Pending, &dr.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading draft %s: %w", id, err)
	}
	d, err := Decode(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("loading draft %s: %w", id, err)
	}
	return &dr, d, nil
}

// List returns all drafts, most recently updated first. Markup is left
// empty; use Load for the content.
func (s *Store) List(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, pending, updated FROM drafts ORDER BY updated DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		var dr Draft
		if err := rows.Scan(&dr.ID, &dr.Title, &dr.Pending, &dr.Updated); err != nil {
			return nil, fmt.Errorf("listing drafts: %w", err)
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

// Delete removes a draft.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Source is an editor whose changes can be autosaved.
type Source interface {
	OnChange(fn func(markup string))
	Document() *document.Document
}

// Autosave saves src under id after every change. Failures are logged and
// passed to onErr when it is set.
func (s *Store) Autosave(ctx context.Context, id string, src Source, log *slog.Logger, onErr func(error)) {
	if log == nil {
		log = slog.Default()
	}
	src.OnChange(func(string) {
		if err := s.Save(ctx, id, src.Document()); err != nil {
			log.Warn("autosave failed", "draft", id, "err", err)
			if onErr != nil {
				onErr(err)
			}
			return
		}
		log.Debug("draft saved", "draft", id)
	})
}

// title is the text of the first non-empty block, cut at a word boundary.
func title(d *document.Document) string {
	for _, b := range d.Blocks() {
		t := strings.Join(strings.Fields(b.Text()), " ")
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) <= titleRunes {
			return t
		}
		r := []rune(t)[:titleRunes]
		cut := string(r)
		if i := strings.LastIndex(cut, " "); i > titleRunes/2 {
			cut = cut[:i]
		}
		return cut + "…"
	}
	return ""
}

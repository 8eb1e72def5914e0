package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sheikhrachel/go-life-engine/model"
	"github.com/sheikhrachel/go-life-engine/patterns"
)

// ErrPatternNotFound is returned when a named pattern is not in the library.
var ErrPatternNotFound = errors.New("pattern not found")

// Entry summarizes a stored pattern.
type Entry struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Width       int       `json:"width" yaml:"width"`
	Height      int       `json:"height" yaml:"height"`
	Alive       int       `json:"alive" yaml:"alive"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// PatternLibrary stores named patterns in SQLite, encoded as RLE.
type PatternLibrary struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenPatternLibrary opens (creating if needed) the library at path.
func OpenPatternLibrary(ctx context.Context, path string) (*PatternLibrary, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "[OpenPatternLibrary] failed to create directory: %+v", dir)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrapf(err, "[OpenPatternLibrary] failed to open database: %+v", path)
	}
	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "[OpenPatternLibrary] failed to initialize schema: %+v", path)
	}

	return &PatternLibrary{db: db, path: path, now: time.Now}, nil
}

// Close closes the database.
func (l *PatternLibrary) Close() error {
	return l.db.Close()
}

// Save inserts or replaces the pattern under p.Name.
func (l *PatternLibrary) Save(ctx context.Context, p model.Pattern, description string) error {
	name := normalizeName(p.Name)
	if name == "" {
		return errors.Wrap(model.ErrMalformedPattern, "[Save] pattern needs a name")
	}
	if err := p.Validate(); err != nil {
		return errors.Wrapf(err, "[Save] refusing to store %q", name)
	}

	p.Name = name
	ts := l.now().UTC().Format(time.RFC3339Nano)
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO patterns (name, description, width, height, alive, rle, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			width = excluded.width,
			height = excluded.height,
			alive = excluded.alive,
			rle = excluded.rle,
			updated_at = excluded.updated_at`,
		name, description, p.Width(), p.Height(), p.AliveCount(), patterns.FormatRLE(p), ts, ts)
	if err != nil {
		return errors.Wrapf(err, "[Save] failed to store pattern: %+v", name)
	}
	return nil
}

// Get loads the pattern stored under name.
func (l *PatternLibrary) Get(ctx context.Context, name string) (model.Pattern, error) {
	name = normalizeName(name)

	var rle string
	err := l.db.QueryRowContext(ctx, `SELECT rle FROM patterns WHERE name = ?`, name).Scan(&rle)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Pattern{}, errors.Wrapf(ErrPatternNotFound, "[Get] %q", name)
	}
	if err != nil {
		return model.Pattern{}, errors.Wrapf(err, "[Get] failed to query pattern: %+v", name)
	}

	p, err := patterns.ParseRLE(strings.NewReader(rle))
	if err != nil {
		return model.Pattern{}, errors.Wrapf(err, "[Get] stored pattern %q is corrupt", name)
	}
	p.Name = name
	return p, nil
}

// List returns every stored pattern ordered by name.
func (l *PatternLibrary) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name, description, width, height, alive, updated_at FROM patterns ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "[List] failed to query patterns")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			updatedAt string
		)
		if err := rows.Scan(&e.Name, &e.Description, &e.Width, &e.Height, &e.Alive, &updatedAt); err != nil {
			return nil, errors.Wrap(err, "[List] failed to scan pattern row")
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, errors.Wrapf(err, "[List] bad timestamp for %q", e.Name)
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "[List] failed to iterate patterns")
}

// Delete removes the named pattern.
func (l *PatternLibrary) Delete(ctx context.Context, name string) error {
	name = normalizeName(name)
	res, err := l.db.ExecContext(ctx, `DELETE FROM patterns WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "[Delete] failed to delete pattern: %+v", name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrPatternNotFound, "[Delete] %q", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

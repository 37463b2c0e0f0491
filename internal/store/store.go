package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mirador/internal/model"
	"mirador/internal/outline"

	_ "modernc.org/sqlite"
)

const (
	workspaceDirName = ".mirador"
	dbFileName       = "outline.sqlite"
)

// Store persists outline documents in a workspace-local SQLite database
// under <Dir>/.mirador/outline.sqlite.
type Store struct {
	Dir string
}

// DiscoverDir walks upward from start looking for an existing workspace
// directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (s Store) localDir() string {
	return filepath.Join(filepath.Clean(s.Dir), workspaceDirName)
}

func (s Store) dbPath() string {
	return filepath.Join(s.localDir(), dbFileName)
}

// Ensure creates the workspace directory if missing.
func (s Store) Ensure() error {
	if s.Dir == "" {
		return errors.New("store dir not set")
	}
	return os.MkdirAll(s.localDir(), 0o755)
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when panes in separate processes
	// share a workspace.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			id TEXT PRIMARY KEY,
			parent_node_id TEXT,
			child_node_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			mirror_of_node_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_parent ON edges(parent_node_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveDoc writes the document's full node and edge state, replacing
// whatever the database held before. Replace-all keeps the writer simple
// and the database is tiny at outline scale.
func (s Store) SaveDoc(ctx context.Context, doc *outline.Doc) error {
	if doc == nil {
		return errors.New("nil document")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"nodes", "edges"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	for _, n := range doc.Nodes() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO nodes(id, text) VALUES(?, ?)`, n.ID, n.Text); err != nil {
			return err
		}
	}
	for _, e := range doc.Edges() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO edges(id, parent_node_id, child_node_id, position, mirror_of_node_id) VALUES(?, ?, ?, ?, ?)`,
			e.ID, nullable(e.ParentNodeID), e.ChildNodeID, e.Position, nullable(e.MirrorOfNodeID)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, "rev", strconv.Itoa(doc.Rev)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadDoc reads the stored outline back into a document. An empty database
// loads as an empty document.
func (s Store) LoadDoc(ctx context.Context) (*outline.Doc, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var nodes []model.Node
	rows, err := db.QueryContext(ctx, `SELECT id, text FROM nodes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var n model.Node
		if err := rows.Scan(&n.ID, &n.Text); err != nil {
			_ = rows.Close()
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	var edges []model.Edge
	rows, err = db.QueryContext(ctx,
		`SELECT id, parent_node_id, child_node_id, position, mirror_of_node_id FROM edges ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e model.Edge
		var parent, mirror sql.NullString
		if err := rows.Scan(&e.ID, &parent, &e.ChildNodeID, &e.Position, &mirror); err != nil {
			return nil, err
		}
		if parent.Valid {
			p := parent.String
			e.ParentNodeID = &p
		}
		if mirror.Valid {
			m := mirror.String
			e.MirrorOfNodeID = &m
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return outline.FromParts(nodes, edges)
}

// Rev returns the persisted document revision (0 when never saved).
func (s Store) Rev(ctx context.Context) (int, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, "rev").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

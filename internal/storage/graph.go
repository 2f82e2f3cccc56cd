// Package storage holds RDF graphs in SQLite so that lookups during an
// ingestion run are indexed, parameterized queries.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Graph is a set of triples backed by a SQLite table. Triples keep the order
// in which they were first added.
type Graph struct {
	db       *sql.DB
	prefixes map[string]string
}

// OpenGraph opens or creates a triple store at the given path. Use MemoryPath
// for a store that lives only as long as the process.
func OpenGraph(path string) (*Graph, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes, and an in-memory database
	// exists only on its one connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Graph{db: db, prefixes: make(map[string]string)}, nil
}

// NewMemoryGraph returns an empty in-memory graph.
func NewMemoryGraph() (*Graph, error) {
	return OpenGraph(MemoryPath)
}

// Close closes the database connection.
func (g *Graph) Close() error {
	return g.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS triples (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			subject_kind INTEGER NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			object_kind INTEGER NOT NULL,
			datatype TEXT NOT NULL DEFAULT '',
			lang TEXT NOT NULL DEFAULT '',
			UNIQUE (subject, subject_kind, predicate, object, object_kind, datatype, lang)
		);

		CREATE INDEX IF NOT EXISTS idx_triples_po ON triples(predicate, object);
		CREATE INDEX IF NOT EXISTS idx_triples_sp ON triples(subject, predicate);
	`
	_, err := db.Exec(schema)
	return err
}

// Add inserts triples in a single transaction. Either every triple is stored
// or none is. Triples already present are ignored. It returns the number of
// triples that were new.
func (g *Graph) Add(ctx context.Context, triples ...graph.Triple) (int, error) {
	for i, t := range triples {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("triple %d (%s): %w", i, t, err)
		}
	}
	if len(triples) == 0 {
		return 0, nil
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO triples (subject, subject_kind, predicate, object, object_kind, datatype, lang)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing triple insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, t := range triples {
		res, err := stmt.ExecContext(ctx,
			t.Subject.Value, int(t.Subject.Kind),
			t.Predicate.Value,
			t.Object.Value, int(t.Object.Kind), string(t.Object.Datatype), t.Object.Lang,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting triple %s: %w", t, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing triples: %w", err)
	}
	return added, nil
}

// Has reports whether the exact triple is stored.
func (g *Graph) Has(ctx context.Context, t graph.Triple) (bool, error) {
	var one int
	err := g.db.QueryRowContext(ctx, `
		SELECT 1 FROM triples
		WHERE subject = ? AND subject_kind = ? AND predicate = ?
		  AND object = ? AND object_kind = ? AND datatype = ? AND lang = ?
		LIMIT 1
	`, t.Subject.Value, int(t.Subject.Kind), t.Predicate.Value,
		t.Object.Value, int(t.Object.Kind), string(t.Object.Datatype), t.Object.Lang).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying triple: %w", err)
	}
	return true, nil
}

// Subjects returns the distinct subjects having predicate pred with object
// obj, in order of first appearance.
func (g *Graph) Subjects(ctx context.Context, pred graph.IRI, obj graph.Term) ([]graph.Term, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT subject, subject_kind, MIN(seq) AS first
		FROM triples
		WHERE predicate = ? AND object = ? AND object_kind = ? AND datatype = ? AND lang = ?
		GROUP BY subject, subject_kind
		ORDER BY first
	`, string(pred), obj.Value, int(obj.Kind), string(obj.Datatype), obj.Lang)
	if err != nil {
		return nil, fmt.Errorf("querying subjects of %s: %w", pred, err)
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// SubjectsByValue returns the distinct subjects whose literal value for pred
// is exactly value, whatever its language tag or datatype.
func (g *Graph) SubjectsByValue(ctx context.Context, pred graph.IRI, value string) ([]graph.Term, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT subject, subject_kind, MIN(seq) AS first
		FROM triples
		WHERE predicate = ? AND object_kind = ? AND object = ?
		GROUP BY subject, subject_kind
		ORDER BY first
	`, string(pred), int(graph.KindLiteral), value)
	if err != nil {
		return nil, fmt.Errorf("querying %s = %q: %w", pred, value, err)
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// SubjectsContaining returns the distinct subjects whose literal value for
// pred contains substr. The match is case-sensitive.
func (g *Graph) SubjectsContaining(ctx context.Context, pred graph.IRI, substr string) ([]graph.Term, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT subject, subject_kind, MIN(seq) AS first
		FROM triples
		WHERE predicate = ? AND object_kind = ? AND instr(object, ?) > 0
		GROUP BY subject, subject_kind
		ORDER BY first
	`, string(pred), int(graph.KindLiteral), substr)
	if err != nil {
		return nil, fmt.Errorf("querying %s containing %q: %w", pred, substr, err)
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// SubjectsEqualFold returns the distinct subjects whose literal value for
// pred equals value, ignoring ASCII case.
func (g *Graph) SubjectsEqualFold(ctx context.Context, pred graph.IRI, value string) ([]graph.Term, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT subject, subject_kind, MIN(seq) AS first
		FROM triples
		WHERE predicate = ? AND object_kind = ? AND lower(object) = lower(?)
		GROUP BY subject, subject_kind
		ORDER BY first
	`, string(pred), int(graph.KindLiteral), value)
	if err != nil {
		return nil, fmt.Errorf("querying %s equal to %q: %w", pred, value, err)
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// Objects returns the objects of subj for predicate pred in insertion order.
func (g *Graph) Objects(ctx context.Context, subj graph.Term, pred graph.IRI) ([]graph.Term, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT object, object_kind, datatype, lang
		FROM triples
		WHERE subject = ? AND subject_kind = ? AND predicate = ?
		ORDER BY seq
	`, subj.Value, int(subj.Kind), string(pred))
	if err != nil {
		return nil, fmt.Errorf("querying objects of %s: %w", subj, err)
	}
	defer rows.Close()

	var terms []graph.Term
	for rows.Next() {
		var t graph.Term
		var kind int
		var datatype string
		if err := rows.Scan(&t.Value, &kind, &datatype, &t.Lang); err != nil {
			return nil, err
		}
		t.Kind = graph.TermKind(kind)
		t.Datatype = graph.IRI(datatype)
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// HasSubject reports whether any triple has subj as its subject.
func (g *Graph) HasSubject(ctx context.Context, subj graph.Term) (bool, error) {
	var one int
	err := g.db.QueryRowContext(ctx,
		"SELECT 1 FROM triples WHERE subject = ? AND subject_kind = ? LIMIT 1",
		subj.Value, int(subj.Kind)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying subject %s: %w", subj, err)
	}
	return true, nil
}

// IsA reports whether subj is typed with class.
func (g *Graph) IsA(ctx context.Context, subj graph.Term, class graph.IRI) (bool, error) {
	return g.Has(ctx, graph.T(subj, graph.RDFType, class.Term()))
}

// Count returns the number of stored triples.
func (g *Graph) Count(ctx context.Context) (int, error) {
	var count int
	if err := g.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting triples: %w", err)
	}
	return count, nil
}

// Triples returns every triple in insertion order.
func (g *Graph) Triples(ctx context.Context) ([]graph.Triple, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT subject, subject_kind, predicate, object, object_kind, datatype, lang
		FROM triples
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying triples: %w", err)
	}
	defer rows.Close()

	var triples []graph.Triple
	for rows.Next() {
		var t graph.Triple
		var sKind, oKind int
		var datatype string
		err := rows.Scan(&t.Subject.Value, &sKind, &t.Predicate.Value,
			&t.Object.Value, &oKind, &datatype, &t.Object.Lang)
		if err != nil {
			return nil, err
		}
		t.Subject.Kind = graph.TermKind(sKind)
		t.Predicate.Kind = graph.KindIRI
		t.Object.Kind = graph.TermKind(oKind)
		t.Object.Datatype = graph.IRI(datatype)
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

// Prefixes returns the prefixes to use when serializing: the defaults plus
// any declared by loaded documents.
func (g *Graph) Prefixes() map[string]string {
	out := make(map[string]string, len(graph.DefaultPrefixes)+len(g.prefixes))
	used := make(map[string]bool)
	for name, ns := range graph.DefaultPrefixes {
		out[name] = ns
		used[ns] = true
	}
	for name, ns := range g.prefixes {
		if _, taken := out[name]; !taken && !used[ns] {
			out[name] = ns
			used[ns] = true
		}
	}
	return out
}

func scanSubjects(rows *sql.Rows) ([]graph.Term, error) {
	var terms []graph.Term
	for rows.Next() {
		var t graph.Term
		var kind int
		var first int64
		if err := rows.Scan(&t.Value, &kind, &first); err != nil {
			return nil, err
		}
		t.Kind = graph.TermKind(kind)
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

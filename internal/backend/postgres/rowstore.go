// Package postgres implements the row-store side of the backend boundary
// directly against the backing PostgreSQL database, for self-hosted
// deployments that skip the REST layer. Row payloads cross the boundary as
// JSON arrays, same as the REST driver, so the layers above cannot tell the
// two apart.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pogibrader/noted/internal/backend/postgres/migrations"
)

// identRe limits table and column names to plain lowercase identifiers.
// Names come from our own code, this is a guard against future misuse.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store implements backend.RowStore over *sql.DB (pgx stdlib driver).
type Store struct {
	db *sql.DB
}

// New opens a connection pool for the given DSN.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &Store{db: db}, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Select returns all rows where eqCol equals eqVal, ordered by orderCol,
// as a JSON array.
func (s *Store) Select(ctx context.Context, table, eqCol, eqVal, orderCol string, desc bool) ([]byte, error) {
	if err := checkIdents(table, eqCol, orderCol); err != nil {
		return nil, err
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	query := fmt.Sprintf(
		`SELECT coalesce(json_agg(t), '[]') FROM (SELECT * FROM %s WHERE %s = $1 ORDER BY %s %s) t`,
		table, eqCol, orderCol, dir)

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, eqVal).Scan(&raw); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return raw, nil
}

// Insert adds a row and returns the inserted rows (server-assigned columns
// included) as a JSON array.
func (s *Store) Insert(ctx context.Context, table string, row any) ([]byte, error) {
	cols, args, err := rowColumns(row)
	if err != nil {
		return nil, err
	}
	if err := checkIdents(append([]string{table}, cols...)...); err != nil {
		return nil, err
	}

	query, err := buildInsert(table, cols)
	if err != nil {
		return nil, err
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	return raw, nil
}

// Update patches the row where idCol equals idVal and returns the updated
// rows as a JSON array.
func (s *Store) Update(ctx context.Context, table, idCol, idVal string, changes any) ([]byte, error) {
	cols, args, err := rowColumns(changes)
	if err != nil {
		return nil, err
	}
	if err := checkIdents(append([]string{table, idCol}, cols...)...); err != nil {
		return nil, err
	}

	query, err := buildUpdate(table, idCol, cols)
	if err != nil {
		return nil, err
	}
	args = append(args, idVal)

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return raw, nil
}

// Delete removes the row where idCol equals idVal.
func (s *Store) Delete(ctx context.Context, table, idCol, idVal string) error {
	if err := checkIdents(table, idCol); err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, idCol)
	if _, err := s.db.ExecContext(ctx, query, idVal); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// rowColumns flattens a row value (struct or map) into sorted column names
// and matching args via a JSON round trip. Nil values are kept so callers
// can null out a column explicitly.
func rowColumns(row any) ([]string, []any, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, nil, fmt.Errorf("encode row: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("row must be an object: %w", err)
	}
	if len(m) == 0 {
		return nil, nil, fmt.Errorf("row has no columns")
	}

	cols := make([]string, 0, len(m))
	for k := range m {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	for _, c := range cols {
		args = append(args, m[c])
	}
	return cols, args, nil
}

func buildInsert(table string, cols []string) (string, error) {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		`WITH r AS (INSERT INTO %s (%s) VALUES (%s) RETURNING *) SELECT coalesce(json_agg(r), '[]') FROM r`,
		table, strings.Join(cols, ", "), strings.Join(ph, ", ")), nil
}

func buildUpdate(table, idCol string, cols []string) (string, error) {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return fmt.Sprintf(
		`WITH r AS (UPDATE %s SET %s WHERE %s = $%d RETURNING *) SELECT coalesce(json_agg(r), '[]') FROM r`,
		table, strings.Join(sets, ", "), idCol, len(cols)+1), nil
}

func checkIdents(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}

package db

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	TableColleges      = "colleges"
	TableAdminUsers    = "admin_users"
	TableStudents      = "students"
	TableStudentUsers  = "student_users"
	TableEvents        = "events"
	TableRegistrations = "registrations"
	TableAttendance    = "attendance"
	TableFeedback      = "feedback"
)

// Fields maps column names to values for writes.
type Fields map[string]any

// Key is an equality predicate over columns, ANDed together.
type Key map[string]any

func sortedColumns(m map[string]any) []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdents(table string, cols []string) error {
	if !identRE.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	for _, c := range cols {
		if !identRE.MatchString(c) {
			return fmt.Errorf("invalid column name %q", c)
		}
	}
	return nil
}

// Store is the record store: a handful of keyed primitives plus typed
// helpers, bound either to the connection or to a transaction.
type Store struct {
	ext          sqlx.ExtContext
	nativeUpsert bool
}

// NativeUpsert reports which upsert strategy Upsert uses.
func (s *Store) NativeUpsert() bool {
	return s.nativeUpsert
}

func where(key Key) (string, []any) {
	cols := sortedColumns(key)
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = c + " = ?"
		args[i] = key[c]
	}
	return strings.Join(parts, " AND "), args
}

// Insert writes one row and returns its generated id. Constraint violations
// come back as *ConstraintError.
func (s *Store) Insert(ctx context.Context, table string, fields Fields) (int64, error) {
	cols := sortedColumns(fields)
	if err := checkIdents(table, cols); err != nil {
		return 0, err
	}
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	res, err := s.ext.ExecContext(ctx, query, args...)
	if err != nil {
		if ce, ok := AsConstraintError(err); ok {
			return 0, ce
		}
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}

// GetByKey loads the single row matching key into dest.
func (s *Store) GetByKey(ctx context.Context, table string, key Key, dest any) error {
	cols := sortedColumns(key)
	if err := checkIdents(table, cols); err != nil {
		return err
	}
	cond, args := where(key)
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", table, cond)
	if err := sqlx.GetContext(ctx, s.ext, dest, query, args...); err != nil {
		return notFound(err)
	}
	return nil
}

// CountWhere counts rows matching key. An empty key counts the whole table.
func (s *Store) CountWhere(ctx context.Context, table string, key Key) (int, error) {
	cols := sortedColumns(key)
	if err := checkIdents(table, cols); err != nil {
		return 0, err
	}
	query := "SELECT COUNT(*) FROM " + table
	var args []any
	if len(key) > 0 {
		var cond string
		cond, args = where(key)
		query += " WHERE " + cond
	}
	var n int
	if err := sqlx.GetContext(ctx, s.ext, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// UpdateByKey overwrites fields on the rows matching key and returns how many
// rows changed.
func (s *Store) UpdateByKey(ctx context.Context, table string, key Key, fields Fields) (int64, error) {
	setCols := sortedColumns(fields)
	if err := checkIdents(table, append(setCols, sortedColumns(key)...)); err != nil {
		return 0, err
	}
	sets := make([]string, len(setCols))
	args := make([]any, 0, len(setCols)+len(key))
	for i, c := range setCols {
		sets[i] = c + " = ?"
		args = append(args, fields[c])
	}
	cond, keyArgs := where(key)
	args = append(args, keyArgs...)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), cond)

	res, err := s.ext.ExecContext(ctx, query, args...)
	if err != nil {
		if ce, ok := AsConstraintError(err); ok {
			return 0, ce
		}
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	return res.RowsAffected()
}

// Upsert inserts key+fields, or overwrites fields on the row already holding
// key. key must cover a unique constraint. With native upserts it is one
// INSERT ... ON CONFLICT statement; otherwise the insert is attempted and a
// unique violation on key falls back to UpdateByKey. Any other failure is
// returned as is.
func (s *Store) Upsert(ctx context.Context, table string, key Key, fields Fields) error {
	all := Fields{}
	for c, v := range key {
		all[c] = v
	}
	for c, v := range fields {
		all[c] = v
	}

	if !s.nativeUpsert {
		_, err := s.Insert(ctx, table, all)
		if err == nil {
			return nil
		}
		if !IsUniqueOn(err, table, sortedColumns(key)...) {
			return err
		}
		_, err = s.UpdateByKey(ctx, table, key, fields)
		return err
	}

	cols := sortedColumns(all)
	keyCols := sortedColumns(key)
	if err := checkIdents(table, cols); err != nil {
		return err
	}
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = all[c]
	}
	setCols := sortedColumns(fields)
	sets := make([]string, len(setCols))
	for i, c := range setCols {
		sets[i] = c + " = excluded." + c
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		strings.Join(keyCols, ", "),
		strings.Join(sets, ", "))

	if _, err := s.ext.ExecContext(ctx, query, args...); err != nil {
		if ce, ok := AsConstraintError(err); ok {
			return ce
		}
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

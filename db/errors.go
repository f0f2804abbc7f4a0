package db

import (
	"database/sql"
	"errors"
	"regexp"
	"sort"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned by key lookups that match no row.
var ErrNotFound = errors.New("record not found")

// ConstraintKind classifies a store-enforced constraint.
type ConstraintKind int

const (
	ConstraintOther ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
	ConstraintNotNull
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign_key"
	case ConstraintCheck:
		return "check"
	case ConstraintNotNull:
		return "not_null"
	default:
		return "other"
	}
}

// ConstraintError is a write rejected by a constraint. For unique and not-null
// violations Table and Columns name the constraint, e.g.
// registrations(event_id,student_id).
type ConstraintError struct {
	Kind    ConstraintKind
	Table   string
	Columns []string
	Err     error
}

func (e *ConstraintError) Error() string {
	return e.Kind.String() + " constraint failed: " + e.Constraint()
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Constraint renders the violated key as table(col1,col2).
func (e *ConstraintError) Constraint() string {
	if e.Table == "" {
		return "?"
	}
	return e.Table + "(" + strings.Join(e.Columns, ",") + ")"
}

// On reports whether the violation is on exactly this table and column set.
func (e *ConstraintError) On(table string, columns ...string) bool {
	if e.Table != table || len(e.Columns) != len(columns) {
		return false
	}
	want := append([]string(nil), columns...)
	sort.Strings(want)
	for i := range want {
		if want[i] != e.Columns[i] {
			return false
		}
	}
	return true
}

// IsUniqueOn is shorthand for a unique violation on table(columns...).
func IsUniqueOn(err error, table string, columns ...string) bool {
	ce, ok := AsConstraintError(err)
	return ok && ce.Kind == ConstraintUnique && ce.On(table, columns...)
}

var constraintMsg = regexp.MustCompile(`(UNIQUE|FOREIGN KEY|CHECK|NOT NULL) constraint failed(?:: ([^()]+))?`)

// AsConstraintError extracts a constraint violation from a driver error.
func AsConstraintError(err error) (*ConstraintError, bool) {
	if err == nil {
		return nil, false
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce, true
	}
	var se *sqlite.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return nil, false
	}

	ce = &ConstraintError{Err: err}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		ce.Kind = ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		ce.Kind = ConstraintForeignKey
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		ce.Kind = ConstraintCheck
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		ce.Kind = ConstraintNotNull
	}

	m := constraintMsg.FindStringSubmatch(se.Error())
	if m == nil {
		return ce, true
	}
	if ce.Kind == ConstraintOther {
		switch m[1] {
		case "UNIQUE":
			ce.Kind = ConstraintUnique
		case "FOREIGN KEY":
			ce.Kind = ConstraintForeignKey
		case "CHECK":
			ce.Kind = ConstraintCheck
		case "NOT NULL":
			ce.Kind = ConstraintNotNull
		}
	}
	if ce.Kind == ConstraintUnique || ce.Kind == ConstraintNotNull {
		ce.Table, ce.Columns = parseColumns(m[2])
	}
	return ce, true
}

// parseColumns turns "registrations.student_id, registrations.event_id" into
// ("registrations", [event_id student_id]).
func parseColumns(s string) (string, []string) {
	var table string
	var cols []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		t, c, ok := strings.Cut(part, ".")
		if !ok {
			continue
		}
		table = t
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return table, cols
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// sqlite uses positional question marks.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// deleteScopedNotIn builds "DELETE FROM table WHERE vault_id = ? [AND col NOT IN (...)]".
func deleteScopedNotIn(table, column string, vaultID int64, keep []string, extra ...sq.Sqlizer) (string, []any, error) {
	q := builder.Delete(table).Where(sq.Eq{"vault_id": vaultID})
	for _, cond := range extra {
		q = q.Where(cond)
	}
	if len(keep) > 0 {
		q = q.Where(sq.NotEq{column: keep})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

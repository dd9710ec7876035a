package pgrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errQueryFailed = errors.New("query failed")

type recordedQuery struct {
	sql  string
	args []any
}

// scanFunc pgx.Row из функции.
type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

// recordingConn DBTX, который запоминает запросы. QueryRow отдает строки из rows по очереди, а когда они
// кончились - pgx.ErrNoRows. Query всегда завершается errQueryFailed.
type recordingConn struct {
	queries []recordedQuery
	rows    []scanFunc
	tag     pgconn.CommandTag
	execErr error
}

func (c *recordingConn) record(sql string, args []any) {
	c.queries = append(c.queries, recordedQuery{sql: sql, args: args})
}

func (c *recordingConn) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	c.record(sql, args)
	return c.tag, c.execErr
}

func (c *recordingConn) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	c.record(sql, args)
	return nil, errQueryFailed
}

func (c *recordingConn) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	c.record(sql, args)
	if len(c.rows) == 0 {
		return scanFunc(func(...any) error { return pgx.ErrNoRows })
	}
	row := c.rows[0]
	c.rows = c.rows[1:]
	return row
}

func (c *recordingConn) last() recordedQuery {
	return c.queries[len(c.queries)-1]
}

// Package sinks persists cleaned procurement records.
package sinks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/pnt-cleaner/app/models"
	"github.com/spf13/afero"
)

// ScriptSink writes one UPDATE statement per record to a queries file:
//
//	UPDATE <table> SET col = 'v', col2 = NULL WHERE id_procedimiento = <id>;
//
// Records with no writable field produce no statement.
type ScriptSink struct {
	mu       sync.Mutex
	w        *bufio.Writer
	closer   io.Closer
	table    string
	idColumn string
	written  int
}

// NewScriptSink writes statements to w. If w is an io.Closer, Close closes it.
func NewScriptSink(w io.Writer, table, idColumn string) *ScriptSink {
	s := &ScriptSink{w: bufio.NewWriter(w), table: table, idColumn: idColumn}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// CreateScriptFile creates (or truncates) path on fs and returns a sink over it
func CreateScriptFile(fs afero.Fs, path, table, idColumn string) (*ScriptSink, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return NewScriptSink(f, table, idColumn), nil
}

// Statement renders the UPDATE for one record. ok is false when the record
// has nothing to write.
func Statement(table, idColumn string, rec models.CleanedRecord) (stmt string, ok bool, err error) {
	fields := rec.WritableFields()
	if len(fields) == 0 {
		return "", false, nil
	}

	q := sq.Update(table)
	for _, f := range fields {
		q = q.Set(f.Column, sq.Expr(Literal(f.Value)))
	}
	q = q.Where(sq.Expr(idColumn + " = " + idLiteral(rec.RecordID)))

	sql, _, err := q.ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build update for record %s: %w", rec.RecordID, err)
	}
	return sql + ";", true, nil
}

// Literal renders a cleaned value as a SQL literal. Text is single-quoted
// with embedded quotes doubled; numbers are bare; null values are NULL.
func Literal(v models.Value) string {
	switch v.Kind {
	case models.ValueText:
		return quote(v.Text)
	case models.ValueInteger, models.ValueDecimal:
		return v.String()
	default:
		return models.NullLiteral
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func idLiteral(id string) string {
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return id
	}
	return quote(id)
}

func (s *ScriptSink) Write(ctx context.Context, records []models.CleanedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		stmt, ok, err := Statement(s.table, s.idColumn, rec)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := s.w.WriteString(stmt + "\n"); err != nil {
			return fmt.Errorf("write statement: %w", err)
		}
		s.written++
	}
	return nil
}

// Written number of statements emitted so far
func (s *ScriptSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

func (s *ScriptSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush statements: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

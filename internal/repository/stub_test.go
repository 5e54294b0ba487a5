package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type repoStubPool struct {
	execSQL      []string
	execTags     []pgconn.CommandTag
	execErr      error
	rowsData     [][]any
	queryErr     error
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	beginTx      pgx.Tx
	beginErr     error
}

func (s *repoStubPool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	if len(s.execTags) > 0 {
		tag := s.execTags[0]
		s.execTags = s.execTags[1:]
		return tag, nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (s *repoStubPool) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }

func (s *repoStubPool) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	dataCopy := make([][]any, len(s.rowsData))
	for i := range s.rowsData {
		row := make([]any, len(s.rowsData[i]))
		copy(row, s.rowsData[i])
		dataCopy[i] = row
	}
	return &repoStubRows{data: dataCopy}, nil
}

func (s *repoStubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.queryRowFunc != nil {
		return s.queryRowFunc(ctx, sql, args...)
	}
	return repoStubRow{}
}

func (s *repoStubPool) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.beginTx, nil
}

type repoStubRows struct {
	data [][]any
	idx  int
}

func (r *repoStubRows) Close() {}

func (r *repoStubRows) Err() error { return nil }

func (r *repoStubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *repoStubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *repoStubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *repoStubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return fmt.Errorf("invalid scan index")
	}
	return scanStubValues(r.data[r.idx-1], dest)
}

func (r *repoStubRows) Values() ([]any, error) { return nil, nil }

func (r *repoStubRows) RawValues() [][]byte { return nil }

func (r *repoStubRows) Conn() *pgx.Conn { return nil }

type repoStubRow struct {
	values []any
	err    error
}

func (r repoStubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.values == nil {
		return nil
	}
	return scanStubValues(r.values, dest)
}

func scanStubValues(row []any, dest []any) error {
	for i, d := range dest {
		if i >= len(row) {
			break
		}
		switch ptr := d.(type) {
		case *string:
			*ptr = row[i].(string)
		case *int:
			*ptr = row[i].(int)
		case *int64:
			*ptr = row[i].(int64)
		case *float64:
			*ptr = row[i].(float64)
		case *bool:
			*ptr = row[i].(bool)
		case *time.Time:
			*ptr = row[i].(time.Time)
		case **time.Time:
			if row[i] == nil {
				*ptr = nil
			} else {
				v := row[i].(time.Time)
				*ptr = &v
			}
		default:
			return fmt.Errorf("unsupported dest type %T", d)
		}
	}
	return nil
}

type repoStubTx struct {
	execSQL    []string
	execTags   []pgconn.CommandTag
	rowsData   [][]any
	insertRows []repoStubRow
	insertIdx  int
	committed  bool
	rolledBack bool
}

func (s *repoStubTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	if len(s.execTags) > 0 {
		tag := s.execTags[0]
		s.execTags = s.execTags[1:]
		return tag, nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (s *repoStubTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	dataCopy := make([][]any, len(s.rowsData))
	for i := range s.rowsData {
		row := make([]any, len(s.rowsData[i]))
		copy(row, s.rowsData[i])
		dataCopy[i] = row
	}
	return &repoStubRows{data: dataCopy}, nil
}

func (s *repoStubTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	if s.insertIdx < len(s.insertRows) {
		row := s.insertRows[s.insertIdx]
		s.insertIdx++
		return row
	}
	return repoStubRow{}
}

func (s *repoStubTx) Commit(_ context.Context) error {
	s.committed = true
	return nil
}

func (s *repoStubTx) Rollback(_ context.Context) error {
	s.rolledBack = true
	return nil
}

func (s *repoStubTx) Begin(context.Context) (pgx.Tx, error) { return nil, nil }
func (s *repoStubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (s *repoStubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (s *repoStubTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (s *repoStubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (s *repoStubTx) Conn() *pgx.Conn { return nil }

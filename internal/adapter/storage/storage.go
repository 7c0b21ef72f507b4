package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal storage error")
)

// DBContext abstracts a database handle that can open transactions. Both the
// root *sql.DB and an open transaction satisfy it, so storages never care
// whether they run inside an explicit unit of work.
type DBContext interface {
	Begin(ctx context.Context) (DBContext, error)
	Commit() error
	Rollback() error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
}

func (d *DB) Commit() error {
	return nil
}

func (d *DB) Rollback() error {
	return nil
}

func (d *DB) Begin(ctx context.Context) (DBContext, error) {
	tx, err := d.DB.BeginTx(ctx, nil)
	return &Tx{tx}, err
}

type Tx struct {
	*sql.Tx
}

func (t *Tx) Begin(ctx context.Context) (DBContext, error) {
	return t, nil
}

func InternalError(err error) error {
	return errors.Join(fmt.Errorf("internal storage error: %w", err), ErrInternal)
}

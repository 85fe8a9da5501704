package dialect

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Dialect names.
const (
	// MySQL is the mysql dialect.
	MySQL = "mysql"
	// SQLite is the sqlite dialect.
	SQLite = "sqlite"
	// Postgres is the postgres dialect.
	Postgres = "postgres"
)

// ExecQuerier wraps the two base operations of the storage backend:
// execute a statement and execute a query.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The v argument
	// receives the execution result, if any.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows. The v argument receives
	// the returned rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transaction commit and rollback around the base operations.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// nopTx is returned from drivers that do not support transactions
// at their level (e.g. a driver that already runs inside one).
type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx with a no-op Commit/Rollback on top of the driver.
func NopTx(d Driver) Tx {
	return nopTx{d}
}

// DebugDriver is a driver that logs all driver operations.
type DebugDriver struct {
	Driver
	log func(context.Context, ...any)
}

// Debug gets a driver and an optional logging function, and returns a new
// debugged-driver that prints all outgoing operations with slog.
func Debug(d Driver, logger ...func(context.Context, ...any)) Driver {
	logf := func(ctx context.Context, v ...any) {
		slog.DebugContext(ctx, fmt.Sprint(v...))
	}
	if len(logger) == 1 {
		logf = logger[0]
	}
	return &DebugDriver{d, logf}
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.log(ctx, fmt.Sprintf("driver.Exec: query=%v args=%v duration=%s err=%v", query, args, time.Since(start), err))
	return err
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.log(ctx, fmt.Sprintf("driver.Query: query=%v args=%v duration=%s err=%v", query, args, time.Since(start), err))
	return err
}

// Tx adds an log-id for the transaction and calls the underlying driver Tx command.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.log(ctx, "driver.Tx: started")
	return &DebugTx{tx, d.log, ctx}, nil
}

// DebugTx is a transaction implementation that logs all transaction operations.
type DebugTx struct {
	Tx
	log func(context.Context, ...any)
	ctx context.Context
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Tx.Exec(ctx, query, args, v)
	d.log(ctx, fmt.Sprintf("tx.Exec: query=%v args=%v duration=%s err=%v", query, args, time.Since(start), err))
	return err
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Tx.Query(ctx, query, args, v)
	d.log(ctx, fmt.Sprintf("tx.Query: query=%v args=%v duration=%s err=%v", query, args, time.Since(start), err))
	return err
}

// Commit logs the commit and calls the underlying transaction Commit method.
func (d *DebugTx) Commit() error {
	err := d.Tx.Commit()
	d.log(d.ctx, fmt.Sprintf("tx.Commit: err=%v", err))
	return err
}

// Rollback logs the rollback and calls the underlying transaction Rollback method.
func (d *DebugTx) Rollback() error {
	err := d.Tx.Rollback()
	d.log(d.ctx, fmt.Sprintf("tx.Rollback: err=%v", err))
	return err
}

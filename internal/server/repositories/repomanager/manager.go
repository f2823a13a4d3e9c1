// Package repomanager vends repository implementations bound to a database
// handle and owns the transaction boundary for multi-step operations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/goalkeeper/internal/dbx"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/goals"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Conn returns the non-transactional handle.
	Conn() dbx.DBTX
	// WithTx runs fn atomically: every change made through tx is either
	// committed together or discarded.
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	Users(db dbx.DBTX) users.Repository
	Goals(db dbx.DBTX) goals.Repository
	Close() error
}

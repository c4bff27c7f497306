package sql

import (
	"context"
	"database/sql"
	"fmt"
)

// preparer is the part of *sql.DB and *sql.Tx the repository needs. Every statement is prepared.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

var (
	_ preparer = (*sql.DB)(nil)
	_ preparer = (*sql.Tx)(nil)
)

// prepare prepares query inside the active transaction, or on the pool outside one.
func (r *ProductRepository) prepare(ctx context.Context, kind, query string) (*sql.Stmt, error) {
	var p preparer = r.db
	if r.txn != nil {
		p = r.txn
	}
	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s statement: %w", kind, err)
	}
	return stmt, nil
}

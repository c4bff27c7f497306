package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/akilcn01-oss/Inventory-Management/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const productColumns = "id, name, category, quantity, price, description, created_at, updated_at"

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithinTransaction executes fn within a database transaction.
func (r *ProductRepository) WithinTransaction(ctx context.Context, fn func(repo repository.ProductRepository) error) error {
	if r.txn != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txRepo := &ProductRepository{
		db:  r.db,
		txn: tx,
	}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Create inserts a new product and sets its id.
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	query := `INSERT INTO products (name, category, quantity, price, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	stmt, err := r.prepare(ctx, "insert", query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	created := *p
	err = stmt.QueryRowContext(ctx, p.Name, p.Category, p.Quantity, p.Price, p.Description, p.CreatedAt, p.UpdatedAt).
		Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", translateError(err))
	}

	return &created, nil
}

// List retrieves one page of products matching the query.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE 1=1")

	var args []any
	argIndex := 1

	if query.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND category = $%d", argIndex))
		args = append(args, query.Category)
		argIndex++
	}
	if query.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+escapeLike(query.Search)+"%")
		argIndex++
	}
	if query.LowStockBelow > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND quantity < $%d", argIndex))
		args = append(args, query.LowStockBelow)
		argIndex++
	}

	// created_at alone is not unique, id keeps pages disjoint
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1))
	args = append(args, query.EffectiveLimit(), max(query.Skip, 0))

	return r.queryProducts(ctx, queryBuilder.String(), args...)
}

// All returns every product ordered by id.
func (r *ProductRepository) All(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	stmt, err := r.prepare(ctx, "select", query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	result, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return result, nil
}

// Update replaces the mutable columns of the product with p.ID.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	query := `UPDATE products
	          SET name = $1, category = $2, quantity = $3, price = $4, description = $5, updated_at = $6
	          WHERE id = $7 RETURNING created_at`

	stmt, err := r.prepare(ctx, "update", query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	updated := *p
	err = stmt.QueryRowContext(ctx, p.Name, p.Category, p.Quantity, p.Price, p.Description, p.UpdatedAt, p.ID).
		Scan(&updated.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", translateError(err))
	}
	return &updated, nil
}

// DeleteByID deletes a product by ID.
func (r *ProductRepository) DeleteByID(ctx context.Context, id int) error {
	stmt, err := r.prepare(ctx, "delete", "DELETE FROM products WHERE id = $1")
	if err != nil {
		return err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	stmt, err := r.prepare(ctx, "select", query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p           model.Product
		description sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price, &description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	return &p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// translateError maps constraint violations reported by either PostgreSQL driver
// to *repository.ConstraintError.
func translateError(err error) error {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && isConstraintViolation(pgError.Code) {
		return &repository.ConstraintError{Constraint: pgError.ConstraintName, Detail: pgError.Message}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && isConstraintViolation(string(pqErr.Code)) {
		return &repository.ConstraintError{Constraint: pqErr.Constraint, Detail: pqErr.Message}
	}
	return err
}

func isConstraintViolation(code string) bool {
	return code == pgCheckViolationErrCode || code == pgNotNullViolationErrCode || code == pgUniqueViolationErrCode
}

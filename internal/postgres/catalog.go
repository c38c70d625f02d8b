package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahanr/harvestlink/internal/domain"
)

// CatalogStore implements domain.CatalogStore using PostgreSQL.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CatalogStore implements domain.CatalogStore.
var _ domain.CatalogStore = (*CatalogStore)(nil)

// NewCatalogStore creates a PostgreSQL-backed catalog store.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const productColumns = `id::text, name, quantity_kg, grade, price_cents, image_url,
	status, farmer_name, farmer_email, farmer_address, origin_city, owner_id, created_at`

// CreateProduct inserts a new listing in Pending status.
func (s *CatalogStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	const op = "postgres.catalog.Create"

	if err := product.Validate(); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = domain.ProductPending
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	var owner pgtype.UUID
	if product.OwnerID != uuid.Nil {
		owner = pgtype.UUID{Bytes: product.OwnerID, Valid: true}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (
			id, name, quantity_kg, grade, price_cents, image_url, status,
			farmer_name, farmer_email, farmer_address, origin_city, owner_id, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		product.ID.String(), product.Name, product.QuantityKg, product.Grade,
		product.PriceCents, product.ImageURL, string(product.Status),
		product.FarmerName, product.FarmerEmail, product.FarmerAddress,
		product.OriginCity, owner, product.CreatedAt)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to insert product")
	}
	return nil
}

// GetProduct loads one listing.
func (s *CatalogStore) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	const op = "postgres.catalog.Get"

	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1::uuid`,
		productID.String())

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load product")
	}
	return product, nil
}

// ListProducts returns every listing, newest first.
func (s *CatalogStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "postgres.catalog.List"

	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list products")
	}
	defer rows.Close()

	return collectProducts(rows, op)
}

// ListApprovedByFarmer returns a farmer's approved stock.
func (s *CatalogStore) ListApprovedByFarmer(ctx context.Context, farmerName string) ([]domain.Product, error) {
	const op = "postgres.catalog.ListApprovedByFarmer"

	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE farmer_name = $1 AND status = $2
		 ORDER BY created_at DESC`,
		farmerName, string(domain.ProductApproved))
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list products")
	}
	defer rows.Close()

	return collectProducts(rows, op)
}

// UpdateProductStatus moves a listing through its approval lifecycle and
// returns the updated listing.
func (s *CatalogStore) UpdateProductStatus(ctx context.Context, productID uuid.UUID, status domain.ProductStatus) (*domain.Product, error) {
	const op = "postgres.catalog.UpdateStatus"

	if !status.Valid() {
		return nil, domain.Invalid(op, "unknown product status")
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE products SET status = $2 WHERE id = $1::uuid
		RETURNING `+productColumns,
		productID.String(), string(status))

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to update product status")
	}
	return product, nil
}

// DeleteProduct removes a listing. Orders keep their snapshots either way.
func (s *CatalogStore) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	const op = "postgres.catalog.Delete"

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1::uuid`, productID.String())
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows, op string) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list products")
	}
	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var id, status string
	var owner pgtype.UUID

	err := row.Scan(&id, &p.Name, &p.QuantityKg, &p.Grade, &p.PriceCents, &p.ImageURL,
		&status, &p.FarmerName, &p.FarmerEmail, &p.FarmerAddress, &p.OriginCity,
		&owner, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProductStatus(status)
	if owner.Valid {
		p.OwnerID = owner.Bytes
	}
	return &p, nil
}

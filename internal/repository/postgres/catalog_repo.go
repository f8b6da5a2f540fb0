package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pharmapos/internal/domain"
	"pharmapos/internal/port"
)

type catalogRepo struct {
	db *sqlx.DB
}

// NewCatalogRepo creates a new PostgreSQL-backed CatalogRepository.
func NewCatalogRepo(db *sqlx.DB) port.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	out := make(map[uuid.UUID]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(
		"SELECT id, name, hsn_code, gst_rate, gst_type FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("catalogRepo.GetProducts: %w", err)
	}
	q := conn(ctx, r.db)
	var rows []domain.Product
	if err := q.SelectContext(ctx, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("catalogRepo.GetProducts: %w", err)
	}
	for idx := range rows {
		out[rows[idx].ID] = rows[idx]
	}
	return out, nil
}

func (r *catalogRepo) GetBatches(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Batch, error) {
	out := make(map[uuid.UUID]domain.Batch, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(
		"SELECT id, product_id, batch_number, sale_gst_rate_override FROM batches WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("catalogRepo.GetBatches: %w", err)
	}
	q := conn(ctx, r.db)
	var rows []domain.Batch
	if err := q.SelectContext(ctx, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("catalogRepo.GetBatches: %w", err)
	}
	for idx := range rows {
		out[rows[idx].ID] = rows[idx]
	}
	return out, nil
}

type sellerRepo struct {
	db *sqlx.DB
}

// NewSellerRepo creates a new PostgreSQL-backed SellerRepository.
func NewSellerRepo(db *sqlx.DB) port.SellerRepository {
	return &sellerRepo{db: db}
}

func (r *sellerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SellerGSTIN, error) {
	var s domain.SellerGSTIN
	err := conn(ctx, r.db).GetContext(ctx, &s, "SELECT * FROM seller_gstins WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}
		return nil, fmt.Errorf("sellerRepo.GetByID: %w", err)
	}
	return &s, nil
}

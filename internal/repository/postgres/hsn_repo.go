package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pharmapos/internal/domain"
	"pharmapos/internal/port"
)

type hsnRepo struct {
	db *sqlx.DB
}

// NewHSNRepo creates a new PostgreSQL-backed HSNRepository.
func NewHSNRepo(db *sqlx.DB) port.HSNRepository {
	return &hsnRepo{db: db}
}

func (r *hsnRepo) LoadAll(ctx context.Context) ([]domain.HSNCode, error) {
	var entries []domain.HSNCode
	err := r.db.SelectContext(ctx, &entries,
		`SELECT code, description, default_gst_rate, gst_type
		 FROM hsn_codes
		 ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("hsnRepo.LoadAll: %w", err)
	}
	return entries, nil
}

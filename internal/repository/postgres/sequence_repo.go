package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pharmapos/internal/domain"
	"pharmapos/internal/port"
)

type sequenceRepo struct {
	db *sqlx.DB
}

// NewSequenceAllocator creates a document number allocator backed by the
// document_sequences table. Called inside the issuing transaction, the upsert
// holds the counter row lock until commit, so concurrent issuers serialize
// and a rollback hands the number back.
func NewSequenceAllocator(db *sqlx.DB) port.SequenceAllocator {
	return &sequenceRepo{db: db}
}

func (r *sequenceRepo) Next(ctx context.Context, sellerGSTINID uuid.UUID, kind domain.DocumentKind, period string) (int64, error) {
	var next int64
	err := conn(ctx, r.db).GetContext(ctx, &next,
		`INSERT INTO document_sequences (seller_gstin_id, kind, period, last_value)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (seller_gstin_id, kind, period)
		 DO UPDATE SET last_value = document_sequences.last_value + 1
		 RETURNING last_value`,
		sellerGSTINID, kind, period)
	if err != nil {
		return 0, fmt.Errorf("sequenceRepo.Next: %w", err)
	}
	return next, nil
}

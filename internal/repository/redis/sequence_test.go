package redis_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"pharmapos/internal/domain"
	"pharmapos/internal/repository/redis"
)

func TestSequenceKey(t *testing.T) {
	seller := uuid.MustParse("7f9c24e8-3b12-4fef-91e0-3f7f6c6a0b11")

	assert.Equal(t, "seq:7f9c24e8-3b12-4fef-91e0-3f7f6c6a0b11:invoice:2025-03",
		redis.SequenceKey(seller, domain.DocumentKindInvoice, "2025-03"))
	assert.Equal(t, "seq:7f9c24e8-3b12-4fef-91e0-3f7f6c6a0b11:credit_note:2025-03",
		redis.SequenceKey(seller, domain.DocumentKindCreditNote, "2025-03"))
	assert.NotEqual(t,
		redis.SequenceKey(seller, domain.DocumentKindInvoice, "2025-03"),
		redis.SequenceKey(seller, domain.DocumentKindInvoice, "2025-04"))
}

package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(12).Equal(cfg.Tax.DefaultRatePercent))
	assert.Equal(t, "EXCLUSIVE", cfg.Tax.DefaultConvention)
	assert.True(t, cfg.Tax.CreditNoteRoundOff)
	assert.Equal(t, "INV/{YYYY}-{MM}/{SEQ4}", cfg.Tax.InvoiceNumberTemplate)
	assert.Equal(t, "CN/{YYYY}-{MM}/{SEQ4}", cfg.Tax.CreditNoteNumberTemplate)
	assert.Equal(t, 3, cfg.Tax.NumberRetries)
	assert.Equal(t, 10*time.Minute, cfg.Tax.HSNRefresh)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, "postgres", cfg.Sequence.Backend)
	assert.Equal(t, "noop", cfg.Compliance.Provider)
	assert.Empty(t, cfg.Compliance.Recipients)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PHARMAPOS_TAX_DEFAULT_RATE_PERCENT", "18")
	t.Setenv("PHARMAPOS_TAX_DEFAULT_CONVENTION", "inclusive")
	t.Setenv("PHARMAPOS_TAX_CREDIT_NOTE_ROUND_OFF", "false")
	t.Setenv("PHARMAPOS_SEQUENCE_BACKEND", "REDIS")
	t.Setenv("PHARMAPOS_COMPLIANCE_RECIPIENTS", "tax@example.com, , audit@example.com")
	t.Setenv("PHARMAPOS_DB_PORT", "6543")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "18", cfg.Tax.DefaultRatePercent.String())
	assert.Equal(t, "INCLUSIVE", cfg.Tax.DefaultConvention)
	assert.False(t, cfg.Tax.CreditNoteRoundOff)
	assert.Equal(t, "redis", cfg.Sequence.Backend)
	assert.Equal(t, []string{"tax@example.com", "audit@example.com"}, cfg.Compliance.Recipients)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_RejectsBadTaxSettings(t *testing.T) {
	t.Run("bad_rate", func(t *testing.T) {
		t.Setenv("PHARMAPOS_TAX_DEFAULT_RATE_PERCENT", "twelve")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad_convention", func(t *testing.T) {
		t.Setenv("PHARMAPOS_TAX_DEFAULT_CONVENTION", "GROSS")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("invoice_template_without_month", func(t *testing.T) {
		t.Setenv("PHARMAPOS_TAX_INVOICE_NUMBER_TEMPLATE", "INV/{YYYY}/{SEQ4}")
		_, err := config.Load()
		assert.ErrorContains(t, err, "tax.invoice_number_template")
	})

	t.Run("credit_note_template_without_sequence", func(t *testing.T) {
		t.Setenv("PHARMAPOS_TAX_CREDIT_NOTE_NUMBER_TEMPLATE", "CN/{YYYY}-{MM}")
		_, err := config.Load()
		assert.ErrorContains(t, err, "tax.credit_note_number_template")
	})

	t.Run("bad_backend", func(t *testing.T) {
		t.Setenv("PHARMAPOS_SEQUENCE_BACKEND", "etcd")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", db.DSN())
}

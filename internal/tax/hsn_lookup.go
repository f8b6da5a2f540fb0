package tax

import (
	"strings"

	"pharmapos/internal/domain"
)

// HSNLookup provides fast in-memory lookups into the HSN master.
// It is immutable after construction and safe for concurrent access.
type HSNLookup struct {
	byCode map[string]domain.HSNCode
}

// NewHSNLookup builds an HSNLookup from HSN master rows loaded from the database.
// When a code appears more than once the first row wins.
func NewHSNLookup(entries []domain.HSNCode) *HSNLookup {
	m := make(map[string]domain.HSNCode, len(entries))
	for idx := range entries {
		e := entries[idx]
		code := strings.TrimSpace(e.Code)
		if code == "" {
			continue
		}
		if _, ok := m[code]; ok {
			continue
		}
		e.Code = code
		m[code] = e
	}
	return &HSNLookup{byCode: m}
}

// Len returns the number of distinct codes in the lookup.
func (h *HSNLookup) Len() int {
	if h == nil {
		return 0
	}
	return len(h.byCode)
}

// Lookup returns the master row for code. It checks the exact code first,
// then falls back from 8→6→4 digit prefixes.
func (h *HSNLookup) Lookup(code string) (domain.HSNCode, bool) {
	code = strings.TrimSpace(code)
	if h == nil || len(h.byCode) == 0 || code == "" {
		return domain.HSNCode{}, false
	}
	if e, ok := h.byCode[code]; ok {
		return e, true
	}
	for _, prefixLen := range []int{6, 4} {
		if len(code) > prefixLen {
			if e, ok := h.byCode[code[:prefixLen]]; ok {
				return e, true
			}
		}
	}
	return domain.HSNCode{}, false
}

package domain

import (
	"database/sql/driver"
	"fmt"
)

// Paise is an amount in the minor currency unit (1/100 rupee).
// All tax arithmetic is integer arithmetic on Paise.
type Paise int64

// String renders the amount in rupees with two decimals, e.g. "77.20".
func (p Paise) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Value implements driver.Valuer.
func (p Paise) Value() (driver.Value, error) {
	return int64(p), nil
}

// Scan implements sql.Scanner.
func (p *Paise) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*p = Paise(v)
	case int32:
		*p = Paise(v)
	case nil:
		*p = 0
	default:
		return fmt.Errorf("cannot scan %T into Paise", src)
	}
	return nil
}

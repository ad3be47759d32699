package core

import (
	"fmt"
	"strings"
)

// Money marshals as a plain decimal number with two digits, matching the
// wire format of the external store.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a decimal number or its quoted string form.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	neg := strings.HasPrefix(s, "-")
	cents, err := ParseDecimalToCents(strings.TrimPrefix(s, "-"))
	if err != nil {
		return fmt.Errorf("money %q: %w", s, err)
	}
	if neg {
		cents = -cents
	}
	m.Cents = cents
	return nil
}

// Date marshals as its YYYY-MM-DD key.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Key() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

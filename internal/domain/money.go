package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Pence is an amount of money in minor units.
type Pence int64

// String renders the amount with two decimals, e.g. 4499 -> "44.99".
func (p Pence) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (p Pence) Abs() Pence {
	if p < 0 {
		return -p
	}
	return p
}

func (p Pence) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON reads the two-decimal form written by MarshalJSON, quoted or bare.
func (p *Pence) UnmarshalJSON(b []byte) error {
	text := strings.Trim(string(b), `"`)
	v, err := ParsePence(text)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePence parses "44.99", "-15.00" or "7" into minor units.
func ParsePence(s string) (Pence, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(digits, ".")
	if whole == "" || len(frac) > 2 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	frac = (frac + "00")[:2]

	w, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	v := Pence(w*100 + f)
	if neg {
		v = -v
	}
	return v, nil
}

package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that unmarshals from either a JSON number or a numeric
// string. Clients send prices both ways; the NaN/<=0 rule is enforced the
// same regardless of wire form.
type Number float64

// UnmarshalJSON accepts 500, "500" and "500.00".
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return fmt.Errorf("empty number")
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = Number(v)
	return nil
}

// MarshalJSON emits a plain JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// Positive reports whether the value is a finite number greater than zero.
func (n Number) Positive() bool {
	v := float64(n)
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

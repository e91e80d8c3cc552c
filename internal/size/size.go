// Package size parses and formats size literals such as "50MB" or "10KB".
//
// A size literal is a decimal number followed by one of the units B, KB, MB,
// GB or TB (case-insensitive). Units are powers of 1024.
package size

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid reports a malformed size literal.
var ErrInvalid = errors.New("invalid size literal")

type unit struct {
	name string
	mult int64
}

// ordered from largest to smallest, Format relies on it
var units = []unit{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// Parse converts a size literal to a byte count.
func Parse(s string) (int64, error) {
	lit := strings.ToUpper(strings.TrimSpace(s))

	i := 0
	for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("%w: %q: missing number", ErrInvalid, s)
	}

	n, err := strconv.ParseInt(lit[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}

	suffix := lit[i:]
	for _, u := range units {
		if suffix != u.name {
			continue
		}
		if n > math.MaxInt64/u.mult {
			return 0, fmt.Errorf("%w: %q: overflows int64", ErrInvalid, s)
		}
		return n * u.mult, nil
	}
	return 0, fmt.Errorf("%w: %q: unknown unit %q", ErrInvalid, s, suffix)
}

// Format renders n with the largest unit that divides it exactly, so that
// Parse(Format(n)) == n.
func Format(n int64) string {
	if n > 0 {
		for _, u := range units {
			if n%u.mult == 0 {
				return strconv.FormatInt(n/u.mult, 10) + u.name
			}
		}
	}
	return strconv.FormatInt(n, 10) + "B"
}

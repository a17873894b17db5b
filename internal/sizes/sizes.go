package sizes

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Supported icon side lengths, inclusive. ICO directory bytes stop at 256
// but Windows reads the real size from the payload header, so larger
// entries are allowed.
const (
	Min = 16
	Max = 1024
)

// ErrInvalidSizes is returned when a requested size list is empty after
// normalization or names a value outside [Min, Max].
var ErrInvalidSizes = errors.New("invalid icon sizes")

// Set is a strictly ascending list of unique side lengths in [Min, Max].
type Set []int

// Default is the size set used when the caller does not pick one.
var Default = Set{16, 24, 32, 48, 64, 96, 128, 192, 256}

// DefaultString is Default in the textual form accepted by Resolve.
var DefaultString = Default.String()

// Resolve parses a comma/whitespace separated list of sizes. Tokens that are
// not plain decimal digits are skipped, as are values outside [Min, Max].
// An empty result is valid; callers reject it.
func Resolve(s string) Set {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
	})

	var vals []int
	for _, f := range fields {
		if !isDigits(f) {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			// Digit strings too long for int are out of range anyway.
			continue
		}
		vals = append(vals, v)
	}
	return FromInts(vals)
}

// FromInts normalizes a collection: out-of-range values are dropped,
// duplicates collapse and the result is sorted ascending.
func FromInts(vals []int) Set {
	seen := map[int]bool{}
	out := Set{}
	for _, v := range vals {
		if v < Min || v > Max || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Validate is the strict form of FromInts used at the pipeline boundary:
// any out-of-range value, or an empty list, is an error.
func Validate(vals []int) (Set, error) {
	for _, v := range vals {
		if v < Min || v > Max {
			return nil, fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidSizes, v, Min, Max)
		}
	}
	set := FromInts(vals)
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no sizes specified", ErrInvalidSizes)
	}
	return set, nil
}

// Largest returns the biggest size, or 0 for an empty set.
func (s Set) Largest() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

package services

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

// ZeroChoice is the user's answer to "keep this record with 0 quantity?".
type ZeroChoice int

const (
	ZeroUndecided ZeroChoice = iota
	ZeroRetain
	ZeroDiscard
)

// ParseZeroChoice accepts "", "keep"/"retain" and "discard"/"delete".
func ParseZeroChoice(s string) (ZeroChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ZeroUndecided, nil
	case "keep", "retain":
		return ZeroRetain, nil
	case "discard", "delete", "remove":
		return ZeroDiscard, nil
	default:
		return ZeroUndecided, fmt.Errorf("%w: on_zero must be keep or discard", domain.ErrInvalidField)
	}
}

// Adjustment is the outcome of applying a delta to a wine's quantity.
type Adjustment struct {
	Quantity    int  // never negative
	NeedsChoice bool // true when the record reached zero bottles
}

// Adjust applies delta to w's quantity, clamping at zero.
func Adjust(w domain.Wine, delta int) Adjustment {
	q := w.Quantity + delta
	if q < 0 {
		q = 0
	}
	return Adjustment{Quantity: q, NeedsChoice: q == 0}
}

package setup

import (
	"errors"
	"fmt"
)

// ErrTooManyClientTypes is returned when the matrix editor must not be opened
// because the number of client types is too large for the memory budget.
var ErrTooManyClientTypes = errors.New("too many client types for available memory")

// MaxClientTypes is the hard upper bound regardless of memory.
const MaxClientTypes = 5000

// admissionTier rejects more than maxTypes client types when less than
// belowMB megabytes are available.
type admissionTier struct {
	belowMB  int64
	maxTypes int
}

// Evaluated in order; the editor materializes up to n² cells.
var admissionTiers = []admissionTier{
	{belowMB: 8000, maxTypes: 2500},
	{belowMB: 4000, maxTypes: 1000},
	{belowMB: 2000, maxTypes: 500},
}

// CanOpen reports whether an editor for clientTypeCount types may be opened
// with maxMemoryMB megabytes of heap. It is a coarse heuristic, not a
// capacity guarantee.
func CanOpen(clientTypeCount int, maxMemoryMB int64) bool {
	if clientTypeCount > MaxClientTypes {
		return false
	}
	for _, tier := range admissionTiers {
		if maxMemoryMB < tier.belowMB && clientTypeCount > tier.maxTypes {
			return false
		}
	}
	return true
}

// CheckAdmission is CanOpen with a reportable error.
func CheckAdmission(clientTypeCount int, maxMemoryMB int64) error {
	if CanOpen(clientTypeCount, maxMemoryMB) {
		return nil
	}
	return fmt.Errorf("%w: %d client types, %d MB available", ErrTooManyClientTypes, clientTypeCount, maxMemoryMB)
}

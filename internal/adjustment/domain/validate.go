package domain

import (
	"strings"
	"unicode/utf8"
)

// Normalize trims the reason and checks the entry before any mutation.
func (in AdjustmentInput) Normalize() (AdjustmentInput, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || utf8.RuneCountInString(reason) > MaxReasonLength {
		return AdjustmentInput{}, ErrInvalidReason
	}
	if in.Amount == nil {
		return AdjustmentInput{}, ErrInvalidAmount
	}
	if in.ID != nil && *in.ID == 0 {
		in.ID = nil
	}
	in.Reason = reason
	return in, nil
}

// NormalizeAll validates every entry and rejects repeated ids.
func NormalizeAll(inputs []AdjustmentInput) ([]AdjustmentInput, error) {
	out := make([]AdjustmentInput, 0, len(inputs))
	seen := make(map[int64]struct{}, len(inputs))
	for _, in := range inputs {
		normalized, err := in.Normalize()
		if err != nil {
			return nil, err
		}
		if normalized.ID != nil {
			if _, dup := seen[normalized.ID.Int64()]; dup {
				return nil, ErrDuplicateAdjustment
			}
			seen[normalized.ID.Int64()] = struct{}{}
		}
		out = append(out, normalized)
	}
	return out, nil
}

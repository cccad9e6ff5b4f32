package domain

import (
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	amount := decimal.NewFromInt(0)

	got, err := AdjustmentInput{Reason: "  bonus ", Amount: &amount}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "bonus", got.Reason)

	_, err = AdjustmentInput{Reason: " ", Amount: &amount}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidReason)

	_, err = AdjustmentInput{Reason: strings.Repeat("å", MaxReasonLength+1), Amount: &amount}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidReason)

	_, err = AdjustmentInput{Reason: "x"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNormalizeAll_RejectsDuplicateIDs(t *testing.T) {
	amount := decimal.NewFromInt(10)
	id := snowflake.ID(42)

	_, err := NormalizeAll([]AdjustmentInput{
		{ID: &id, Reason: "a", Amount: &amount},
		{ID: &id, Reason: "b", Amount: &amount},
	})
	assert.ErrorIs(t, err, ErrDuplicateAdjustment)

	out, err := NormalizeAll([]AdjustmentInput{
		{Reason: "a", Amount: &amount},
		{Reason: "a", Amount: &amount},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

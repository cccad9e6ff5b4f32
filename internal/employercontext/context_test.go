package employercontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployerIDFromContext(t *testing.T) {
	_, ok := EmployerIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithEmployerID(context.Background(), "  emp-co-1 ")
	got, ok := EmployerIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "emp-co-1", got)

	_, ok = EmployerIDFromContext(WithEmployerID(context.Background(), "   "))
	assert.False(t, ok)
}

func TestActorIDFromContext(t *testing.T) {
	ctx := WithActorID(context.Background(), "user-7")
	got, ok := ActorIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-7", got)
}

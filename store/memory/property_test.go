package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyStore(t *testing.T) {
	ctx := context.Background()
	s := NewPropertyStore()

	v, err := s.Get(ctx, "notifier_checkpoint")
	require.NoError(t, err)
	assert.EqualValues(t, 0, v.Int64())

	require.NoError(t, s.Save(ctx, "notifier_checkpoint", 42))
	v, _ = s.Get(ctx, "notifier_checkpoint")
	assert.EqualValues(t, 42, v.Int64())

	values, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, values, 1)

	require.NoError(t, s.Expire(ctx, "notifier_checkpoint"))
	v, _ = s.Get(ctx, "notifier_checkpoint")
	assert.EqualValues(t, 0, v.Int64())
}

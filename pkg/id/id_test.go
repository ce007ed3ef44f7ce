package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDFrom(t *testing.T) {
	a := TraceIDFrom("deposit", "0xabc")
	assert.Equal(t, a, TraceIDFrom("deposit", "0xabc"))
	assert.NotEqual(t, a, TraceIDFrom("withdraw", "0xabc"))
	assert.True(t, IsTraceID(a))
	assert.True(t, IsTraceID(GenTraceID()))
	assert.False(t, IsTraceID("not-a-uuid"))
}

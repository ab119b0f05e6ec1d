package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestClientLimiter_PerClient(t *testing.T) {
	l := newClientLimiter(0.001, 1)

	assert.True(t, l.get("10.0.0.1").Allow())
	assert.False(t, l.get("10.0.0.1").Allow())
	assert.True(t, l.get("10.0.0.2").Allow(), "clients have separate budgets")
	assert.Same(t, l.get("10.0.0.1"), l.get("10.0.0.1"))
}

func TestClientLimiter_Disabled(t *testing.T) {
	l := newClientLimiter(0, 0)

	assert.Equal(t, rate.Inf, l.limit)
	assert.Equal(t, 1, l.burst)
	for i := 0; i < 100; i++ {
		assert.True(t, l.get("10.0.0.1").Allow())
	}
}

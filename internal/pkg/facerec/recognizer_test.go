package facerec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorDistance(t *testing.T) {
	var a, b Descriptor
	assert.Zero(t, a.Distance(b))

	b[0] = 0.3
	assert.InDelta(t, 0.3, a.Distance(b), 1e-9)
	assert.InDelta(t, 0.3, b.Distance(a), 1e-9, "distance is symmetric")

	// 3-4-5 in two components.
	var c, d Descriptor
	c[0], c[1] = 3, 4
	assert.InDelta(t, 5, c.Distance(d), 1e-9)
}

func TestDescriptorDistance_Deterministic(t *testing.T) {
	var a, b Descriptor
	for i := range a {
		a[i] = float32(i) * 0.001
		b[i] = float32(i) * 0.002
	}

	first := a.Distance(b)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Distance(b))
	}
}

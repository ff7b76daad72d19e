package rebuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.95, ratio(95, 100), 0.0001)
	assert.InDelta(t, 1.0, ratio(0, 0), 0.0001)
	assert.InDelta(t, 0.0, ratio(1, 0), 0.0001)
}

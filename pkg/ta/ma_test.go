package ta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
)

func TestSMA(t *testing.T) {
	out := SMA(floats.New(1, 2, 3, 4, 5), 3)
	assert.Equal(t, floats.Slice{2, 3, 4}, out)
}

func TestSMA_TooShort(t *testing.T) {
	assert.Nil(t, SMA(floats.New(1, 2), 3))
	assert.Nil(t, SMA(floats.New(1, 2, 3), 0))
}

func TestEMA_SeedsWithSMA(t *testing.T) {
	out := EMA(floats.New(2, 4, 6, 8), 3)
	// seed = mean(2,4,6) = 4, alpha = 0.5
	assert.Equal(t, floats.Slice{4, 6}, out)
}

func TestRMA_SeedsWithSMA(t *testing.T) {
	out := RMA(floats.New(3, 3, 3, 6), 3)
	// seed = 3, alpha = 1/3
	assert.Len(t, out, 2)
	assert.Equal(t, 3.0, out[0])
	assert.InDelta(t, 4.0, out[1], 1e-9)
}

func TestMAModeNormalize(t *testing.T) {
	assert.Equal(t, MASimple, MAMode("sma").Normalize(MAWilder))
	assert.Equal(t, MAWilder, MAMode("bogus").Normalize(MAWilder))
	assert.Equal(t, MAExp, MAMode("").Normalize(MAExp))
}

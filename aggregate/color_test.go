package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorForEdges(t *testing.T) {
	for _, s := range []Scale{CountryScale, MaturityScale} {
		for _, max := range []int{0, 1, 7} {
			assert.Equal(t, s.Low, s.ColorFor(0, max), "value 0, max %d", max)
		}
		for _, v := range []int{-2, 0, 3, 100} {
			assert.Equal(t, s.Low, s.ColorFor(v, 0), "value %d, max 0", v)
		}
		assert.Equal(t, s.High, s.ColorFor(9, 9))
	}
}

func TestColorForInterpolates(t *testing.T) {
	assert.Equal(t, RGB{204, 123, 118}, CountryScale.ColorFor(1, 2))
	assert.Equal(t, RGB{161, 181, 217}, MaturityScale.ColorFor(1, 3))
	assert.Equal(t, "rgb(204, 123, 118)", CountryScale.ColorFor(1, 2).String())
}

func TestColorForClampsAboveMax(t *testing.T) {
	assert.Equal(t, CountryScale.High, CountryScale.ColorFor(12, 4))
}

func TestFractionIsMonotonic(t *testing.T) {
	const max = 37
	prev := 0.0
	for v := 1; v <= max; v++ {
		f := CountryScale.Fraction(v, max)
		assert.Greater(t, f, prev, "value %d", v)
		prev = f
	}
	assert.Equal(t, 1.0, prev)
}

func TestColorForIsDeterministic(t *testing.T) {
	s := Scale{Low: RGB{1, 2, 3}, High: RGB{200, 100, 50}}
	assert.Equal(t, s.ColorFor(3, 11), s.ColorFor(3, 11))
}

func TestHexRoundTrip(t *testing.T) {
	c, err := ParseHex("#990000")
	require.NoError(t, err)
	assert.Equal(t, RGB{153, 0, 0}, c)
	assert.Equal(t, "#fff5eb", CountryScale.Low.Hex())
	assert.Equal(t, "#173a8c", MaturityScale.High.Hex())

	_, err = ParseHex("crimson")
	assert.Error(t, err)
}

func TestGradient(t *testing.T) {
	g := MaturityScale.Gradient(5)
	require.Len(t, g, 5)
	assert.Equal(t, MaturityScale.Low, g[0])
	assert.Equal(t, MaturityScale.High, g[4])
	assert.Equal(t, []RGB{MaturityScale.Low}, MaturityScale.Gradient(1))
}

func TestLabelColor(t *testing.T) {
	assert.Equal(t, darkText, LabelColor(5, 10))
	assert.Equal(t, lightText, LabelColor(6, 10))
	assert.Equal(t, darkText, LabelColor(0, 0))
}

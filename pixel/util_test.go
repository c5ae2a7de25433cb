package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNRGBA(t *testing.T) {
	t.Parallel()

	nrgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, nrgba, ToNRGBA(nrgba))

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 77})
	got := ToNRGBA(gray)
	assert.Equal(t, color.NRGBA{A: 255}, got.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 77, G: 77, B: 77, A: 255}, got.NRGBAAt(1, 0))
}

func TestFitWithin(t *testing.T) {
	t.Parallel()

	img := newFilled(100, 50, opaqueOrange)

	assert.Same(t, img, FitWithin(img, 0))
	assert.Same(t, img, FitWithin(img, 100))
	assert.Same(t, img, FitWithin(img, 200))

	got := FitWithin(img, 20)
	require.NotNil(t, got)
	assert.Equal(t, 20, got.Bounds().Dx())
	assert.Equal(t, 10, got.Bounds().Dy())
	// 纯色缩放后颜色不变
	assert.Equal(t, opaqueOrange, got.NRGBAAt(5, 5))
}

func TestFitWithin_KeepsLowAlphaColor(t *testing.T) {
	t.Parallel()

	// 预乘再还原会把 (201,99,51,3) 变成别的颜色
	faint := color.NRGBA{R: 201, G: 99, B: 51, A: 3}
	img := newFilled(16, 8, faint)
	img.SetNRGBA(0, 0, opaqueOrange)

	got := FitWithin(img, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 2), got.Bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := got.NRGBAAt(x, y)
			assert.Contains(t, []color.NRGBA{faint, opaqueOrange}, c, "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, faint, got.NRGBAAt(3, 1))
}

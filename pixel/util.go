package pixel

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ToNRGBA 转为 NRGBA，方便统一处理；没有 alpha 的格式转换后 alpha 为 255
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// FitWithin 缩放（最长边 <= maxSize），maxSize <= 0 表示不缩放。
// 像素画用最近邻取样，保持硬边；结果仍是非预乘的 NRGBA，低 alpha 像素的颜色不丢精度。
func FitWithin(img *image.NRGBA, maxSize int) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if maxSize <= 0 || longest <= maxSize {
		return img
	}

	newW := max(1, w*maxSize/longest)
	newH := max(1, h*maxSize/longest)

	return imaging.Resize(img, newW, newH, imaging.NearestNeighbor)
}

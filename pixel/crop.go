package pixel

import (
	"image"

	"github.com/disintegration/imaging"
)

// ContentBoundingBox 计算所有 alpha > 0 像素的最小外接矩形（右、下开区间）。
// 全透明、没有 alpha 通道（Gray / YCbCr / CMYK）或调色板图时 ok 为 false，表示无需裁剪。
func ContentBoundingBox(img image.Image) (box image.Rectangle, ok bool) {
	alpha, ok := alphaReader(img)
	if !ok {
		return image.Rectangle{}, false
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rows := make([]bool, h)
	cols := make([]bool, w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if alpha(b.Min.X+x, b.Min.Y+y) > 0 {
				rows[y] = true
				cols[x] = true
			}
		}
	}

	top, bottom, found := span(rows)
	if !found {
		return image.Rectangle{}, false
	}
	left, right, _ := span(cols)

	return image.Rect(b.Min.X+left, b.Min.Y+top, b.Min.X+right, b.Min.Y+bottom), true
}

// span 返回第一个 true 的下标和最后一个 true 的下标 + 1
func span(mask []bool) (first, end int, found bool) {
	first = -1
	for i, v := range mask {
		if v {
			first = i
			break
		}
	}
	if first < 0 {
		return 0, 0, false
	}
	for i := len(mask) - 1; i >= first; i-- {
		if mask[i] {
			return first, i + 1, true
		}
	}
	return first, first + 1, true
}

// PadRect 每条边向外扩展 padding 像素，并各自截断到 bounds 内
func PadRect(box, bounds image.Rectangle, padding int) image.Rectangle {
	padding = max(padding, 0)
	return image.Rect(
		max(bounds.Min.X, box.Min.X-padding),
		max(bounds.Min.Y, box.Min.Y-padding),
		min(bounds.Max.X, box.Max.X+padding),
		min(bounds.Max.Y, box.Max.Y+padding),
	)
}

// CropToContent 裁剪到内容区域加 padding。没有可裁剪内容时返回 nil, false，调用方应跳过该图
func CropToContent(img image.Image, padding int) (*image.NRGBA, bool) {
	box, ok := ContentBoundingBox(img)
	if !ok {
		return nil, false
	}
	return imaging.Crop(img, PadRect(box, img.Bounds(), padding)), true
}

// alphaReader 返回按坐标读取 8 位 alpha 的函数；图像没有 alpha 通道时 ok 为 false
func alphaReader(img image.Image) (func(x, y int) uint8, bool) {
	switch t := img.(type) {
	case *image.NRGBA:
		return func(x, y int) uint8 {
			return t.Pix[t.PixOffset(x, y)+3]
		}, true
	case *image.RGBA:
		return func(x, y int) uint8 {
			return t.Pix[t.PixOffset(x, y)+3]
		}, true
	case *image.Alpha:
		return func(x, y int) uint8 {
			return t.Pix[t.PixOffset(x, y)]
		}, true
	case *image.NRGBA64, *image.RGBA64, *image.Alpha16, *image.NYCbCrA:
		return func(x, y int) uint8 {
			_, _, _, a := img.At(x, y).RGBA()
			if a == 0 {
				return 0
			}
			// 低 8 位的微弱 alpha 也算内容
			return uint8(max(a>>8, 1))
		}, true
	default:
		// Gray、Gray16、YCbCr、CMYK 没有 alpha；Paletted 等其他布局同样按“无需裁剪”处理
		return nil, false
	}
}

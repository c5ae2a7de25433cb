package pixel

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// Mask 与源图同尺寸的布尔矩阵，true 表示背景（需要移除）
type Mask struct {
	Width  int
	Height int
	bits   []bool
}

func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.bits[y*m.Width+x]
}

// Count 背景像素个数
func (m Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// BackgroundMask 按 cfg.Rules() 对每个像素分类，只看 RGB，不看 alpha
func BackgroundMask(img *image.NRGBA, cfg Config) Mask {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	m := Mask{Width: w, Height: h, bits: make([]bool, w*h)}
	rules := cfg.Rules()

	for y := 0; y < h; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			s := NewSample(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			_, m.bits[y*w+x] = Classify(s, rules)
			i += 4
		}
	}
	return m
}

// RemoveBackground 把背景像素的 alpha 置 0，其余通道和前景 alpha 原样保留。
// 返回新图，不修改入参。
func RemoveBackground(img *image.NRGBA, cfg Config) *image.NRGBA {
	mask := BackgroundMask(img, cfg)
	out := imaging.Clone(img)

	for y := 0; y < mask.Height; y++ {
		row := y * out.Stride
		for x := 0; x < mask.Width; x++ {
			if mask.bits[y*mask.Width+x] {
				out.Pix[row+x*4+3] = 0
			}
		}
	}
	return out
}

type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// ThresholdRemover 基于颜色阈值的 Remover 实现
type ThresholdRemover struct {
	Config Config
}

func NewThresholdRemover(cfg Config) *ThresholdRemover {
	return &ThresholdRemover{Config: cfg}
}

func (t *ThresholdRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return RemoveBackground(ToNRGBA(img), t.Config), nil
}

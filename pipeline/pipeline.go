// Package pipeline 批量处理生成目录下的图片：去背景、裁剪、缩放，写回原文件并拷贝进资源目录。
// 单张图失败只记录日志和报告，不会中断整个批次。
package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"

	"github.com/chaos-io/pixelprep/catalog"
	"github.com/chaos-io/pixelprep/pixel"
	"github.com/chaos-io/pixelprep/util"
	"github.com/pkg/errors"
)

const progressEvery = 10

type Options struct {
	// Root 生成图片所在目录，递归查找
	Root string
	// Exts 需要处理的扩展名，默认 .png
	Exts   []string
	Config pixel.Config
	// Catalog 为 nil 时不拷贝
	Catalog *catalog.Catalog

	RemoveBackground bool
	Crop             bool
	// MaxSize 最长边上限，0 表示不缩放
	MaxSize int
	// DryRun 只统计，不写文件
	DryRun bool
}

type Runner struct {
	opts    Options
	remover pixel.Remover
}

func NewRunner(opts Options) *Runner {
	return &Runner{
		opts:    opts,
		remover: pixel.NewThresholdRemover(opts.Config),
	}
}

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	defer util.Trace("pipeline run")()

	if err := r.opts.Config.Validate(); err != nil {
		return nil, err
	}

	files, err := util.FindImages(r.opts.Root, r.opts.Exts...)
	if err != nil {
		return nil, err
	}
	slog.Info("found images", "count", len(files), "root", r.opts.Root)

	report := &Report{Root: r.opts.Root, Total: len(files), DryRun: r.opts.DryRun}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		r.runOne(ctx, path, report)

		if (i+1)%progressEvery == 0 {
			slog.Info("progress", "processed", i+1, "total", len(files))
		}
	}

	slog.Info("done", "processed", len(report.Processed), "no_content", len(report.NoContent),
		"unmatched", len(report.Unmatched), "failed", len(report.Failed), "copied", report.Copied)
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, path string, report *Report) {
	stat, ok, err := r.process(ctx, path)
	if err != nil {
		slog.Warn("process image failed", "path", path, "error", err)
		report.Failed = append(report.Failed, Failure{Path: path, Err: err})
		return
	}
	if !ok {
		slog.Debug("no content, skipped", "path", path)
		report.NoContent = append(report.NoContent, path)
		return
	}
	report.Processed = append(report.Processed, stat)

	if r.opts.Catalog == nil {
		return
	}
	if r.opts.DryRun {
		// 不拷贝，但仍然报告没有对应 imageset 的文件
		if _, found := r.opts.Catalog.Lookup(stat.Name); !found {
			report.Unmatched = append(report.Unmatched, stat.Name)
		}
		return
	}
	dest, copied, err := r.opts.Catalog.Install(path)
	switch {
	case err != nil:
		slog.Warn("copy to catalog failed", "path", path, "error", err)
		report.Failed = append(report.Failed, Failure{Path: path, Err: err})
	case copied:
		slog.Debug("copied to catalog", "path", path, "dest", dest)
		report.Copied++
	default:
		report.Unmatched = append(report.Unmatched, stat.Name)
	}
}

// process 处理单张图；ok 为 false 表示裁剪时没有找到内容，文件保持不变
func (r *Runner) process(ctx context.Context, path string) (stat FileStat, ok bool, err error) {
	stat = FileStat{Path: path, Name: util.Stem(path), OrigBytes: util.FileSize(path)}

	img, err := util.OpenImage(path)
	if err != nil {
		return stat, false, err
	}
	stat.OrigSize = img.Bounds().Size()

	if r.opts.RemoveBackground {
		if img, err = r.remover.Remove(ctx, img); err != nil {
			return stat, false, errors.Wrapf(err, "remove background %s", path)
		}
	}

	// 先统一成 NRGBA：调色板图的透明色、灰度图补出的不透明 alpha 都按像素参与裁剪
	work := pixel.ToNRGBA(img)
	if r.opts.Crop {
		cropped, found := pixel.CropToContent(work, r.opts.Config.Padding)
		if !found {
			return stat, false, nil
		}
		work = cropped
	}

	work = pixel.FitWithin(work, r.opts.MaxSize)
	stat.NewSize = work.Bounds().Size()

	if r.opts.DryRun {
		stat.NewBytes, err = encodedSize(work)
		return stat, err == nil, err
	}

	if err := util.SavePNG(path, work); err != nil {
		return stat, false, err
	}
	stat.NewBytes = util.FileSize(path)
	return stat, true, nil
}

func encodedSize(img image.Image) (int64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, errors.Wrap(err, "png encode")
	}
	return int64(buf.Len()), nil
}

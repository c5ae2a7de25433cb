package pipeline

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FileStat 单张图处理前后的尺寸和字节数
type FileStat struct {
	Path      string
	Name      string
	OrigSize  image.Point
	NewSize   image.Point
	OrigBytes int64
	NewBytes  int64
}

// Reduction 文件体积减少的百分比
func (s FileStat) Reduction() float64 {
	return reduction(s.OrigBytes, s.NewBytes)
}

type Failure struct {
	Path string
	Err  error
}

type Report struct {
	Root   string
	Total  int
	DryRun bool

	Processed []FileStat
	// NoContent 全透明或没有 alpha，未写回也未拷贝
	NoContent []string
	// Unmatched 资源目录中没有同名 imageset 的文件名
	Unmatched []string
	Failed    []Failure
	Copied    int
}

func reduction(orig, cur int64) float64 {
	if orig <= 0 {
		return 0
	}
	return (1 - float64(cur)/float64(orig)) * 100
}

func dim(p image.Point) string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}

func (r *Report) Print(w io.Writer) {
	re := lipgloss.NewRenderer(w)
	bold := re.NewStyle().Bold(true)
	warn := re.NewStyle().Foreground(lipgloss.Color("3"))
	bad := re.NewStyle().Foreground(lipgloss.Color("1"))
	rule := strings.Repeat("-", 95)

	_, _ = fmt.Fprintln(w, bold.Render(fmt.Sprintf("%-40s %12s %12s %9s %9s %7s",
		"File", "Original", "Processed", "Orig KB", "New KB", "Saved")))
	_, _ = fmt.Fprintln(w, rule)

	var totalOrig, totalNew int64
	for _, s := range r.Processed {
		totalOrig += s.OrigBytes
		totalNew += s.NewBytes
		_, _ = fmt.Fprintf(w, "%-40s %12s %12s %8.1fK %8.1fK %6.1f%%\n",
			s.Name, dim(s.OrigSize), dim(s.NewSize),
			float64(s.OrigBytes)/1024, float64(s.NewBytes)/1024, s.Reduction())
	}

	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, bold.Render(fmt.Sprintf("%-40s %12s %12s %8.1fK %8.1fK %6.1f%%",
		"TOTAL", "", "", float64(totalOrig)/1024, float64(totalNew)/1024, reduction(totalOrig, totalNew))))

	_, _ = fmt.Fprintf(w, "\nImages processed: %d/%d\n", len(r.Processed), r.Total)
	if r.DryRun {
		_, _ = fmt.Fprintln(w, "Dry run: no files written")
	} else {
		_, _ = fmt.Fprintf(w, "Copied to asset catalog: %d\n", r.Copied)
	}

	if len(r.NoContent) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, warn.Render(fmt.Sprintf("Skipped (fully transparent / no alpha): %d", len(r.NoContent))))
		for _, p := range r.NoContent {
			_, _ = fmt.Fprintf(w, "  - %s\n", p)
		}
	}

	if len(r.Unmatched) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, warn.Render(fmt.Sprintf("No matching imageset found for %d files:", len(r.Unmatched))))
		for _, s := range r.Unmatched {
			_, _ = fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	if len(r.Failed) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, bad.Render(fmt.Sprintf("Errors: %d", len(r.Failed))))
		for _, f := range r.Failed {
			_, _ = fmt.Fprintf(w, "  - %s: %v\n", f.Path, f.Err)
		}
	}
}

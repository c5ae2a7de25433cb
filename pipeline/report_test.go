package pipeline

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStat_Reduction(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 75.0, FileStat{OrigBytes: 4096, NewBytes: 1024}.Reduction(), 1e-9)
	assert.InDelta(t, -100.0, FileStat{OrigBytes: 1000, NewBytes: 2000}.Reduction(), 1e-9)
	assert.Zero(t, FileStat{OrigBytes: 0, NewBytes: 10}.Reduction())
}

func TestReport_Print(t *testing.T) {
	t.Parallel()

	r := &Report{
		Total: 5,
		Processed: []FileStat{
			{Name: "badge_beastMode", OrigSize: image.Pt(1024, 1024), NewSize: image.Pt(600, 512), OrigBytes: 4096, NewBytes: 1024},
			{Name: "hero", OrigSize: image.Pt(64, 64), NewSize: image.Pt(20, 30), OrigBytes: 2048, NewBytes: 2048},
		},
		NoContent: []string{"/gen/blank.png"},
		Unmatched: []string{"hero"},
		Failed:    []Failure{{Path: "/gen/broken.png", Err: errors.New("decode image")}},
		Copied:    1,
	}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "File")
	assert.Contains(t, out, "badge_beastMode")
	assert.Contains(t, out, "1024x1024")
	assert.Contains(t, out, "600x512")
	assert.Contains(t, out, "4.0K")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "TOTAL")
	// 总计 6144 -> 3072
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "Images processed: 2/5")
	assert.Contains(t, out, "Copied to asset catalog: 1")
	assert.Contains(t, out, "Skipped (fully transparent / no alpha): 1")
	assert.Contains(t, out, "  - /gen/blank.png")
	assert.Contains(t, out, "No matching imageset found for 1 files:")
	assert.Contains(t, out, "Errors: 1")
	assert.Contains(t, out, "/gen/broken.png: decode image")
}

func TestReport_Print_DryRunEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	(&Report{DryRun: true}).Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Images processed: 0/0")
	assert.Contains(t, out, "Dry run: no files written")
	assert.NotContains(t, out, "Copied to asset catalog")
	assert.NotContains(t, out, "Skipped")
	assert.NotContains(t, out, "Errors")
}

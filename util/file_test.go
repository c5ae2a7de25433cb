package util

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePNG_OpenImage_RoundTrip(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 230, G: 120, B: 20, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 77})
	img.SetNRGBA(2, 1, color.NRGBA{R: 200, G: 200, B: 200, A: 0})

	path := filepath.Join(t.TempDir(), "nested", "badge.png")
	require.NoError(t, SavePNG(path, img))

	got, err := OpenImage(path)
	require.NoError(t, err)
	nrgba, ok := got.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, img.Bounds(), nrgba.Bounds())
	assert.Equal(t, img.NRGBAAt(0, 0), nrgba.NRGBAAt(0, 0))
	assert.Equal(t, img.NRGBAAt(1, 1), nrgba.NRGBAAt(1, 1))
	assert.Equal(t, uint8(0), nrgba.NRGBAAt(2, 1).A)

	// 临时文件不应残留
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSavePNG_Mode(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	dir := t.TempDir()

	tests := []struct {
		name     string
		existing os.FileMode
		want     os.FileMode
	}{
		{name: "新文件默认0644", want: 0o644},
		{name: "覆盖时保留0644", existing: 0o644, want: 0o644},
		{name: "覆盖时保留0664", existing: 0o664, want: 0o664},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tt.name+".png")
			if tt.existing != 0 {
				require.NoError(t, os.WriteFile(path, []byte("old"), tt.existing))
				// 不受 umask 影响
				require.NoError(t, os.Chmod(path, tt.existing))
			}

			require.NoError(t, SavePNG(path, img))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Mode().Perm())
		})
	}
}

func TestOpenImage_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := OpenImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "open image")

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))
	_, err = OpenImage(bad)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode image")
}

func TestFindImages(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := []string{
		"b.png",
		"a.PNG",
		"sub/c.png",
		"sub/deeper/d.png",
		"notes.txt",
		"sub/e.jpg",
	}
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	got, err := FindImages(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PNG"),
		filepath.Join(root, "b.png"),
		filepath.Join(root, "sub", "c.png"),
		filepath.Join(root, "sub", "deeper", "d.png"),
	}, got)

	exts := []string{"JPG"}
	got, err = FindImages(root, exts...)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "sub", "e.jpg")}, got)
	assert.Equal(t, []string{"JPG"}, exts)

	_, err = FindImages(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestStem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "badge_beastMode", Stem("/tmp/x/badge_beastMode.png"))
	assert.Equal(t, "icon.v2", Stem("icon.v2.png"))
	assert.Equal(t, "noext", Stem("noext"))
}

func TestFileSize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 1234), 0o644))
	assert.Equal(t, int64(1234), FileSize(path))
	assert.Equal(t, int64(0), FileSize(path+".missing"))
}

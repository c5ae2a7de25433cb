package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T, imagesets ...string) *Catalog {
	t.Helper()

	root := filepath.Join(t.TempDir(), "Assets.xcassets")
	for _, name := range imagesets {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}
	return New(root)
}

func TestCatalog_Lookup(t *testing.T) {
	t.Parallel()

	c := newCatalog(t, "badge_beastMode.imageset", "AppIcon.appiconset")
	require.NoError(t, os.WriteFile(filepath.Join(c.Root, "loose.imageset"), []byte("file"), 0o644))

	dir, ok := c.Lookup("badge_beastMode")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(c.Root, "badge_beastMode.imageset"), dir)

	_, ok = c.Lookup("AppIcon")
	assert.False(t, ok)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)

	// 同名普通文件不是 imageset
	_, ok = c.Lookup("loose")
	assert.False(t, ok)

	_, ok = c.Lookup("")
	assert.False(t, ok)
}

func TestCatalog_Install(t *testing.T) {
	t.Parallel()

	c := newCatalog(t, "hero.imageset")

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "hero.png")
	require.NoError(t, os.WriteFile(src, []byte("png-bytes"), 0o640))
	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dest, ok, err := c.Install(src)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(c.Root, "hero.imageset", "hero.png"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// 再次安装覆盖旧文件
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o640))
	_, ok, err = c.Install(src)
	require.NoError(t, err)
	require.True(t, ok)
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestCatalog_Install_Unmatched(t *testing.T) {
	t.Parallel()

	c := newCatalog(t)
	src := filepath.Join(t.TempDir(), "orphan.png")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	dest, ok, err := c.Install(src)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, dest)
}

func TestCatalog_Install_MissingSource(t *testing.T) {
	t.Parallel()

	c := newCatalog(t, "ghost.imageset")
	_, ok, err := c.Install(filepath.Join(t.TempDir(), "ghost.png"))
	assert.Error(t, err)
	assert.False(t, ok)
}

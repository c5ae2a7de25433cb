// Package catalog 把处理后的图片拷贝进 Xcode 资源目录（Assets.xcassets），
// 每张图对应一个 <name>.imageset 目录。
package catalog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/chaos-io/pixelprep/util"
	"github.com/pkg/errors"
)

const imagesetExt = ".imageset"

type Catalog struct {
	Root string
}

func New(root string) *Catalog {
	return &Catalog{Root: root}
}

// Lookup 查找 <stem>.imageset 目录。只匹配 .imageset，AppIcon.appiconset 不会被写入
func (c *Catalog) Lookup(stem string) (string, bool) {
	if stem == "" {
		return "", false
	}
	dir := filepath.Join(c.Root, stem+imagesetExt)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// Install 把 src 拷贝为 <imageset>/<stem>.png，保留权限和修改时间。
// 没有对应的 imageset 时返回 ok=false、err=nil
func (c *Catalog) Install(src string) (dest string, ok bool, err error) {
	stem := util.Stem(src)
	dir, ok := c.Lookup(stem)
	if !ok {
		return "", false, nil
	}

	dest = filepath.Join(dir, stem+".png")
	if err := copyFile(src, dest); err != nil {
		return "", false, err
	}
	return dest, true, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "create %s", dest)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "copy %s to %s", src, dest)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "close %s", dest)
	}

	if err := os.Chmod(dest, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "chmod %s", dest)
	}
	return errors.Wrapf(os.Chtimes(dest, info.ModTime(), info.ModTime()), "chtimes %s", dest)
}

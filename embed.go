package folio

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
)

// EmbeddedAssets contains static assets shipped with the binary:
// site.js, site.css, and the fallback favicon.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// AssetVersion changes whenever an embedded asset changes. Pages append it to
// asset URLs, which are cached as immutable.
var AssetVersion = assetVersion(EmbeddedAssets)

func assetVersion(fsys fs.FS) string {
	h := sha256.New()
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		h.Write([]byte(path))
		h.Write(b)
		return nil
	})
	return hex.EncodeToString(h.Sum(nil))[:12]
}

package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFiles embed.FS

var staticFS = subFS(staticFiles, "static")

// Content types of the embedded assets, independent of the host's mime tables.
var assetTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".ico":  "image/x-icon",
	".json": "application/json",
}

// subFS roots fsys at dir. It runs at package init and panics on an invalid dir.
func subFS(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded %s directory: %v", dir, err))
	}
	return sub
}

// serveAsset writes the embedded asset name, e.g. "js/session.js".
func serveAsset(w http.ResponseWriter, name string) error {
	data, err := fs.ReadFile(staticFS, name)
	if err != nil {
		return fmt.Errorf("read asset %s: %w", name, err)
	}

	w.Header().Set("Content-Type", assetType(name, data))
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write asset %s: %w", name, err)
	}
	return nil
}

func assetType(name string, data []byte) string {
	if ctype, ok := assetTypes[strings.ToLower(path.Ext(name))]; ok {
		return ctype
	}
	return http.DetectContentType(data)
}

package main

import (
	"net/http"
	"os"
)

// assetFS serves the static files of the form page (styles, images) from a
// local directory.
type assetFS struct {
	fs http.FileSystem
}

// newAssetFS creates a new asset filesystem rooted at the given path.
func newAssetFS(path string) assetFS {
	return assetFS{http.Dir(path)}
}

// Open files but not directories. Directory listings of the asset tree are
// reported as not found.
func (as assetFS) Open(path string) (http.File, error) {
	fp, err := as.fs.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if stat.IsDir() {
		fp.Close()
		return nil, os.ErrNotExist
	}
	return fp, nil
}

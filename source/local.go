package source

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"
)

// LocalReader reads files from the local file system. file:// URLs are accepted.
type LocalReader struct{}

// Read reads and decompresses the file at location
func (LocalReader) Read(ctx context.Context, location string) ([]byte, error) {
	p := strings.TrimPrefix(location, "file://")
	f, err := os.Open(p) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, readError(location, err)
	}
	defer f.Close()

	data, err := readAll(ctx, f, p)
	if err != nil {
		return nil, readError(location, err)
	}
	return data, nil
}

// FSReader reads files from an fs.FS, such as an embed.FS
type FSReader struct {
	FS fs.FS
}

// NewFSReader creates a reader over fsys
func NewFSReader(fsys fs.FS) *FSReader {
	return &FSReader{FS: fsys}
}

// Read reads and decompresses the file at location inside the file system
func (r *FSReader) Read(ctx context.Context, location string) ([]byte, error) {
	p := path.Clean(strings.TrimPrefix(location, "/"))
	f, err := r.FS.Open(p)
	if err != nil {
		return nil, readError(location, err)
	}
	defer f.Close()

	data, err := readAll(ctx, f, p)
	if err != nil {
		return nil, readError(location, err)
	}
	return data, nil
}

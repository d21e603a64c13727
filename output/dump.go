package output

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/nao1215/filequery/domain/model"
)

// NewCompressor wraps w with a compression writer. The returned cleanup
// function flushes and closes the compressor but not w.
func NewCompressor(w io.Writer, compression model.CompressionType) (io.Writer, func() error, error) {
	switch compression {
	case model.CompressionNone:
		return w, func() error { return nil }, nil

	case model.CompressionGZ:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil

	case model.CompressionBZ2:
		return nil, nil, errors.New("bzip2 compression is not supported for writing")

	case model.CompressionXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, xw.Close, nil

	case model.CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, zw.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type for writing: %v", compression)
	}
}

// Dump writes res to the file at path in the format and compression of opts.
func Dump(res *model.Result, path string, opts DumpOptions) (err error) {
	if opts.Compression == model.CompressionBZ2 {
		return model.NewErrorContext("dump", path).
			Error(errors.New("bzip2 compression is not supported for writing"))
	}

	file, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return model.NewErrorContext("dump", path).Error(err)
	}
	defer func() {
		if syncErr := file.Sync(); syncErr != nil && err == nil {
			err = syncErr
		}
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w, cleanup, err := NewCompressor(file, opts.Compression)
	if err != nil {
		return model.NewErrorContext("dump", path).Error(err)
	}
	if err := Write(w, res, opts.Format); err != nil {
		_ = cleanup()
		return model.NewErrorContext("dump", path).Error(err)
	}
	if err := cleanup(); err != nil {
		return model.NewErrorContext("dump", path).Error(err)
	}
	return nil
}

package source

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/nao1215/filequery/domain/model"
)

// NewDecompressor wraps r with a decompression reader for the given
// compression type. The returned cleanup function releases decoder state.
func NewDecompressor(r io.Reader, compression model.CompressionType) (io.Reader, func() error, error) {
	nop := func() error { return nil }

	switch compression {
	case model.CompressionNone:
		return r, nop, nil

	case model.CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, gz.Close, nil

	case model.CompressionBZ2:
		return bzip2.NewReader(r), nop, nil

	case model.CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xr, nop, nil

	case model.CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type for reading: %v", compression)
	}
}

// readAll reads r to the end, decompressing according to the location's
// extension and stopping early when ctx is canceled.
func readAll(ctx context.Context, r io.Reader, location string) ([]byte, error) {
	dr, cleanup, err := NewDecompressor(&contextReader{ctx: ctx, r: r}, model.DetectCompressionType(location))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cleanup() }()

	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// contextReader fails reads once its context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

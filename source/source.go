// Package source fetches raw table content from local files, file systems,
// S3 and HTTP. Content is decompressed according to the location's extension.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/filequery/domain/model"
)

// DefaultHTTPTimeout bounds a single HTTP fetch
const DefaultHTTPTimeout = 5 * time.Minute

// Reader fetches the decompressed content stored at a location
type Reader interface {
	Read(ctx context.Context, location string) ([]byte, error)
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(ctx context.Context, location string) ([]byte, error)

// Read calls f(ctx, location)
func (f ReaderFunc) Read(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// Scheme is the kind of location a Reader serves
type Scheme string

const (
	// SchemeLocal is a plain path or a file:// URL
	SchemeLocal Scheme = "local"
	// SchemeS3 is an s3://bucket/key URL
	SchemeS3 Scheme = "s3"
	// SchemeHTTP is an http:// or https:// URL
	SchemeHTTP Scheme = "http"
)

// DetectScheme returns the scheme of a location
func DetectScheme(location string) Scheme {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "s3://"):
		return SchemeS3
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return SchemeHTTP
	default:
		return SchemeLocal
	}
}

// Options configures the readers built by NewRouter
type Options struct {
	// HTTPTimeout bounds HTTP fetches, DefaultHTTPTimeout when zero
	HTTPTimeout time.Duration
	// S3 configures the S3 client
	S3 S3Options
}

// Router dispatches reads to a Reader by location scheme
type Router struct {
	readers map[Scheme]Reader
}

// NewRouter creates a Router serving local paths, S3 and HTTP
func NewRouter(opts Options) *Router {
	return &Router{
		readers: map[Scheme]Reader{
			SchemeLocal: &LocalReader{},
			SchemeS3:    NewS3Reader(opts.S3),
			SchemeHTTP:  NewHTTPReader(opts.HTTPTimeout),
		},
	}
}

// Handle registers r for a scheme, replacing any existing reader
func (rt *Router) Handle(scheme Scheme, r Reader) *Router {
	rt.readers[scheme] = r
	return rt
}

// Read fetches location with the reader registered for its scheme
func (rt *Router) Read(ctx context.Context, location string) ([]byte, error) {
	scheme := DetectScheme(location)
	r, ok := rt.readers[scheme]
	if !ok {
		return nil, model.NewErrorContext("read", location).
			Error(fmt.Errorf("%w: no reader for scheme %s", model.ErrRead, scheme))
	}
	return r.Read(ctx, location)
}

// readError wraps a read failure with its location
func readError(location string, err error) error {
	return model.NewErrorContext("read", location).Error(fmt.Errorf("%w: %w", model.ErrRead, err))
}

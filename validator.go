package filequery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/filequery/domain/model"
	"github.com/nao1215/filequery/source"
)

// validator turns builder inputs into table sources
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// collectPath validates a location and returns the sources it holds.
// Local directories are walked recursively; remote locations are checked by
// extension only because they are fetched at query time.
func (v *validator) collectPath(location string) ([]*tableSource, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("path cannot be empty")
	}

	if source.DetectScheme(location) != source.SchemeLocal {
		if !model.IsSupportedFile(location) {
			return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, location)
		}
		return []*tableSource{newTableSource(location, nil)}, nil
	}

	path := strings.TrimPrefix(location, "file://")
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s", location)
		}
		return nil, fmt.Errorf("failed to stat path %s: %w", location, err)
	}

	if !info.IsDir() {
		if !model.IsSupportedFile(path) {
			return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, location)
		}
		return []*tableSource{newTableSource(location, nil)}, nil
	}

	var sources []*tableSource
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && model.IsSupportedFile(p) {
			sources = append(sources, newTableSource(p, nil))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", location, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no supported files found in directory: %s", location)
	}
	return sources, nil
}

// collectFS returns a source for every supported file in fsys
func (v *validator) collectFS(fsys fs.FS) ([]*tableSource, error) {
	if fsys == nil {
		return nil, errors.New("FS cannot be nil")
	}

	reader := source.NewFSReader(fsys)
	var sources []*tableSource
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && model.IsSupportedFile(p) {
			sources = append(sources, newTableSource(p, reader))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(sources) == 0 {
		return nil, errors.New("no supported files found in filesystem")
	}
	return sources, nil
}

// collectReader drains a reader input so that every query can read it afresh
func (v *validator) collectReader(in readerInput) (*tableSource, error) {
	if in.reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if in.tableName == "" {
		return nil, errors.New("table name must be specified for reader input")
	}
	if in.fileType == model.FileTypeUnsupported {
		return nil, errors.New("file type must be specified for reader input")
	}

	data, err := io.ReadAll(in.reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input for table %s: %w", in.tableName, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty %s data for table %s", model.ErrLoad, in.fileType, in.tableName)
	}

	return &tableSource{
		name:     model.SanitizeTableName(in.tableName),
		location: in.tableName,
		fileType: in.fileType,
		reader: source.ReaderFunc(func(_ context.Context, _ string) ([]byte, error) {
			return data, nil
		}),
	}, nil
}

// validateDatabase checks a database registration before it is opened
func (v *validator) validateDatabase(in databaseInput) error {
	if strings.TrimSpace(in.name) == "" {
		return errors.New("database name cannot be empty")
	}
	if in.driverName == "" {
		return fmt.Errorf("driver name must be specified for database %s", in.name)
	}
	return nil
}

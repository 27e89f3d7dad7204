package osm

import (
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
)

// readCloser closes every layer of a decompression stack, innermost last.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens an OSM export, decompressing .gz, .bz2 and .zst files on the fly.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "osm: open %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "osm: gzip reader for %s", path)
		}
		return &readCloser{Reader: gz, closers: []func() error{gz.Close, f.Close}}, nil
	case ".bz2":
		return &readCloser{Reader: bzip2.NewReader(f), closers: []func() error{f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "osm: zstd reader for %s", path)
		}
		closeZstd := func() error {
			zr.Close()
			return nil
		}
		return &readCloser{Reader: zr, closers: []func() error{closeZstd, f.Close}}, nil
	default:
		return f, nil
	}
}

package storageutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/luxxxlucy/epost/internal/errorutil"
)

const compressedSuffix = ".lz4"

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

type ReadSizeCloser interface {
	io.Reader
	io.Closer
	Size() int64
}

// ObjectHandler provides common interface for multiple storage providers.
type ObjectHandler interface {
	// Put writes a file to the storage provider with name being the path.
	// Nothing is visible under name before the returned writer is closed.
	Put(ctx context.Context, name string) (io.WriteCloser, error)
	// Get reads a file from the storage provider with name being the path.
	// If a key was not found, it will return ErrObjectNotFound.
	Get(ctx context.Context, name string) (ReadSizeCloser, error)
}

// Aborter is implemented by writers able to drop what was written to them
// instead of committing it.
type Aborter interface {
	Abort() error
}

// IsCompressed reports whether an object is stored lz4 compressed.
func IsCompressed(name string) bool {
	return strings.HasSuffix(name, compressedSuffix)
}

type compressedReader struct {
	*lz4.Reader
	io.Closer
	size int64
}

func (r compressedReader) Size() int64 {
	return r.size
}

// NewReader opens an object for reading, decompressing it if needed. Size
// reports the stored size of the object.
func NewReader(ctx context.Context, b ObjectHandler, name string) (ReadSizeCloser, error) {
	or, err := b.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", errorutil.ErrIO, name, err)
	}
	if !IsCompressed(name) {
		return or, nil
	}
	return compressedReader{
		Reader: lz4.NewReader(or),
		Closer: or,
		size:   or.Size(),
	}, nil
}

// WriteBlocks writes blocks back to back into a single object, compressing
// them if needed. The object is only committed if every write succeeded.
func WriteBlocks(ctx context.Context, b ObjectHandler, name string, blocks []string) error {
	ow, err := b.Put(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", errorutil.ErrIO, name, err)
	}
	if err := writeBlocks(ow, name, blocks); err != nil {
		if a, ok := ow.(Aborter); ok {
			_ = a.Abort()
		}
		return fmt.Errorf("%w: writing %s: %w", errorutil.ErrIO, name, err)
	}
	if err := ow.Close(); err != nil {
		return fmt.Errorf("%w: writing %s: %w", errorutil.ErrIO, name, err)
	}
	return nil
}

func writeBlocks(ow io.Writer, name string, blocks []string) error {
	var zw *lz4.Writer
	w := ow
	if IsCompressed(name) {
		zw = lz4.NewWriter(ow)
		_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
		w = zw
	}
	bw := bufio.NewWriter(w)
	for _, block := range blocks {
		if _, err := bw.WriteString(block); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

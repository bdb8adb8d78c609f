package storageprovider

import (
	"context"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/luxxxlucy/epost/internal/storageutil"

	// drivers reachable through Open
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Blob implements storageutil.ObjectHandler interface on top of any gocloud bucket.
type Blob struct {
	Bucket *blob.Bucket
}

// Put writes a file to the storage provider with name being the path.
func (b *Blob) Put(ctx context.Context, name string) (io.WriteCloser, error) {
	ctx, cancel := context.WithCancel(ctx)
	w, err := b.Bucket.NewWriter(ctx, name, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	return &blobWriter{Writer: w, cancel: cancel}, nil
}

// Get reads a file from the storage provider with name being the path.
// If a key was not found, it will return ErrObjectNotFound.
func (b *Blob) Get(ctx context.Context, name string) (storageutil.ReadSizeCloser, error) {
	r, err := b.Bucket.NewReader(ctx, name, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, storageutil.ErrObjectNotFound
		}
		return nil, err
	}
	return r, nil
}

type blobWriter struct {
	*blob.Writer
	cancel context.CancelFunc
}

func (w *blobWriter) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

func (w *blobWriter) Abort() error {
	w.cancel()
	_ = w.Writer.Close()
	return nil
}

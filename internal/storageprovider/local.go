package storageprovider

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/luxxxlucy/epost/internal/storageutil"
)

// Local implements storageutil.ObjectHandler interface for files under Root.
// Writes go to a temporary file renamed over the destination on Close.
type Local struct {
	Root string
}

// Put writes a file to the storage provider with name being the path.
func (l *Local) Put(_ context.Context, name string) (io.WriteCloser, error) {
	f, err := renameio.NewPendingFile(
		filepath.Join(l.Root, name),
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return nil, err
	}
	return &localWriter{f: f}, nil
}

// Get reads a file from the storage provider with name being the path.
// If a key was not found, it will return ErrObjectNotFound.
func (l *Local) Get(_ context.Context, name string) (storageutil.ReadSizeCloser, error) {
	f, err := os.Open(filepath.Join(l.Root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storageutil.ErrObjectNotFound
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "open", Path: f.Name(), Err: errors.New("is a directory")}
	}
	return &localReader{File: f, size: fi.Size()}, nil
}

// localWriter implements io.WriteCloser and storageutil.Aborter
type localWriter struct {
	f *renameio.PendingFile
}

func (w *localWriter) Write(b []byte) (int, error) {
	return w.f.Write(b)
}

func (w *localWriter) Close() error {
	return w.f.CloseAtomicallyReplace()
}

func (w *localWriter) Abort() error {
	return w.f.Cleanup()
}

// localReader implements storageutil.ReadSizeCloser
type localReader struct {
	*os.File
	size int64
}

func (r *localReader) Size() int64 {
	return r.size
}

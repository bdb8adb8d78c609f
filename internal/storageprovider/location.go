package storageprovider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"gocloud.dev/blob"

	"github.com/luxxxlucy/epost/internal/storageutil"
)

// Location is a single object and the handler able to read and write it.
type Location struct {
	Handler storageutil.ObjectHandler
	Key     string

	close func() error
}

// Close releases the clients opened for the location.
func (l *Location) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// Open resolves a location string. "gs://bucket/object" goes through the
// Cloud Storage client, any other URL through the matching gocloud blob
// driver, and anything else is a path on the local filesystem.
func Open(ctx context.Context, location string) (*Location, error) {
	if !strings.Contains(location, "://") {
		return &Location{
			Handler: &Local{Root: filepath.Dir(location)},
			Key:     filepath.Base(location),
		}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", location, err)
	}
	if _, key := path.Split(u.Path); key == "" {
		return nil, fmt.Errorf("location %q has no object name", location)
	}

	if u.Scheme == "gs" {
		if u.Host == "" {
			return nil, fmt.Errorf("location %q has no bucket", location)
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return &Location{
			Handler: &Gcs{BucketHandle: client.Bucket(u.Host)},
			Key:     strings.TrimPrefix(u.Path, "/"),
			close:   client.Close,
		}, nil
	}

	bucketURL, objectKey, err := splitBlobURL(u)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", location, err)
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Location{
		Handler: &Blob{Bucket: bucket},
		Key:     objectKey,
		close:   bucket.Close,
	}, nil
}

// splitBlobURL returns the bucket URL and the object key of a gocloud blob
// location. Only fileblob maps the URL path to a directory; memblob has no
// bucket name, and other drivers take the bucket from the host and the key
// from the whole path.
func splitBlobURL(u *url.URL) (string, string, error) {
	dir, key := path.Split(u.Path)
	switch u.Scheme {
	case "file":
		bucketURL := *u
		bucketURL.Path = dir
		return bucketURL.String(), key, nil
	case "mem":
		objectKey := strings.TrimPrefix(u.Path, "/")
		if u.Host != "" {
			objectKey = u.Host + "/" + objectKey
		}
		bucketURL := "mem://"
		if u.RawQuery != "" {
			bucketURL += "?" + u.RawQuery
		}
		return bucketURL, objectKey, nil
	}
	if u.Host == "" {
		return "", "", errors.New("no bucket")
	}
	bucketURL := *u
	bucketURL.Path = ""
	bucketURL.RawPath = ""
	return bucketURL.String(), strings.TrimPrefix(u.Path, "/"), nil
}

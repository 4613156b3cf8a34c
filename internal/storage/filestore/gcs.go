package filestore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/go-faster/errors"
	"google.golang.org/api/option"

	"github.com/xenking/sales-api/internal/domain/invoice"
)

var _ invoice.FileStore = (*GCS)(nil)

// GCS stores files as objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCS connects to bucket. Without a credentials file the client uses
// Application Default Credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create gcs client")
	}

	return &GCS{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
	}, nil
}

// Open streams the object stored under key.
func (g *GCS) Open(ctx context.Context, key string) (*invoice.Blob, error) {
	rd, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, invoice.ErrFileNotFound
		}
		return nil, errors.Wrapf(err, "read gs://%s/%s", g.name, key)
	}
	return &invoice.Blob{Body: rd, Size: rd.Attrs.Size}, nil
}

// Put uploads r as a PDF object under key. A failed read aborts the upload,
// leaving any previous object under key untouched.
func (g *GCS) Put(ctx context.Context, key string, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = "application/pdf"
	return upload(w, cancel, r, "gs://"+g.name+"/"+key)
}

// upload copies r into w and commits it with Close. On a copy error the
// write is aborted through abort instead; closing a storage.Writer would
// finalize the partial object.
func upload(w io.WriteCloser, abort context.CancelFunc, r io.Reader, dst string) error {
	if _, err := io.Copy(w, r); err != nil {
		abort()
		return errors.Wrapf(err, "upload %s", dst)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "finalize %s", dst)
	}
	return nil
}

// Check verifies the bucket exists and is accessible.
func (g *GCS) Check(ctx context.Context) error {
	if _, err := g.bucket.Attrs(ctx); err != nil {
		return errors.Wrapf(err, "gcs bucket %q not accessible", g.name)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSCovers resolves cover objects against a public bucket, verifying the
// object exists before handing out its URL.
type GCSCovers struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSCovers(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSCovers, error) {
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSCovers{client: c, bucket: bucket, prefix: "covers/"}, nil
}

func (g *GCSCovers) Close() error { return g.client.Close() }

func (g *GCSCovers) Resolve(ctx context.Context, objectName string) (string, error) {
	obj := g.client.Bucket(g.bucket).Object(g.prefix + objectName)
	if _, err := obj.Attrs(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s%s", g.bucket, g.prefix, objectName), nil
}

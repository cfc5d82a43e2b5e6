// internal/adapters/out/gcs/product_image_gcs.go
package gcs

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// ProductImageGCS issues V4 signed GET URLs for product images stored in a
// private GCS bucket. Implements query.ImageURLResolver.
type ProductImageGCS struct {
	Client *storage.Client
	Bucket string

	// ExpiresIn bounds the signed URL lifetime (default 15m).
	ExpiresIn time.Duration
}

func NewProductImageGCS(client *storage.Client, bucket string) *ProductImageGCS {
	return &ProductImageGCS{Client: client, Bucket: strings.TrimSpace(bucket)}
}

func (r *ProductImageGCS) ResolveURL(_ context.Context, objectName string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("product_image_gcs: storage client is nil")
	}

	bucket := strings.TrimSpace(r.Bucket)
	obj := strings.TrimSpace(objectName)
	if bucket == "" {
		return "", errors.New("product_image_gcs: bucket not configured (set PRODUCT_IMAGE_BUCKET)")
	}
	if obj == "" {
		return "", errors.New("product_image_gcs: object name is empty")
	}

	expires := r.ExpiresIn
	if expires <= 0 {
		expires = 15 * time.Minute
	}

	u, err := r.Client.Bucket(bucket).SignedURL(obj, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().UTC().Add(expires),
	})
	if err != nil {
		return "", err
	}
	return u, nil
}

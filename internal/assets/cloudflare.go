package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/logger"
)

// CloudflareImagesAPI is the slice of the Cloudflare SDK used by the
// asset store, extracted for testing
type CloudflareImagesAPI interface {
	UploadImage(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UploadImageParams) (cloudflare.Image, error)
}

// cfStore uploads assets to Cloudflare Images
type cfStore struct {
	api CloudflareImagesAPI
	rc  *cloudflare.ResourceContainer
}

// NewCloudflareStore creates a store uploading to the Cloudflare
// Images account
func NewCloudflareStore(accountID, apiToken string) (Store, error) {
	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare client: %w", err)
	}
	return newCloudflareStore(api, accountID), nil
}

func newCloudflareStore(api CloudflareImagesAPI, accountID string) Store {
	return &cfStore{
		api: api,
		rc: &cloudflare.ResourceContainer{
			Level:      cloudflare.AccountRouteLevel,
			Identifier: accountID,
		},
	}
}

func (s *cfStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	var image cloudflare.Image

	// Uploads are retried on transient API failures; the payloads are
	// small so re-reading from memory is fine.
	operation := func() error {
		params := cloudflare.UploadImageParams{
			File: io.NopCloser(bytes.NewReader(data)),
			Name: name,
			Metadata: map[string]interface{}{
				"content_type": contentType,
			},
		}

		var err error
		image, err = s.api.UploadImage(ctx, s.rc, params)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)); err != nil {
		return "", fmt.Errorf("failed to upload image to cloudflare: %w", err)
	}

	if len(image.Variants) == 0 {
		return "", fmt.Errorf("cloudflare upload for %s returned no variants", name)
	}

	logger.InfoCtx(ctx, "Uploaded asset to Cloudflare Images",
		zap.String("name", name),
		zap.String("image_id", image.ID),
	)
	return image.Variants[0], nil
}

package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudflare/cloudflare-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStore_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pets")
	s := NewFilesystemStore(dir, "https://petpad.xyz/pets/")

	url, err := s.Put(context.Background(), "launch-1.svg", []byte("<svg/>"), "image/svg+xml")
	require.NoError(t, err)
	assert.Equal(t, "https://petpad.xyz/pets/launch-1.svg", url)

	data, err := os.ReadFile(filepath.Join(dir, "launch-1.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

type fakeImagesAPI struct {
	failures int
	calls    int
	image    cloudflare.Image
}

func (f *fakeImagesAPI) UploadImage(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UploadImageParams) (cloudflare.Image, error) {
	f.calls++
	if f.calls <= f.failures {
		return cloudflare.Image{}, errors.New("upstream unavailable")
	}
	return f.image, nil
}

func TestCloudflareStore_Put(t *testing.T) {
	api := &fakeImagesAPI{
		image: cloudflare.Image{
			ID:       "img-1",
			Variants: []string{"https://imagedelivery.net/acct/img-1/public"},
		},
	}
	s := newCloudflareStore(api, "acct")

	url, err := s.Put(context.Background(), "launch-1.svg", []byte("<svg/>"), "image/svg+xml")
	require.NoError(t, err)
	assert.Equal(t, "https://imagedelivery.net/acct/img-1/public", url)
	assert.Equal(t, 1, api.calls)
}

func TestCloudflareStore_PutRetriesTransientFailures(t *testing.T) {
	api := &fakeImagesAPI{
		failures: 2,
		image: cloudflare.Image{
			ID:       "img-2",
			Variants: []string{"https://imagedelivery.net/acct/img-2/public"},
		},
	}
	s := newCloudflareStore(api, "acct")

	url, err := s.Put(context.Background(), "launch-2.svg", []byte("<svg/>"), "image/svg+xml")
	require.NoError(t, err)
	assert.Equal(t, "https://imagedelivery.net/acct/img-2/public", url)
	assert.Equal(t, 3, api.calls)
}

func TestCloudflareStore_PutNoVariants(t *testing.T) {
	api := &fakeImagesAPI{image: cloudflare.Image{ID: "img-3"}}
	s := newCloudflareStore(api, "acct")

	_, err := s.Put(context.Background(), "launch-3.svg", []byte("<svg/>"), "image/svg+xml")
	assert.Error(t, err)
}

package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts []*s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateLogoAcceptsPNG(t *testing.T) {
	contentType, err := ValidateLogo(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
}

func TestValidateLogoRejectsNonImage(t *testing.T) {
	_, err := ValidateLogo([]byte("<html>not an image</html>"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestValidateLogoRejectsOversize(t *testing.T) {
	big := make([]byte, MaxLogoSize+1)
	_, err := ValidateLogo(big)
	assert.ErrorIs(t, err, ErrLogoTooLarge)
}

func TestUploadReturnsPublicURL(t *testing.T) {
	fake := &fakeS3{}
	store := NewLogoStoreWithClient(fake, "logos", "https://cdn.mifmarket.fr/")

	url, err := store.Upload(context.Background(), "producers/ferme-a.png", pngBytes(t))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.mifmarket.fr/producers/ferme-a.png", url)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "logos", *fake.puts[0].Bucket)
	assert.Equal(t, "producers/ferme-a.png", *fake.puts[0].Key)
	assert.Equal(t, "image/png", *fake.puts[0].ContentType)
}

func TestUploadRejectsInvalidBeforeS3(t *testing.T) {
	fake := &fakeS3{}
	store := NewLogoStoreWithClient(fake, "logos", "https://cdn.mifmarket.fr")

	_, err := store.Upload(context.Background(), "bad.txt", []byte("plain text"))
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Empty(t, fake.puts, "invalid upload must not reach the bucket")
}

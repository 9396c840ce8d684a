package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example/flyers/a.png", joinPublicURL("https://cdn.example", "flyers/a.png"))
	assert.Equal(t, "https://cdn.example/club/flyers/a.png", joinPublicURL("https://cdn.example/club/", "/flyers/a.png"))
	assert.Empty(t, joinPublicURL("", "a.png"))
	assert.Empty(t, joinPublicURL("https://cdn.example", ""))
}

func TestMemoryUploader(t *testing.T) {
	ctx := context.Background()
	u := NewMemoryUploader("https://cdn.example")

	res, err := u.Upload(ctx, "flyers/t1.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/flyers/t1.png", res.Location)

	obj, ok := u.Object("flyers/t1.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("png-bytes"), obj.Data)

	require.NoError(t, u.Delete(ctx, "flyers/t1.png"))
	assert.ErrorIs(t, u.Delete(ctx, "flyers/t1.png"), ErrObjectNotFound)
}

func TestR2UploaderRequiresFullConfig(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{BucketName: "flyers"})
	assert.Error(t, err)
}

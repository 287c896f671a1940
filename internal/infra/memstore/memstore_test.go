package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/bizverify/internal/domain/session"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", first.ID)
	assert.Equal(t, domain.UserID, first.UserID)

	again, err := s.GetOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestGetOrCreateGeneratesID(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	b, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSaveVersionsAndLoadLatest(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := domain.ArtifactKey{Kind: domain.KindReport, Name: "website_content"}

	v1, err := s.Save(ctx, "sess-1", key, []byte("first"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	v2, err := s.Save(ctx, "sess-1", key, []byte("second"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, 2, v2)

	got, err := s.Load(ctx, "sess-1", key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got.Data)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "text/plain", got.MIMEType)
}

func TestSaveCopiesData(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := domain.ArtifactKey{Kind: domain.KindStreetView, Name: "streetview_0_0_1.jpeg"}

	buf := []byte("image-bytes")
	_, err := s.Save(ctx, "sess-1", key, buf, "image/jpeg")
	require.NoError(t, err)
	buf[0] = 'X'

	got, err := s.Load(ctx, "sess-1", key)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), got.Data)
}

func TestLoadMissingArtifact(t *testing.T) {
	s := New()

	_, err := s.Load(context.Background(), "sess-1", domain.ArtifactKey{Kind: domain.KindReport, Name: "nope"})
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestListReturnsDistinctKeys(t *testing.T) {
	s := New()
	ctx := context.Background()

	k1 := domain.ArtifactKey{Kind: domain.KindReport, Name: "website_content"}
	k2 := domain.ArtifactKey{Kind: domain.KindStreetView, Name: "streetview_90_0_1.jpeg"}
	_, err := s.Save(ctx, "sess-1", k1, []byte("a"), "text/plain")
	require.NoError(t, err)
	_, err = s.Save(ctx, "sess-1", k1, []byte("b"), "text/plain")
	require.NoError(t, err)
	_, err = s.Save(ctx, "sess-1", k2, []byte("c"), "image/jpeg")
	require.NoError(t, err)

	keys, err := s.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ArtifactKey{k1, k2}, keys)
}

package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"social-campaign-backend/internal/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	puts      []*s3.PutObjectInput
	deletes   []*s3.DeleteObjectInput
	headOut   *s3.HeadObjectOutput
	headErr   error
	deleteErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, f.deleteErr
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return f.headOut, f.headErr
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()

	t.Run("Should put objects into the configured bucket", func(t *testing.T) {
		fake := &fakeS3{}
		store := NewS3Store(fake, "assets", zap.NewNop())
		require.NoError(t, store.Put(ctx, "t1/brands/b1/assets/a1/logo.png", strings.NewReader("png"), 3, "image/png"))

		require.Len(t, fake.puts, 1)
		in := fake.puts[0]
		assert.Equal(t, "assets", aws.ToString(in.Bucket))
		assert.Equal(t, "t1/brands/b1/assets/a1/logo.png", aws.ToString(in.Key))
		assert.Equal(t, int64(3), aws.ToInt64(in.ContentLength))
		assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	})

	t.Run("Should describe existing objects", func(t *testing.T) {
		modified := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		fake := &fakeS3{headOut: &s3.HeadObjectOutput{
			ContentLength: aws.Int64(42),
			ContentType:   aws.String("application/pdf"),
			ETag:          aws.String(`"abc"`),
			LastModified:  &modified,
		}}
		info, err := NewS3Store(fake, "assets", zap.NewNop()).Head(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(42), info.Size)
		assert.Equal(t, "application/pdf", info.ContentType)
		assert.Equal(t, modified, info.LastModified)
	})

	t.Run("Should map missing objects to ErrObjectNotFound", func(t *testing.T) {
		for _, headErr := range []error{
			&types.NotFound{},
			&smithy.GenericAPIError{Code: "NotFound"},
		} {
			fake := &fakeS3{headErr: headErr}
			_, err := NewS3Store(fake, "assets", zap.NewNop()).Head(ctx, "k")
			assert.ErrorIs(t, err, ports.ErrObjectNotFound)
		}
	})

	t.Run("Should treat deleting a missing object as success", func(t *testing.T) {
		fake := &fakeS3{deleteErr: &types.NoSuchKey{}}
		assert.NoError(t, NewS3Store(fake, "assets", zap.NewNop()).Delete(ctx, "k"))

		fake = &fakeS3{deleteErr: errors.New("access denied")}
		assert.Error(t, NewS3Store(fake, "assets", zap.NewNop()).Delete(ctx, "k"))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("Should store, describe and delete objects", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "k", strings.NewReader("hello"), 5, "text/plain"))
		info, err := store.Head(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(5), info.Size)
		assert.Equal(t, []byte("hello"), store.Bytes("k"))

		require.NoError(t, store.Delete(ctx, "k"))
		require.NoError(t, store.Delete(ctx, "k"))
		_, err = store.Head(ctx, "k")
		assert.ErrorIs(t, err, ports.ErrObjectNotFound)
	})

	t.Run("Should reject short bodies", func(t *testing.T) {
		err := store.Put(ctx, "k", io.LimitReader(strings.NewReader("hello"), 2), 5, "text/plain")
		assert.Error(t, err)
		assert.Nil(t, store.Bytes("k"))
	})
}

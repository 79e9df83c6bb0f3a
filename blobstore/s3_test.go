package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	mock.Mock
	uploaded []byte
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.uploaded = data
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (m *mockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (m *mockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (m *mockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func TestS3Store_Open(t *testing.T) {
	client := new(mockS3Client)
	store := NewS3Store(client, "vectors", "dumps")

	t.Run("NotFound", func(t *testing.T) {
		client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
			return *in.Bucket == "vectors" && *in.Key == "dumps/missing.csv"
		})).Return(nil, &types.NoSuchKey{}).Once()

		_, err := store.Open(context.Background(), "missing.csv")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
			return *in.Key == "dumps/data.csv"
		})).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(bytes.NewReader([]byte("a;b;c;d;[1,2]\n"))),
		}, nil).Once()

		r, err := store.Open(context.Background(), "data.csv")
		require.NoError(t, err)
		defer r.Close()

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "a;b;c;d;[1,2]\n", string(got))
	})

	client.AssertExpectations(t)
}

func TestS3Store_Create(t *testing.T) {
	client := new(mockS3Client)
	store := NewS3Store(client, "vectors", "")

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "vectors" && *in.Key == "index.usearch"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	w, err := store.Create(context.Background(), "index.usearch")
	require.NoError(t, err)

	_, err = w.Write([]byte("VLIX"))
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "VLIXpayload", string(client.uploaded))
	client.AssertExpectations(t)
}

func TestS3Store_CreateUploadError(t *testing.T) {
	client := new(mockS3Client)
	store := NewS3Store(client, "vectors", "")

	boom := errors.New("access denied")
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, boom).Once()

	w, err := store.Create(context.Background(), "index.usearch")
	require.NoError(t, err)
	_, _ = w.Write([]byte("data"))

	assert.Error(t, w.Close())
}

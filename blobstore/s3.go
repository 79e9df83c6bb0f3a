// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blobstore

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

// S3Client is the subset of the S3 API the store uses.
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store implements Store for Amazon S3.
type S3Store struct {
	client   S3Client
	bucket   string
	prefix   string
	partSize int64
}

// NewS3Store creates an S3 store. rootPrefix is prepended to every object name.
func NewS3Store(client S3Client, bucket, rootPrefix string) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   bucket,
		prefix:   rootPrefix,
		partSize: 8 * 1024 * 1024,
	}
}

func (s *S3Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open streams the whole object.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// Create starts a streaming multipart upload fed through a pipe.
func (s *S3Store) Create(ctx context.Context, name string) (WritableBlob, error) {
	uploader := manager.NewUploader(s.client, func(u *manager.Uploader) {
		u.PartSize = s.partSize
		u.LeavePartsOnError = false
	})

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   pr,
	}
	g.Go(func() error {
		_, err := uploader.Upload(gctx, input)
		// Unblock any pending Write once the upload has ended.
		_ = pr.CloseWithError(err)
		return err
	})

	return &pipeWritableBlob{pw: pw, wait: g.Wait}, nil
}

// pipeWritableBlob feeds a background upload. Close waits for the upload to
// finish; Abort fails the pipe so the upload is cancelled.
type pipeWritableBlob struct {
	pw      *io.PipeWriter
	wait    func() error
	closed  bool
	aborted bool
}

func (b *pipeWritableBlob) Write(p []byte) (int, error) {
	if b.closed {
		return 0, io.ErrClosedPipe
	}
	return b.pw.Write(p)
}

func (b *pipeWritableBlob) Close() error {
	if b.aborted {
		return ErrAborted
	}
	if b.closed {
		return io.ErrClosedPipe
	}
	b.closed = true
	if err := b.pw.Close(); err != nil {
		return err
	}
	return b.wait()
}

func (b *pipeWritableBlob) Abort() error {
	if b.aborted || b.closed {
		b.aborted = true
		return nil
	}
	b.aborted = true
	b.closed = true
	_ = b.pw.CloseWithError(ErrAborted)
	// The upload fails with the pipe error; nothing was committed.
	_ = b.wait()
	return nil
}

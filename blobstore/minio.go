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
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
)

// MinIOStore implements Store for MinIO and other S3-compatible servers.
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOStore creates a MinIO store. rootPrefix is prepended to every object name.
func NewMinIOStore(client *minio.Client, bucket, rootPrefix string) *MinIOStore {
	return &MinIOStore{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *MinIOStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object first so a missing object fails here rather than on
// the first Read.
func (s *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMinIONotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isMinIONotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return obj, nil
}

// Create streams an upload of unknown size through a pipe.
func (s *MinIOStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	key := s.key(name)
	pr, pw := io.Pipe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.client.PutObject(gctx, s.bucket, key, pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		_ = pr.CloseWithError(err)
		return err
	})

	return &pipeWritableBlob{pw: pw, wait: g.Wait}, nil
}

func isMinIONotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

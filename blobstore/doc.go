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

// Package blobstore provides the byte-level storage used for vecload inputs and
// index artifacts.
//
// A Store hands out fresh readers on every Open, so callers can make more than one
// pass over the same object, and atomic writers from Create: the object appears only
// when Close succeeds, and Abort discards everything written so far.
//
// Backends:
//   - LocalStore: a directory on the local filesystem (temp file + rename)
//   - S3Store: Amazon S3 through aws-sdk-go-v2, streamed multipart uploads
//   - MinIOStore: MinIO or any S3-compatible endpoint through minio-go
//   - MemoryStore: in-process map, for tests
//
// Resolve maps a user-supplied location (a path, s3://bucket/key or
// minio://bucket/key) to a Store and an object name.
package blobstore

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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Scheme identifies the backend a location refers to.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinIO Scheme = "minio"
)

// Location is a parsed storage location.
type Location struct {
	Scheme Scheme
	Bucket string // empty for SchemeFile
	Key    string // object key, or the file path for SchemeFile
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return string(l.Scheme) + "://" + l.Bucket + "/" + l.Key
}

// S3Options configures the S3 backend. Credentials come from the AWS default chain.
type S3Options struct {
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// MinIOOptions configures the MinIO backend. When AccessKey is empty the
// credentials are taken from the MINIO_* or AWS_* environment variables.
type MinIOOptions struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Options holds backend settings used by Resolve.
type Options struct {
	S3    S3Options    `toml:"s3"`
	MinIO MinIOOptions `toml:"minio"`
}

// ParseLocation splits a location into scheme, bucket and key.
// Strings without "://" and file:// URIs are local paths.
func ParseLocation(location string) (Location, error) {
	if location == "" {
		return Location{}, fmt.Errorf("%w: empty location", ErrInvalidLocation)
	}

	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Key: location}, nil
	}

	switch Scheme(strings.ToLower(scheme)) {
	case SchemeFile:
		if rest == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrInvalidLocation, location)
		}
		return Location{Scheme: SchemeFile, Key: rest}, nil
	case SchemeS3, SchemeMinIO:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %s needs a bucket and a key", ErrInvalidLocation, location)
		}
		return Location{Scheme: Scheme(strings.ToLower(scheme)), Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocation, scheme)
	}
}

// Resolve returns the Store holding location and the object name within it.
func Resolve(ctx context.Context, location string, opts Options) (Store, string, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, "", err
	}

	switch loc.Scheme {
	case SchemeS3:
		client, err := newS3Client(ctx, opts.S3)
		if err != nil {
			return nil, "", err
		}
		return NewS3Store(client, loc.Bucket, ""), loc.Key, nil
	case SchemeMinIO:
		client, err := newMinIOClient(opts.MinIO)
		if err != nil {
			return nil, "", err
		}
		return NewMinIOStore(client, loc.Bucket, ""), loc.Key, nil
	default:
		return NewLocalStore(filepath.Dir(loc.Key)), filepath.Base(loc.Key), nil
	}
}

func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

func newMinIOClient(opts MinIOOptions) (*minio.Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint is not configured", ErrInvalidLocation)
	}

	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvMinio{},
		&credentials.EnvAWS{},
	})
	if opts.AccessKey != "" {
		creds = credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, "")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

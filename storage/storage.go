// Copyright 2023 The tap-vnstock Authors

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage reads and writes the tap's side files - config, catalog
// and state - from the local filesystem or from S3. A path starting with
// "s3://" is treated as an S3 object URI; anything else as a local path.
package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stockparfait/errors"
)

const s3Prefix = "s3://"

// IsS3 reports whether the path refers to an S3 object.
func IsS3(path string) bool {
	return strings.HasPrefix(path, s3Prefix)
}

// ParseS3 splits an s3://bucket/key URI into bucket and key.
func ParseS3(path string) (bucket, key string, err error) {
	if !IsS3(path) {
		return "", "", errors.Reason("not an S3 URI: '%s'", path)
	}
	rest := strings.TrimPrefix(path, s3Prefix)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", errors.Reason(
			"S3 URI must be s3://bucket/key, got '%s'", path)
	}
	return bucket, key, nil
}

// s3API is the S3 client subset used here, for stubbing in tests.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newS3Client creates the production S3 client; overridden in tests.
var newS3Client = func(ctx context.Context) (s3API, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load AWS config")
	}
	return s3.NewFromConfig(cfg), nil
}

// ReadFile reads the entire file at the local path or S3 URI.
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	if !IsS3(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read '%s'", path)
		}
		return data, nil
	}
	bucket, key, err := ParseS3(path)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Annotate(err, "failed to get '%s'", path)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read body of '%s'", path)
	}
	return data, nil
}

// WriteFile writes data to the local path or S3 URI.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if !IsS3(path) {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Annotate(err, "failed to write '%s'", path)
		}
		return nil
	}
	bucket, key, err := ParseS3(path)
	if err != nil {
		return err
	}
	client, err := newS3Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return errors.Annotate(err, "failed to put '%s'", path)
	}
	return nil
}

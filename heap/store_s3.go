/*
Copyright (C) 2026  The RefPerSys-Go Authors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package heap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config names an S3-compatible bucket a heap directory can live in
// (schema straight from storage/persistence-s3.go's S3Factory, narrowed
// to the fields a whole-file Store needs).
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	Prefix          string
	ForcePathStyle  bool
}

// S3Store implements Store against an S3-compatible bucket. There is no
// server-side rename, so Rename copies then deletes the source key.
type S3Store struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

func NewS3Store(cfg S3Config) *S3Store { return &S3Store{cfg: cfg} }

func (s *S3Store) ensureClient(ctx context.Context) (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if s.cfg.Region != "" {
		opts = append(opts, config.WithRegion(s.cfg.Region))
	}
	if s.cfg.AccessKeyID != "" && s.cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("heap: loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if s.cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(s.cfg.Endpoint) })
	}
	if s.cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}
	s.client = s3.NewFromConfig(awsCfg, s3Opts...)
	return s.client, nil
}

func (s *S3Store) key(path string) string {
	pfx := strings.TrimSuffix(s.cfg.Prefix, "/")
	if pfx == "" {
		return path
	}
	return pfx + "/" + path
}

func (s *S3Store) ReadFile(ctx context.Context, path string) ([]byte, error) {
	cl, err := s.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := cl.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.cfg.Bucket), Key: aws.String(s.key(path))})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3Store) WriteFile(ctx context.Context, path string, data []byte) error {
	cl, err := s.ensureClient(ctx)
	if err != nil {
		return err
	}
	_, err = cl.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket), Key: aws.String(s.key(path)), Body: bytes.NewReader(data),
	})
	return err
}

// Rename copies the source object onto newPath then deletes oldPath:
// there is no native S3 rename.
func (s *S3Store) Rename(ctx context.Context, oldPath, newPath string) error {
	cl, err := s.ensureClient(ctx)
	if err != nil {
		return err
	}
	src := s.cfg.Bucket + "/" + s.key(oldPath)
	_, err = cl.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket: aws.String(s.cfg.Bucket), Key: aws.String(s.key(newPath)), CopySource: aws.String(src),
	})
	if err != nil {
		return err
	}
	return s.Remove(ctx, oldPath)
}

func (s *S3Store) List(ctx context.Context, dir string) ([]string, error) {
	cl, err := s.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	prefix := s.key(dir)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var names []string
	var token *string
	for {
		resp, err := cl.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.cfg.Bucket), Prefix: aws.String(prefix), ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range resp.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
		if resp.IsTruncated == nil || !*resp.IsTruncated {
			break
		}
		token = resp.NextContinuationToken
	}
	return names, nil
}

// MkdirAll is a no-op: S3 has no directories, only key prefixes.
func (s *S3Store) MkdirAll(ctx context.Context, dir string) error { return nil }

func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	cl, err := s.ensureClient(ctx)
	if err != nil {
		return false, err
	}
	_, err = cl.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.cfg.Bucket), Key: aws.String(s.key(path))})
	if err == nil {
		return true, nil
	}
	if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
		return false, nil
	}
	return false, err
}

func (s *S3Store) Remove(ctx context.Context, path string) error {
	cl, err := s.ensureClient(ctx)
	if err != nil {
		return err
	}
	_, err = cl.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.cfg.Bucket), Key: aws.String(s.key(path))})
	return err
}

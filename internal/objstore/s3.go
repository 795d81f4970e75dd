/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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

package objstore

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

	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/dklog"
)

// s3Store is the s3:// backend, grounded on storage/persistence-s3.go's
// client construction, paginated listing, and range-get calls.
type s3Store struct {
	bucket string
	prefix string
	opts   Options

	mu     sync.Mutex
	client *s3.Client
	opened bool
}

func newS3Store(p ParsedUri, opts Options) *s3Store {
	bucket := opts.Bucket
	prefix := p.Root
	if bucket == "" {
		// no explicit bucket configured: treat the first path segment of
		// the uri root as the bucket name, matching how s3://bucket/key
		// is conventionally split.
		parts := strings.SplitN(p.Root, "/", 2)
		bucket = parts[0]
		if len(parts) == 2 {
			prefix = parts[1]
		} else {
			prefix = ""
		}
	}
	return &s3Store{bucket: bucket, prefix: strings.TrimSuffix(prefix, "/"), opts: opts}
}

func (s *s3Store) ensureOpen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}

	var cfgOpts []func(*config.LoadOptions) error
	if s.opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(s.opts.Region))
	}
	if s.opts.Profile != "" {
		cfgOpts = append(cfgOpts, config.WithSharedConfigProfile(s.opts.Profile))
	}
	if s.opts.AccessKeyID != "" && s.opts.SecretAccessKey != "" {
		cfgOpts = append(cfgOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.opts.AccessKeyID, s.opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return dkerr.Wrap(dkerr.KindStoreError, "load aws config", err)
	}

	var s3Opts []func(*s3.Options)
	if s.opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s.opts.Endpoint)
		})
	}
	if s.opts.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	s.client = s3.NewFromConfig(cfg, s3Opts...)
	s.opened = true
	return nil
}

func (s *s3Store) key(location string) string {
	if s.prefix == "" {
		return location
	}
	return s.prefix + "/" + strings.TrimPrefix(location, "/")
}

func (s *s3Store) ListRecursive(ctx context.Context, prefix string) <-chan ListItem {
	out := make(chan ListItem)
	log := dklog.WithComponent("objstore.s3")
	go func() {
		defer close(out)
		if err := s.ensureOpen(ctx); err != nil {
			out <- ListItem{Err: err}
			return
		}
		listPrefix := s.key(prefix)
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(listPrefix),
		})
		basePrefix := s.prefix
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				log.Warn().Err(err).Str("prefix", listPrefix).Msg("list_recursive failed")
				out <- ListItem{Err: dkerr.Wrap(dkerr.KindStoreError, "list "+listPrefix, err)}
				return
			}
			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				if strings.HasSuffix(key, "/") {
					continue // directory marker
				}
				rel := key
				if basePrefix != "" {
					rel = strings.TrimPrefix(strings.TrimPrefix(key, basePrefix), "/")
				}
				meta := ObjectMeta{Location: rel, Size: aws.ToInt64(obj.Size)}
				if obj.LastModified != nil {
					meta.ModTime = *obj.LastModified
				}
				select {
				case out <- ListItem{Meta: meta}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (s *s3Store) Get(ctx context.Context, location string) ([]byte, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(location)),
	})
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get "+location, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get "+location, err)
	}
	return data, nil
}

func (s *s3Store) Head(ctx context.Context, location string) (ObjectMeta, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return ObjectMeta{}, err
	}
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(location)),
	})
	if err != nil {
		return ObjectMeta{}, dkerr.Wrap(dkerr.KindStoreError, "head "+location, err)
	}
	meta := ObjectMeta{Location: location, Size: aws.ToInt64(resp.ContentLength)}
	if resp.LastModified != nil {
		meta.ModTime = *resp.LastModified
	}
	return meta, nil
}

func (s *s3Store) GetRange(ctx context.Context, location string, start, end int64) ([]byte, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}
	rangeHeader := fmt.Sprintf("bytes=%d-%d", start, end-1)
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(location)),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get_range "+location, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get_range "+location, err)
	}
	return buf.Bytes(), nil
}

// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package s3 provides a pdk.Store which keeps cached datasets as objects in
// an S3 bucket, and a pdk.Source which replays them.
package s3

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

const ext = ".json"

// Store is a pdk.Store backed by S3. The value for key lives in the object
// <prefix><key>.json.
type Store struct {
	bucket string
	prefix string
	s3     s3iface.S3API
}

// NewStore gets a Store using the default credential chain for region.
func NewStore(region, bucket, prefix string) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting new session")
	}
	return NewStoreWithClient(s3.New(sess), bucket, prefix), nil
}

// NewStoreWithClient gets a Store using an existing S3 client.
func NewStoreWithClient(client s3iface.S3API, bucket, prefix string) *Store {
	return &Store{
		bucket: bucket,
		prefix: prefix,
		s3:     client,
	}
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key + ext
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// Has implements pdk.Store.
func (s *Store) Has(key string) (bool, error) {
	_, err := s.s3.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "heading %s", s.objectKey(key))
}

// Get implements pdk.Store.
func (s *Store) Get(key string, v interface{}) error {
	r, err := s.reader(s.objectKey(key))
	if isNotFound(errors.Cause(err)) {
		return errors.Wrap(pdk.ErrNotFound, key)
	} else if err != nil {
		return err
	}
	defer r.Close()
	return errors.Wrapf(json.NewDecoder(r).Decode(v), "decoding %s", key)
}

func (s *Store) reader(objKey string) (*objReader, error) {
	result, err := s.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objKey),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", objKey)
	}
	return &objReader{name: objKey, body: result.Body}, nil
}

// Put implements pdk.Store.
func (s *Store) Put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	_, err = s.s3.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return errors.Wrapf(err, "putting %s", s.objectKey(key))
}

// Keys lists the keys in the store in lexical order.
func (s *Store) Keys() ([]string, error) {
	keys := make([]string, 0)
	err := s.s3.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}, func(out *s3.ListObjectsV2Output, last bool) bool {
		for _, obj := range out.Contents {
			k := aws.StringValue(obj.Key)
			if !strings.HasSuffix(k, ext) {
				continue
			}
			keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(k, s.prefix), ext))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements pdk.Store.
func (s *Store) Close() error { return nil }

// Source is a pdk.Source which replays cached datasets stored in S3.
type Source struct {
	rs      *RawSource
	records chan *pdk.Page
	errors  chan error
}

// NewSource gets a Source over the given keys of store. If no keys are given
// every key in the store is replayed.
func NewSource(store *Store, keys ...string) (*Source, error) {
	if len(keys) == 0 {
		var err error
		keys, err = store.Keys()
		if err != nil {
			return nil, errors.Wrap(err, "getting keys")
		}
	}
	idx := uint64(0)
	s := &Source{
		rs:      &RawSource{store: store, keys: keys, keyIdx: &idx},
		records: make(chan *pdk.Page, 100),
		errors:  make(chan error),
	}
	go s.populateRecords()
	return s, nil
}

func (s *Source) populateRecords() {
	var err error
	var reader pdk.NamedReadCloser
	for reader, err = s.rs.NextReader(); err == nil; reader, err = s.rs.NextReader() {
		pages, derr := pdk.DecodePages(reader)
		reader.Close()
		if derr != nil {
			err = errors.Wrapf(derr, "decoding %s", reader.Name())
			break
		}
		for _, p := range pages {
			s.records <- p
		}
	}
	if err != io.EOF {
		s.errors <- errors.Wrap(err, "getting next object")
	}
	close(s.errors)
	close(s.records)
}

// Record implements pdk.Source.
func (s *Source) Record() (*pdk.Page, error) {
	select {
	case rec, ok := <-s.records:
		if ok {
			return rec, nil
		}
		err, ok := <-s.errors
		if !ok {
			return nil, io.EOF
		}
		return nil, err
	case err, ok := <-s.errors:
		if ok {
			return nil, err
		}
		rec, ok := <-s.records
		if !ok {
			return nil, io.EOF
		}
		return rec, nil
	}
}

// RawSource hands out a reader per key.
type RawSource struct {
	store  *Store
	keys   []string
	keyIdx *uint64
}

type objReader struct {
	name string
	body io.ReadCloser
}

func (o *objReader) Read(buf []byte) (n int, err error) {
	return o.body.Read(buf)
}

func (o *objReader) Close() error {
	return o.body.Close()
}

func (o *objReader) Name() string {
	return o.name
}

// NextReader returns a reader for the next key's object, or io.EOF.
func (rs *RawSource) NextReader() (pdk.NamedReadCloser, error) {
	idx := atomic.AddUint64(rs.keyIdx, 1) - 1
	if int(idx) >= len(rs.keys) {
		return nil, io.EOF
	}
	return rs.store.reader(rs.store.objectKey(rs.keys[idx]))
}

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

package s3_test

import (
	"context"
	"fmt"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/aws/s3"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *awss3.GetObjectInput, opts ...request.Option) (*awss3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, awserr.New(awss3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &awss3.GetObjectOutput{Body: ioutil.NopCloser(strings.NewReader(body))}, nil
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		key    string
		err    bool
	}{
		{in: "s3://nyc-tlc/trip data/yellow_tripdata_2016-01.csv", bucket: "nyc-tlc", key: "trip data/yellow_tripdata_2016-01.csv"},
		{in: "s3://bucket/a/b.csv", bucket: "bucket", key: "a/b.csv"},
		{in: "s3://bucket", err: true},
		{in: "s3:///key", err: true},
		{in: "https://bucket/key", err: true},
	}
	for i, tst := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			bucket, key, err := s3.ParseLocation(tst.in)
			if tst.err {
				if err == nil {
					t.Fatalf("expected error for %s", tst.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsing %s: %v", tst.in, err)
			}
			if bucket != tst.bucket || key != tst.key {
				t.Fatalf("got %s and %s", bucket, key)
			}
		})
	}
}

func TestOpener(t *testing.T) {
	o := &s3.Opener{Client: &fakeS3{objects: map[string]string{"bucket/trips.csv": "a,b\n1,2\n"}}}
	rc, err := o.Open(context.Background(), "s3://bucket/trips.csv")
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	defer rc.Close()
	bs, err := ioutil.ReadAll(rc)
	if err != nil || string(bs) != "a,b\n1,2\n" {
		t.Fatalf("reading: %s, %v", bs, err)
	}

	_, err = o.Open(context.Background(), "s3://bucket/missing.csv")
	if nyctaxi.KindOf(err) != nyctaxi.KindSourceUnreadable {
		t.Fatalf("expected SourceUnreadable, got %v", err)
	}
	if !strings.Contains(err.Error(), awss3.ErrCodeNoSuchKey) {
		t.Fatalf("error doesn't name the aws code: %v", err)
	}
	if !s3.IsLocation("s3://x/y") || s3.IsLocation("x/y") {
		t.Fatalf("IsLocation is wrong")
	}
}

package s3api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/go-mizu/blueprints/s3emu/config"
	"github.com/go-mizu/blueprints/s3emu/internal/website"
)

// newTestServer starts a Server on an ephemeral localhost port and returns
// an AWS SDK v2 client pointed at it plus a cleanup func.
func newTestServer(t *testing.T) (*s3.Client, *Server) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Resolve(config.Defaults(), config.Options{Directory: dir, CORSDisabled: false})

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("TESTKEY", "TESTSECRET", "")),
		awsconfig.WithBaseEndpoint(ts.URL),
	)
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return client, srv
}

func TestPutThenHead(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	mustCreateBucket(t, client, "b")

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("b"),
		Key:    aws.String("text"),
		Body:   bytes.NewReader([]byte("Hello!")),
	})
	if err != nil {
		t.Fatalf("put object: %v", err)
	}

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String("b"), Key: aws.String("text")})
	if err != nil {
		t.Fatalf("head object: %v", err)
	}
	if head.ContentLength == nil || *head.ContentLength != 6 {
		t.Fatalf("expected content-length 6, got %v", head.ContentLength)
	}
	if head.ETag == nil || *head.ETag != `"952d2c56d0485958336747bcdd98590d"` {
		t.Fatalf("unexpected etag %v", head.ETag)
	}
}

func TestRangeRead(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)
	mustCreateBucket(t, client, "b")

	body := bytes.Repeat([]byte("x"), 64*1024)
	_, err := client.PutObject(ctx, &s3.PutObjectInput{Bucket: aws.String("b"), Key: aws.String("image"), Body: bytes.NewReader(body)})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String("b"), Key: aws.String("image"), Range: aws.String("bytes=0-99")})
	if err != nil {
		t.Fatalf("ranged get: %v", err)
	}
	defer resp.Body.Close()

	got, _ := io.ReadAll(resp.Body)
	if len(got) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(got))
	}
	if resp.ContentRange == nil || *resp.ContentRange != "bytes 0-99/65536" {
		t.Fatalf("unexpected content-range %v", resp.ContentRange)
	}
}

func TestCopyPreservesMetadata(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)
	mustCreateBucket(t, client, "b")

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String("b"),
		Key:         aws.String("src"),
		Body:        bytes.NewReader([]byte("data")),
		ContentType: aws.String("image/jpeg"),
		Metadata:    map[string]string{"somekey": "value"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	_, err = client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String("b"),
		Key:        aws.String("dst"),
		CopySource: aws.String("b/src"),
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String("b"), Key: aws.String("dst")})
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType == nil || *head.ContentType != "image/jpeg" {
		t.Fatalf("expected content-type image/jpeg, got %v", head.ContentType)
	}
	if head.Metadata["somekey"] != "value" {
		t.Fatalf("expected metadata preserved, got %v", head.Metadata)
	}
}

func TestBucketNotEmpty(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)
	mustCreateBucket(t, client, "b")

	for i := 0; i < 20; i++ {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String("b"),
			Key:    aws.String(keyName(i)),
			Body:   bytes.NewReader([]byte("x")),
		})
		if err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	_, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String("b")})
	if err == nil {
		t.Fatalf("expected BucketNotEmpty")
	}
}

func TestStaticWebsite(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestServer(t)
	mustCreateBucket(t, client, "site")

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String("site"),
		Key:         aws.String("index.html"),
		Body:        bytes.NewReader([]byte("<h1>hi</h1>")),
		ContentType: aws.String("text/html"),
	})
	if err != nil {
		t.Fatalf("put index: %v", err)
	}

	srv.bucketMu.Lock()
	srv.website["site"] = &website.Config{IndexDocument: "index.html"}
	srv.bucketMu.Unlock()

	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/site/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "<h1>hi</h1>" {
		t.Fatalf("got status=%d body=%q", resp.StatusCode, body)
	}

	resp2, err := http.Get(ts.URL + "/site/missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp2.StatusCode)
	}
	if ct := resp2.Header.Get("Content-Type"); ct == "" {
		t.Fatalf("expected a content-type on 404 body")
	}
}

func TestListWithDelimiter(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)
	mustCreateBucket(t, client, "b")

	keys := []string{"akey1", "akey2", "akey3", "key/key1", "key1", "key2", "key3"}
	for _, k := range keys {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{Bucket: aws.String("b"), Key: aws.String(k), Body: bytes.NewReader([]byte("x"))})
		if err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String("b"), Delimiter: aws.String("/")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Contents) != 6 {
		t.Fatalf("expected 6 contents, got %d", len(out.Contents))
	}
	foundPrefix := false
	for _, p := range out.CommonPrefixes {
		if aws.ToString(p.Prefix) == "key/" {
			foundPrefix = true
		}
	}
	if !foundPrefix {
		t.Fatalf("expected common prefix key/, got %v", out.CommonPrefixes)
	}
}

func TestDeleteObjectsIdempotent(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)
	mustCreateBucket(t, client, "b")

	out, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String("b"),
		Delete: &types.Delete{Objects: []types.ObjectIdentifier{{Key: aws.String("missing")}}},
	})
	if err != nil {
		t.Fatalf("delete objects: %v", err)
	}
	if len(out.Deleted) != 1 {
		t.Fatalf("expected missing key reported Deleted, got %+v", out)
	}
}

func TestMultipartUploadLifecycle(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)
	mustCreateBucket(t, client, "b")

	create, err := client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{Bucket: aws.String("b"), Key: aws.String("big")})
	if err != nil {
		t.Fatalf("create multipart: %v", err)
	}

	part1, err := client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket: aws.String("b"), Key: aws.String("big"), UploadId: create.UploadId,
		PartNumber: aws.Int32(1), Body: bytes.NewReader(bytes.Repeat([]byte("a"), 1024)),
	})
	if err != nil {
		t.Fatalf("upload part 1: %v", err)
	}
	part2, err := client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket: aws.String("b"), Key: aws.String("big"), UploadId: create.UploadId,
		PartNumber: aws.Int32(2), Body: bytes.NewReader([]byte("tail")),
	})
	if err != nil {
		t.Fatalf("upload part 2: %v", err)
	}

	_, err = client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket: aws.String("b"), Key: aws.String("big"), UploadId: create.UploadId,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: []types.CompletedPart{
			{PartNumber: aws.Int32(1), ETag: part1.ETag},
			{PartNumber: aws.Int32(2), ETag: part2.ETag},
		}},
	})
	if err != nil {
		t.Fatalf("complete multipart: %v", err)
	}

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String("b"), Key: aws.String("big")})
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	want := int64(1024 + 4)
	if head.ContentLength == nil || *head.ContentLength != want {
		t.Fatalf("expected size %d, got %v", want, head.ContentLength)
	}
}

func mustCreateBucket(t *testing.T, client *s3.Client, name string) {
	t.Helper()
	_, err := client.CreateBucket(context.Background(), &s3.CreateBucketInput{Bucket: aws.String(name)})
	if err != nil {
		t.Fatalf("create bucket %s: %v", name, err)
	}
}

func keyName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "key-0" + string(digits[i])
	}
	return "key-" + string(digits[i/10]) + string(digits[i%10])
}

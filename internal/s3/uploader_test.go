package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestUploadPhoto_DetectsContentType(t *testing.T) {
	fake := &fakePutter{}
	u := &Uploader{Client: fake, Bucket: "photos", Region: "eu-west-3"}

	url, err := u.UploadPhoto(context.Background(), "abc", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if got := *fake.input.ContentType; got != "image/png" {
		t.Errorf("content type = %q, want image/png", got)
	}
	key := *fake.input.Key
	if !strings.HasPrefix(key, "assets/abc/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}
	if url != "https://photos.s3.eu-west-3.amazonaws.com/"+key {
		t.Errorf("unexpected url %q", url)
	}
	if !bytes.Equal(fake.body, pngHeader) {
		t.Error("uploaded body differs from input")
	}
}

func TestUploadPhoto_Rejections(t *testing.T) {
	u := &Uploader{Client: &fakePutter{}, Bucket: "photos", Region: "eu-west-3"}

	if _, err := u.UploadPhoto(context.Background(), "abc", strings.NewReader("plain text")); !errors.Is(err, ErrNotImage) {
		t.Errorf("text upload: got %v, want ErrNotImage", err)
	}

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxPhotoSize)...)
	if _, err := u.UploadPhoto(context.Background(), "abc", bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("large upload: got %v, want ErrTooLarge", err)
	}
}

func TestURL_PrefersCloudFront(t *testing.T) {
	u := &Uploader{Bucket: "photos", Region: "eu-west-3", CloudFrontDomain: "cdn.edc.cm"}
	if got := u.URL("assets/a.png"); got != "https://cdn.edc.cm/assets/a.png" {
		t.Errorf("URL = %q", got)
	}
}

// Package storage keeps listing image bytes outside the relational
// database.  MySQL only holds the object id returned by an ImageStore.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an object id does not exist.
var ErrNotFound = errors.New("object not found")

// ErrUnsupportedType is returned by Sniff for anything but JPEG, PNG or
// WebP.
var ErrUnsupportedType = errors.New("unsupported image type")

// ImageStore stores opaque image objects.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (objectID string, size int64, err error)
	Open(ctx context.Context, objectID string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectID string) error
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Sniff detects the content type from the first bytes of r and returns a
// reader that still yields the whole stream.  The client supplied
// Content-Type is never trusted.
func Sniff(r io.Reader) (contentType string, body io.Reader, err error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, err
	}
	if len(head) == 0 {
		return "", nil, ErrUnsupportedType
	}
	ct := http.DetectContentType(head)
	if _, ok := extensions[ct]; !ok {
		return ct, nil, ErrUnsupportedType
	}
	return ct, br, nil
}

// ObjectName builds "<owner>/<uuid>.<ext>" for an upload.
func ObjectName(ownerID uint64, contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("%d/%s.%s", ownerID, uuid.NewString(), ext)
}

// CleanFilename keeps the base name of an uploaded file, cut to the
// 255 characters the images table stores.
func CleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if r := []rune(name); len(r) > 255 {
		name = string(r[:255])
	}
	return name
}

// LimitedReader fails with ErrTooLarge once more than n bytes are read.
type LimitedReader struct {
	R io.Reader
	N int64
}

// ErrTooLarge is returned by LimitedReader.
var ErrTooLarge = errors.New("object exceeds size limit")

func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.N < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.N+1 {
		p = p[:l.N+1]
	}
	n, err := l.R.Read(p)
	l.N -= int64(n)
	if l.N < 0 {
		return n, ErrTooLarge
	}
	return n, err
}

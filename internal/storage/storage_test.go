package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSniff(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2000)...)
	ct, body, err := Sniff(bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	all, _ := io.ReadAll(body)
	if !bytes.Equal(all, payload) {
		t.Error("sniffing must not consume the stream")
	}

	if _, _, err := Sniff(strings.NewReader("%PDF-1.7 not an image")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("pdf err = %v", err)
	}
	if _, _, err := Sniff(strings.NewReader("")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("empty err = %v", err)
	}
}

func TestObjectName(t *testing.T) {
	name := ObjectName(42, "image/webp")
	if !regexp.MustCompile(`^42/[0-9a-f-]{36}\.webp$`).MatchString(name) {
		t.Errorf("ObjectName = %q", name)
	}
	if ObjectName(1, "image/png") == ObjectName(1, "image/png") {
		t.Error("names must be unique")
	}
}

func TestCleanFilename(t *testing.T) {
	cases := map[string]string{
		"nyumba.jpg":                "nyumba.jpg",
		"../../etc/passwd":          "passwd",
		`C:\Users\asha\sebule.png`: "sebule.png",
	}
	for in, want := range cases {
		if got := CleanFilename(in); got != want {
			t.Errorf("CleanFilename(%q) = %q; want %q", in, got, want)
		}
	}
	if got := CleanFilename(strings.Repeat("ñ", 300) + ".png"); len([]rune(got)) != 255 {
		t.Errorf("long name kept %d runes", len([]rune(got)))
	}
}

func TestLimitedReader(t *testing.T) {
	lr := &LimitedReader{R: strings.NewReader("12345"), N: 5}
	if b, err := io.ReadAll(lr); err != nil || string(b) != "12345" {
		t.Errorf("exact size: %q %v", b, err)
	}
	lr = &LimitedReader{R: strings.NewReader("123456"), N: 5}
	if _, err := io.ReadAll(lr); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversize err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	id, n, err := m.Put(ctx, "a.png", "image/png", bytes.NewReader(pngHeader))
	if err != nil || n != int64(len(pngHeader)) {
		t.Fatalf("put: %d %v", n, err)
	}
	rc, err := m.Open(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(b, pngHeader) {
		t.Error("round trip mismatch")
	}
	_ = m.Delete(ctx, id)
	if _, err := m.Open(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v", err)
	}
}

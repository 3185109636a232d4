package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildFileHeader 通过真实的 multipart 编解码构造 FileHeader
func buildFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}

	files := req.MultipartForm.File["image"]
	if len(files) != 1 {
		t.Fatalf("expected one file, got %d", len(files))
	}
	return files[0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLocalStoreSavesImage(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/static/uploads/")

	file := buildFileHeader(t, "photo.png", "image/png", pngBytes(t, 10, 10))

	url, err := store.Upload(context.Background(), file)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "/static/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one saved file, got %d", len(entries))
	}
	if filepath.Base(url) != entries[0].Name() {
		t.Fatalf("url %q does not point at saved file %q", url, entries[0].Name())
	}
}

func TestLocalStoreShrinksOversizedImage(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/static/uploads")

	file := buildFileHeader(t, "wide.png", "image/png", pngBytes(t, maxRasterWidth*2, 100))

	url, err := store.Upload(context.Background(), file)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(saved))
	if err != nil {
		t.Fatalf("decode saved file: %v", err)
	}
	if img.Bounds().Dx() != maxRasterWidth {
		t.Fatalf("expected width %d after shrink, got %d", maxRasterWidth, img.Bounds().Dx())
	}
}

func TestLocalStoreRejectsNonImage(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/static/uploads")

	file := buildFileHeader(t, "notes.txt", "text/plain", []byte("hello"))

	if _, err := store.Upload(context.Background(), file); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

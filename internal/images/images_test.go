package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "png", data: pngBytes(t, 4, 3)},
		{name: "single byte padding", data: append(pngBytes(t, 1, 1), 0x00)},
		{name: "binary noise", data: append(pngBytes(t, 2, 2), 0xff, 0xfe, 0x00, 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := NewInput(tt.data, "image/png", "x.png", 0)
			if err != nil {
				t.Fatalf("NewInput: %v", err)
			}

			payload, err := Encode(in)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if payload.MIMEType != "image/png" {
				t.Errorf("MIMEType = %q, want image/png", payload.MIMEType)
			}

			decoded, err := Decode(payload)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Error("decoded bytes differ from original")
			}
		})
	}
}

func TestNewInputValidation(t *testing.T) {
	data := pngBytes(t, 2, 2)

	tests := []struct {
		name     string
		data     []byte
		mimeType string
		maxBytes int64
		wantType string
		wantErr  bool
	}{
		{name: "declared png", data: data, mimeType: "image/png", wantType: "image/png"},
		{name: "jpg alias", data: data, mimeType: "image/JPG", wantType: "image/jpeg"},
		{name: "sniffed when missing", data: data, mimeType: "", wantType: "image/png"},
		{name: "sniffed when generic", data: data, mimeType: "application/octet-stream", wantType: "image/png"},
		{name: "pdf rejected", data: data, mimeType: "application/pdf", wantErr: true},
		{name: "text rejected", data: []byte("hello"), mimeType: "", wantErr: true},
		{name: "empty rejected", data: nil, mimeType: "image/png", wantErr: true},
		{name: "too large", data: data, mimeType: "image/png", maxBytes: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := NewInput(tt.data, tt.mimeType, "f", tt.maxBytes)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.MIMEType != tt.wantType {
				t.Errorf("MIMEType = %q, want %q", in.MIMEType, tt.wantType)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReadInput(t *testing.T) {
	data := pngBytes(t, 3, 3)

	in, err := ReadInput(bytes.NewReader(data), "image/png", "a.png", 0)
	if err != nil {
		t.Fatalf("ReadInput: %v", err)
	}
	if in.Size() != int64(len(data)) {
		t.Errorf("Size = %d, want %d", in.Size(), len(data))
	}

	_, err = ReadInput(bytes.NewReader(data), "image/png", "a.png", int64(len(data)-1))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for oversized input, got %v", err)
	}
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	_, err = ReadInput(failingReader{}, "image/png", "a.png", 0)
	var eerr *EncodingError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	if !strings.Contains(eerr.Error(), "could not read the selected file") {
		t.Errorf("unexpected message: %s", eerr.Error())
	}
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	var eerr *EncodingError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
}

func TestDataURL(t *testing.T) {
	p := Payload{Data: "QUJD", MIMEType: "image/webp"}
	if got := p.DataURL(); got != "data:image/webp;base64,QUJD" {
		t.Errorf("DataURL = %q", got)
	}
}

func TestDimensions(t *testing.T) {
	in, err := NewInput(pngBytes(t, 7, 5), "image/png", "d.png", 0)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	w, h, err := Dimensions(in)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 7 || h != 5 {
		t.Errorf("Dimensions = %dx%d, want 7x5", w, h)
	}
}

func TestFetcherFetch(t *testing.T) {
	data := pngBytes(t, 2, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewFetcher(0)
	f.AllowPrivate = true

	in, err := f.Fetch(context.Background(), server.URL+"/page.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if in.Filename != "page.png" {
		t.Errorf("Filename = %q, want page.png", in.Filename)
	}
	if !bytes.Equal(in.Data, data) {
		t.Error("fetched bytes differ")
	}

	_, err = f.Fetch(context.Background(), server.URL+"/missing.png")
	var eerr *EncodingError
	if !errors.As(err, &eerr) {
		t.Errorf("expected EncodingError for 404, got %v", err)
	}
}

func TestFetcherRejectsInternalHosts(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes(t, 1, 1))
	}))
	defer server.Close()

	localhost := strings.Replace(server.URL, "127.0.0.1", "localhost", 1)
	f := NewFetcher(0)

	for _, u := range []string{
		server.URL + "/page.png",
		localhost + "/page.png",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.7/scan.png",
		"http://[::1]/scan.png",
		"http://0.0.0.0/scan.png",
	} {
		_, err := f.Fetch(context.Background(), u)
		if !errors.Is(err, ErrForbiddenHost) {
			t.Errorf("Fetch(%q) = %v, want ErrForbiddenHost", u, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Fetch(%q) should be a ValidationError, got %T", u, err)
		}
	}
	if hits != 0 {
		t.Errorf("internal server was contacted %d times", hits)
	}
}

func TestFetcherRejectsOtherSchemes(t *testing.T) {
	f := NewFetcher(0)
	f.AllowPrivate = true
	for _, u := range []string{"file:///etc/passwd", "ftp://example.org/scan.png", "gopher://example.org/", "scan.png", "http:///scan.png"} {
		_, err := f.Fetch(context.Background(), u)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Fetch(%q) = %v, want ValidationError", u, err)
		}
	}
}

func TestTypeForFilename(t *testing.T) {
	tests := map[string]string{
		"scan.PNG":      "image/png",
		"photo.jpg":     "image/jpeg",
		"iphone.heic":   "image/heic",
		"notes.txt":     "",
		"no-extension":  "",
		"dir/page.webp": "image/webp",
	}
	for name, want := range tests {
		if got := TypeForFilename(name); got != want {
			t.Errorf("TypeForFilename(%q) = %q, want %q", name, got, want)
		}
	}
}

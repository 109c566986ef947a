package storage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var publicPathPattern = regexp.MustCompile(`^/uploads/donations/[0-9a-f]{32}(\.[a-z]+)?$`)

func newLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return l
}

func TestSaveDonationImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{"jpeg", "photo.jpg", ".jpg"},
		{"upper case extension", "PHOTO.PNG", ".png"},
		{"no extension", "photo", ""},
		{"path in filename", "../../etc/photo.webp", ".webp"},
		{"script extension dropped", "run.sh", ""},
		{"html extension dropped", "page.html", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newLocal(t)

			got, err := l.SaveDonationImage(tt.filename, strings.NewReader("image-bytes"))
			if err != nil {
				t.Fatalf("SaveDonationImage: %v", err)
			}
			if !publicPathPattern.MatchString(got) {
				t.Fatalf("unexpected public path %q", got)
			}
			if filepath.Ext(got) != tt.wantExt {
				t.Errorf("ext = %q, want %q", filepath.Ext(got), tt.wantExt)
			}

			onDisk := filepath.Join(l.Root(), filepath.FromSlash(strings.TrimPrefix(got, PublicPrefix)))
			data, err := os.ReadFile(onDisk)
			if err != nil {
				t.Fatalf("read stored file: %v", err)
			}
			if string(data) != "image-bytes" {
				t.Errorf("stored content = %q", data)
			}
		})
	}
}

func TestSaveDonationImage_UniqueNames(t *testing.T) {
	t.Parallel()
	l := newLocal(t)

	a, err := l.SaveDonationImage("a.jpg", strings.NewReader("a"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.SaveDonationImage("a.jpg", strings.NewReader("b"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("expected distinct names, both %q", a)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	l := newLocal(t)

	p, err := l.SaveDonationImage("a.png", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Remove(p); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	onDisk := filepath.Join(l.Root(), filepath.FromSlash(strings.TrimPrefix(p, PublicPrefix)))
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}

	// Removing twice or removing foreign paths is a no-op.
	for _, p := range []string{p, "", "/etc/passwd", "/uploads/../../secret"} {
		if err := l.Remove(p); err != nil {
			t.Errorf("Remove(%q) = %v", p, err)
		}
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()
	l := newLocal(t)

	p, err := l.SaveDonationImage("a.gif", strings.NewReader("GIF89a"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"stored file", p, http.StatusOK, "GIF89a"},
		{"missing file", "/uploads/donations/nope.gif", http.StatusNotFound, ""},
		{"directory listing", "/uploads/donations/", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			l.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" {
				body, _ := io.ReadAll(rec.Body)
				if string(body) != tt.body {
					t.Errorf("body = %q, want %q", body, tt.body)
				}
			}
		})
	}
}

package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/pkg/logger"
)

func TestProcessUnsupportedType(t *testing.T) {
	p := NewProcessor(logger.NewNop())

	_, err := p.Process(context.Background(), model.FileDescriptor{
		MIMEType: "text/csv",
		Path:     "/tmp/does-not-matter.csv",
	})
	if err == nil {
		t.Fatal("expected an error for an unsupported MIME type")
	}

	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedTypeError, got %T", err)
	}
	if unsupported.MIMEType != "text/csv" {
		t.Errorf("error carries MIME type %q, want text/csv", unsupported.MIMEType)
	}
}

func TestProcessImage(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	path := filepath.Join(t.TempDir(), "stage.png")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProcessor(logger.NewNop())
	payload, err := p.Process(context.Background(), model.FileDescriptor{
		MIMEType: "image/png",
		Path:     path,
	})
	if err != nil {
		t.Fatal(err)
	}

	if payload.Kind != KindImage {
		t.Errorf("kind = %q, want %q", payload.Kind, KindImage)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	if payload.DataURL != want {
		t.Errorf("data URL = %q, want %q", payload.DataURL, want)
	}
}

func TestProcessImageMissingFile(t *testing.T) {
	p := NewProcessor(logger.NewNop())

	_, err := p.Process(context.Background(), model.FileDescriptor{
		MIMEType: "image/jpeg",
		Path:     filepath.Join(t.TempDir(), "missing.jpg"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestProcessCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProcessor(logger.NewNop())
	_, err := p.Process(context.Background(), model.FileDescriptor{
		MIMEType: "application/pdf",
		Path:     path,
	})
	if err == nil {
		t.Fatal("expected an error for a corrupt PDF")
	}
}

// Package attachment converts uploaded files into payloads that can be
// attached to a conversation turn.
package attachment

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/pkg/logger"
	"github.com/venueworks/av-concierge/pkg/metrics"
)

// Kind is the normalized payload type.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Payload is the normalized result of processing one attachment.
type Payload struct {
	Kind Kind

	// DataURL is set for images: base64-encoded bytes wrapped as a data URL
	// carrying the original MIME type.
	DataURL string

	// Text and PageCount are set for documents.
	Text      string
	PageCount int
}

// UnsupportedTypeError reports an attachment whose MIME type is neither a
// PDF nor an image.
type UnsupportedTypeError struct {
	MIMEType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.MIMEType)
}

// Processor turns file descriptors into payloads.
type Processor struct {
	logger *logger.Logger
}

// NewProcessor creates a new attachment processor.
func NewProcessor(log *logger.Logger) *Processor {
	return &Processor{logger: log}
}

// Process reads the file named by the descriptor and produces a typed
// payload. Unsupported MIME types fail before any model call is issued;
// a corrupt PDF propagates as an error with no partial extraction.
func (p *Processor) Process(ctx context.Context, desc model.FileDescriptor) (*Payload, error) {
	mime := strings.ToLower(desc.MIMEType)

	switch {
	case strings.Contains(mime, "pdf"):
		payload, err := p.processPDF(desc.Path)
		if err != nil {
			metrics.AttachmentsProcessed.WithLabelValues(string(KindDocument), "error").Inc()
			return nil, err
		}
		metrics.AttachmentsProcessed.WithLabelValues(string(KindDocument), "success").Inc()
		p.logger.Info("processed document attachment",
			zap.String("path", desc.Path),
			zap.Int("pages", payload.PageCount),
			zap.Int("text_bytes", len(payload.Text)),
		)
		return payload, nil

	case strings.Contains(mime, "image"):
		payload, err := p.processImage(desc.Path, desc.MIMEType)
		if err != nil {
			metrics.AttachmentsProcessed.WithLabelValues(string(KindImage), "error").Inc()
			return nil, err
		}
		metrics.AttachmentsProcessed.WithLabelValues(string(KindImage), "success").Inc()
		p.logger.Info("processed image attachment",
			zap.String("path", desc.Path),
			zap.String("mime_type", desc.MIMEType),
			zap.Int("encoded_bytes", len(payload.DataURL)),
		)
		return payload, nil

	default:
		return nil, &UnsupportedTypeError{MIMEType: desc.MIMEType}
	}
}

func (p *Processor) processPDF(path string) (*Payload, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return nil, fmt.Errorf("failed to read PDF text: %w", err)
	}

	return &Payload{
		Kind:      KindDocument,
		Text:      buf.String(),
		PageCount: reader.NumPage(),
	}, nil
}

func (p *Processor) processImage(path, mimeType string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	return &Payload{
		Kind:    KindImage,
		DataURL: fmt.Sprintf("data:%s;base64,%s", mimeType, encoded),
	}, nil
}

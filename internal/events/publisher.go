// Package events publishes chat audit events to NATS JetStream. Publishing
// is best-effort: failures are logged and never fail the chat request.
package events

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/pkg/logger"
)

const (
	// StreamName is the name of the chat events stream.
	StreamName = "AV_CHAT"

	// SubjectPrefix is the prefix for all chat event subjects.
	SubjectPrefix = "avchat"
)

// Config holds NATS connection configuration.
type Config struct {
	URL      string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// ChatCompleted records one finished chat exchange.
type ChatCompleted struct {
	PropertyID       string    `json:"property_id"`
	FunctionCalls    int       `json:"function_calls"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	LatencyMs        int64     `json:"latency_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// Publisher wraps a NATS connection and JetStream context.
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect establishes a connection to the NATS server.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error("NATS error", zap.Error(err))
		}),
	}

	// Add TLS configuration if certificates are provided
	if cfg.CAFile != "" && cfg.CertFile != "" && cfg.KeyFile != "" {
		tlsConfig, err := createTLSConfig(cfg.CAFile, cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, nats.Secure(tlsConfig))
	}

	// Add token authentication if provided
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Publisher{
		conn:   nc,
		js:     js,
		logger: log,
	}, nil
}

// EnsureStream ensures the chat events stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	_, err := p.js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Chat completion audit events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// PublishChatCompleted publishes one completed-exchange event. Failures are
// logged only.
func (p *Publisher) PublishChatCompleted(ctx context.Context, ev *ChatCompleted) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal chat event", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.completed.%s", SubjectPrefix, ev.PropertyID)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.logger.Warn("failed to publish chat event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func createTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert: %w", err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

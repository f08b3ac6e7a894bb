package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/frame"
)

const (
	defaultReconnectDelay = 2 * time.Second
	maxMessageSize        = 64 << 20
)

// Subscriber reads frames from an upstream websocket topic.
type Subscriber struct {
	URL string

	// ReconnectDelay is the pause between connection attempts. Zero means
	// two seconds.
	ReconnectDelay time.Duration

	Dialer *websocket.Dialer
	Log    logrus.FieldLogger
}

// NewSubscriber creates a Subscriber for url with default settings.
func NewSubscriber(url string, log logrus.FieldLogger) *Subscriber {
	return &Subscriber{URL: url, Log: log}
}

// Subscribe connects to the topic and calls handler once per received frame,
// on a single goroutine, until ctx is done. It only returns when ctx ends.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(frame.Frame)) error {
	log := s.logger()
	delay := s.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	for {
		err := s.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).WithField("retry_in", delay.String()).Warn("Input connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// consume runs one connection until it fails or ctx ends.
func (s *Subscriber) consume(ctx context.Context, handler func(frame.Frame)) error {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", s.URL, err)
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	log := s.logger()
	log.WithField("url", s.URL).Info("Subscribed to input topic")

	// Unblock ReadMessage when the context ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		f, err := frame.Unmarshal(msg)
		if err != nil {
			log.WithError(err).Warn("Discarded undecodable message")
			continue
		}
		handler(f)
	}
}

func (s *Subscriber) logger() logrus.FieldLogger {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("component", "subscriber")
}

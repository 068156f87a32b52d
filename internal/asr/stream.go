package asr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benedict-dev/benedict/internal/audio"
)

// Source starts one transcription stream per press over the configured
// capture device.
type Source struct {
	client          *Client
	input           string
	fallback        string
	partialInterval time.Duration
	logger          *slog.Logger
}

// NewSource constructs a stream source from runtime config values.
func NewSource(client *Client, input, fallback string, partialInterval time.Duration, logger *slog.Logger) *Source {
	return &Source{
		client:          client,
		input:           input,
		fallback:        fallback,
		partialInterval: partialInterval,
		logger:          logger,
	}
}

// Start resolves the capture device, begins recording, and starts the interim
// transcription loop.
func (s *Source) Start(ctx context.Context) (*Stream, error) {
	selection, err := audio.SelectDevice(ctx, s.input, s.fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" && s.logger != nil {
		s.logger.Warn(selection.Warning)
	}

	capture, err := audio.StartCapture(ctx, selection.Device)
	if err != nil {
		return nil, err
	}

	stream := newStream(s.client, capture, s.partialInterval)
	stream.run()
	return stream, nil
}

// pcmCapture is the slice of audio.Capture the stream consumes.
type pcmCapture interface {
	Chunks() <-chan []byte
	Stop() error
	Device() audio.Device
	BytesCaptured() int64
}

// Stream accumulates PCM for one utterance and serves interim and final
// transcription requests against it.
type Stream struct {
	client          *Client
	capture         pcmCapture
	partialInterval time.Duration

	partials chan string
	stopCh   chan struct{}
	stopOnce sync.Once

	drainDone chan struct{}
	tickDone  chan struct{}

	mu  sync.Mutex
	pcm []byte
}

func newStream(client *Client, capture pcmCapture, partialInterval time.Duration) *Stream {
	return &Stream{
		client:          client,
		capture:         capture,
		partialInterval: partialInterval,
		partials:        make(chan string, 4),
		stopCh:          make(chan struct{}),
		drainDone:       make(chan struct{}),
		tickDone:        make(chan struct{}),
	}
}

func (s *Stream) run() {
	go s.drainLoop()
	go s.partialLoop()
}

// Partials returns the interim transcript channel. The channel is closed when
// the stream finishes.
func (s *Stream) Partials() <-chan string {
	return s.partials
}

// Device returns capture device metadata for logging.
func (s *Stream) Device() audio.Device {
	return s.capture.Device()
}

// BytesCaptured reports total PCM bytes accepted so far.
func (s *Stream) BytesCaptured() int64 {
	return s.capture.BytesCaptured()
}

// Stop ends capture and returns the final transcript for the full utterance.
func (s *Stream) Stop(ctx context.Context) (string, error) {
	s.finish()

	s.mu.Lock()
	pcm := append([]byte(nil), s.pcm...)
	s.mu.Unlock()

	if len(pcm) == 0 {
		return "", nil
	}

	text, err := s.client.Transcribe(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("final transcription: %w", err)
	}
	return text, nil
}

// Cancel ends capture and discards the utterance without a final request.
func (s *Stream) Cancel() {
	s.finish()
}

// finish stops capture and waits for both loops to drain exactly once.
func (s *Stream) finish() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		_ = s.capture.Stop()
		<-s.drainDone
		<-s.tickDone
	})
}

// drainLoop accumulates capture chunks until the chunk channel closes.
func (s *Stream) drainLoop() {
	defer close(s.drainDone)
	for chunk := range s.capture.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		s.mu.Lock()
		s.pcm = append(s.pcm, chunk...)
		s.mu.Unlock()
	}
}

// partialLoop periodically transcribes the accumulated PCM and emits interim
// text. Interim failures are silent; the final request decides the utterance.
func (s *Stream) partialLoop() {
	defer close(s.tickDone)
	defer close(s.partials)

	if s.partialInterval <= 0 {
		<-s.stopCh
		return
	}

	ticker := time.NewTicker(s.partialInterval)
	defer ticker.Stop()

	var lastLen int
	var lastText string
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		pcm := append([]byte(nil), s.pcm...)
		s.mu.Unlock()

		if len(pcm) == lastLen {
			continue
		}
		lastLen = len(pcm)

		ctx, cancel := context.WithTimeout(context.Background(), s.partialInterval*4)
		text, err := s.client.Transcribe(ctx, pcm)
		cancel()
		if err != nil {
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" || text == lastText {
			continue
		}
		lastText = text

		select {
		case s.partials <- text:
		default:
		}
	}
}

package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// SampleRate is the capture rate the transcription backend expects.
const SampleRate = 16000

// frameBytes is 20ms of 16kHz mono s16 audio.
const frameBytes = 640

// Capture records one utterance from a Pulse source and hands the PCM out as
// fixed-size frames on a channel.
type Capture struct {
	device Device
	client *pulse.Client
	stream *pulse.RecordStream

	frames chan []byte
	halted chan struct{}

	mu       sync.Mutex
	residual []byte
	taken    []byte
	closed   bool

	writers sync.WaitGroup
	total   atomic.Int64
}

// StartCapture opens a 16kHz mono s16 record stream on the selected device.
// Cancelling ctx stops the capture.
func StartCapture(ctx context.Context, selected Device) (*Capture, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	c := &Capture{
		device: selected,
		client: client,
		frames: make(chan []byte, 128),
		halted: make(chan struct{}),
	}

	stream, err := client.NewRecord(
		pulse.NewWriter(writerFunc(c.ingest), pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(frameBytes),
		pulse.RecordMediaName("benedict dictation"),
	)
	if err != nil {
		_ = c.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	c.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()

	return c, nil
}

// Device reports which source this capture records from.
func (c *Capture) Device() Device { return c.device }

// Chunks is the stream of captured PCM frames. It closes after Stop.
func (c *Capture) Chunks() <-chan []byte { return c.frames }

// BytesCaptured reports how much PCM Pulse has delivered so far.
func (c *Capture) BytesCaptured() int64 { return c.total.Load() }

// RawPCM snapshots every byte captured since the stream started.
func (c *Capture) RawPCM() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.taken...)
}

// Stop tears down the Pulse stream, flushes the residual partial frame, and
// closes Chunks. It is safe to call more than once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.halted)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	// No ingest call can be mid-flight once this returns.
	c.writers.Wait()

	c.mu.Lock()
	tail := c.residual
	c.residual = nil
	c.mu.Unlock()

	if len(tail) > 0 {
		select {
		case c.frames <- append([]byte(nil), tail...):
		default:
		}
	}

	close(c.frames)
	return nil
}

// Close is Stop without the error.
func (c *Capture) Close() { _ = c.Stop() }

// ingest accepts one buffer from Pulse, slices it into frameBytes frames, and
// forwards them. Returning io.EOF tells Pulse the stream is done.
func (c *Capture) ingest(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Register under the same lock that guards closed, so Stop cannot start
	// waiting between the check and the Add.
	c.writers.Add(1)
	c.taken = append(c.taken, buffer...)
	c.residual = append(c.residual, buffer...)

	var ready [][]byte
	for len(c.residual) >= frameBytes {
		ready = append(ready, append([]byte(nil), c.residual[:frameBytes]...))
		c.residual = c.residual[frameBytes:]
	}
	c.mu.Unlock()
	defer c.writers.Done()

	c.total.Add(int64(len(buffer)))

	for _, frame := range ready {
		select {
		case <-c.halted:
			return 0, io.EOF
		case c.frames <- frame:
		}
	}
	return len(buffer), nil
}

// writerFunc lets a method serve as the io.Writer pulse.NewWriter wants.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

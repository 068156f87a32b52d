package asr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benedict-dev/benedict/internal/audio"
	"github.com/stretchr/testify/require"
)

type fakeCapture struct {
	chunks chan []byte

	mu      sync.Mutex
	stopped bool
	bytes   int64
}

func newFakeCapture() *fakeCapture {
	return &fakeCapture{chunks: make(chan []byte, 16)}
}

func (f *fakeCapture) feed(chunk []byte) {
	f.mu.Lock()
	f.bytes += int64(len(chunk))
	f.mu.Unlock()
	f.chunks <- chunk
}

func (f *fakeCapture) Chunks() <-chan []byte { return f.chunks }

func (f *fakeCapture) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stopped {
		f.stopped = true
		close(f.chunks)
	}
	return nil
}

func (f *fakeCapture) Device() audio.Device {
	return audio.Device{ID: "fake", Description: "Fake Mic"}
}

func (f *fakeCapture) BytesCaptured() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytes
}

func transcribeServer(t *testing.T, reply func(wavLen int) string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		var n int
		buf := make([]byte, 4096)
		for {
			read, readErr := file.Read(buf)
			n += read
			if readErr != nil {
				break
			}
		}
		json.NewEncoder(w).Encode(inferenceResponse{Text: reply(n)})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStreamStopTranscribesAccumulatedPCM(t *testing.T) {
	server := transcribeServer(t, func(wavLen int) string {
		require.Equal(t, 44+8, wavLen)
		return "hello world"
	})

	capture := newFakeCapture()
	stream := newStream(NewClient(server.URL, 5*time.Second), capture, 0)
	stream.run()

	capture.feed([]byte{1, 2, 3, 4})
	capture.feed([]byte{5, 6, 7, 8})

	text, err := stream.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
	require.Equal(t, int64(8), stream.BytesCaptured())
	require.Equal(t, "fake", stream.Device().ID)

	_, ok := <-stream.Partials()
	require.False(t, ok)
}

func TestStreamStopWithNoAudioSkipsRequest(t *testing.T) {
	requested := false
	server := transcribeServer(t, func(int) string {
		requested = true
		return "unexpected"
	})

	capture := newFakeCapture()
	stream := newStream(NewClient(server.URL, time.Second), capture, 0)
	stream.run()

	text, err := stream.Stop(context.Background())
	require.NoError(t, err)
	require.Empty(t, text)
	require.False(t, requested)
}

func TestStreamEmitsPartials(t *testing.T) {
	server := transcribeServer(t, func(int) string { return "partial text" })

	capture := newFakeCapture()
	stream := newStream(NewClient(server.URL, 5*time.Second), capture, 10*time.Millisecond)
	stream.run()

	capture.feed([]byte{1, 2, 3, 4})

	select {
	case text := <-stream.Partials():
		require.Equal(t, "partial text", text)
	case <-time.After(2 * time.Second):
		t.Fatal("no partial emitted")
	}

	stream.Cancel()
	for range stream.Partials() {
	}
}

func TestStreamPartialsSuppressDuplicates(t *testing.T) {
	server := transcribeServer(t, func(int) string { return "same text" })

	capture := newFakeCapture()
	stream := newStream(NewClient(server.URL, 5*time.Second), capture, 10*time.Millisecond)
	stream.run()

	capture.feed([]byte{1, 2})
	<-stream.Partials()

	// More audio, same transcript: no second emission before cancel.
	capture.feed([]byte{3, 4})
	select {
	case text, ok := <-stream.Partials():
		if ok {
			t.Fatalf("unexpected duplicate partial %q", text)
		}
	case <-time.After(100 * time.Millisecond):
	}

	stream.Cancel()
}

func TestStreamCancelSkipsFinalRequest(t *testing.T) {
	requested := false
	server := transcribeServer(t, func(int) string {
		requested = true
		return "unexpected"
	})

	capture := newFakeCapture()
	stream := newStream(NewClient(server.URL, time.Second), capture, 0)
	stream.run()

	capture.feed([]byte{1, 2, 3, 4})
	stream.Cancel()
	require.False(t, requested)

	_, ok := <-stream.Partials()
	require.False(t, ok)
}

func TestStreamStopFinalFailureReturnsError(t *testing.T) {
	capture := newFakeCapture()
	stream := newStream(NewClient("http://127.0.0.1:1", time.Second), capture, 0)
	stream.run()

	capture.feed([]byte{1, 2, 3, 4})
	_, err := stream.Stop(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Serve answers clients on listener until ctx is cancelled or the listener
// closes. Each connection is handled on its own goroutine so a slow command
// never blocks the next one; Serve returns after in-flight handlers finish.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var inFlight sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				inFlight.Wait()
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		inFlight.Add(1)
		go func() {
			defer inFlight.Done()
			answer(ctx, conn, handler)
		}()
	}
}

// answer reads one request line from conn and writes one response line.
func answer(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()

	reply := func(resp Response) {
		_ = json.NewEncoder(conn).Encode(resp)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		reply(Response{OK: false, Error: fmt.Sprintf("read request: %v", scanner.Err())})
		return
	}

	var req Request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		reply(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	reply(handler.Handle(ctx, req))
}

// Package ipc carries session commands between benedict invocations over a
// unix socket. One process owns the socket and runs the session; every other
// invocation is a short-lived client that writes a single JSON request line
// and reads a single JSON response line.
package ipc

import "context"

// Request is one command line sent by a client invocation.
type Request struct {
	Command string `json:"command"`
	Arg     string `json:"arg,omitempty"`
}

// Response is the session owner's answer to a Request.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler answers requests on behalf of the running session.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Package kit holds small transport-agnostic building blocks: the
// Endpoint abstraction, middleware chaining, and MCP tool registration.
package kit

import "context"

// Endpoint is a transport-agnostic request handler. HTTP handlers and
// MCP tools both decode into a typed request and call an Endpoint.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first argument is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

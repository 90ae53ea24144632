// Package bridge converts asynchronous calls into the privileged
// backend into typed success/failure results. Errors surfaced by a
// background operation never escape this boundary as a panic or an
// unhandled error: callers receive a Result and decide what to do.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result is the discriminated outcome of a background operation.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the success value and the error, in the usual Go shape,
// for callers that want to branch with a plain if.
func (r Result[T]) Value() (T, error) {
	return r.value, r.err
}

// MustValue returns the success value and panics on a failed result.
// For tests and call sites that have already checked OK.
func (r Result[T]) MustValue() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}

// Unit is the result payload of operations that return nothing.
type Unit struct{}

// Call invokes op and captures its outcome. A returned error becomes
// Err, and a panic inside op is recovered into Err as well, so no
// failure mode propagates past the bridge. Call is generic over the
// operation's input and output; every named operation goes through it
// rather than duplicating the capture logic.
func Call[I, O any](ctx context.Context, op func(context.Context, I) (O, error), in I) (result Result[O]) {
	defer func() {
		if r := recover(); r != nil {
			result = Err[O](fmt.Errorf("operation panicked: %v", r))
		}
	}()
	v, err := op(ctx, in)
	if err != nil {
		return Err[O](err)
	}
	return Ok(v)
}

// Invoker is the transport into the privileged backend: a named command
// with JSON-serializable arguments, resolving to a JSON value or an
// error. The wire format behind it is the transport's concern.
type Invoker interface {
	Invoke(ctx context.Context, command string, args any) (json.RawMessage, error)
}

// Client exposes the named background operations as typed calls.
type Client struct {
	inv Invoker
}

// NewClient wraps an Invoker.
func NewClient(inv Invoker) *Client {
	return &Client{inv: inv}
}

func invokeAs[O any](ctx context.Context, inv Invoker, command string, args any) (O, error) {
	var out O
	raw, err := inv.Invoke(ctx, command, args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding %s response: %w", command, err)
	}
	return out, nil
}

// ReadWorkouts fetches the workout catalog file names.
func (c *Client) ReadWorkouts(ctx context.Context) Result[[]string] {
	return Call(ctx, func(ctx context.Context, _ Unit) ([]string, error) {
		return invokeAs[[]string](ctx, c.inv, "read_workouts", nil)
	}, Unit{})
}

// ConnectToTreadmill asks the backend to locate and connect to the
// treadmill whose advertised name contains device.
func (c *Client) ConnectToTreadmill(ctx context.Context, device string) Result[Unit] {
	return Call(ctx, func(ctx context.Context, name string) (Unit, error) {
		_, err := c.inv.Invoke(ctx, "connect_to_treadmill", map[string]string{"name": name})
		return Unit{}, err
	}, device)
}

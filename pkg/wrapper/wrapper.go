// Package wrapper gives tests one way to call a handler: load it by module
// path and export name, then Run it with an event.
//
// Loaders validate what they are given; nothing is resolved implicitly from
// the environment.
//
// The CLI runs JavaScript handlers through NodeLoader. GoLoader and Wrap are
// for Go programs and tests that call Go handlers in-process: Wrap adapts a
// single function, while a GoLoader set as the plugin's Loader serves
// invoke local from registered handlers instead of spawning node.
//
//	w := wrapper.Wrap("hello", func(ctx context.Context, in Event) (Reply, error) { ... })
//	out, err := w.Run(ctx, Event{Name: "world"})
package wrapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrHandlerNotFound is returned when a loader cannot resolve module/handler.
var ErrHandlerNotFound = errors.New("handler not found")

// Wrapper invokes a loaded handler.
type Wrapper interface {
	Run(ctx context.Context, event any) (json.RawMessage, error)
}

// Loader resolves a handler export in a module to a Wrapper.
type Loader interface {
	Load(ctx context.Context, module, handler string) (Wrapper, error)
}

// payload turns an event into the JSON bytes handlers receive.
func payload(event any) ([]byte, error) {
	switch e := event.(type) {
	case nil:
		return []byte("{}"), nil
	case json.RawMessage:
		return e, nil
	case []byte:
		return e, nil
	default:
		b, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("error encoding event: %w", err)
		}
		return b, nil
	}
}

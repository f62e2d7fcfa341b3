package wrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
)

// GoLoader serves Go handlers registered in-process. Any signature accepted
// by lambda.Start works.
type GoLoader struct {
	mu       sync.RWMutex
	handlers map[string]lambda.Handler
}

func NewGoLoader() *GoLoader {
	return &GoLoader{handlers: make(map[string]lambda.Handler)}
}

// Register makes handlerFunc loadable as module.handler.
func (g *GoLoader) Register(module, handler string, handlerFunc any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[module+"."+handler] = lambda.NewHandler(handlerFunc)
}

func (g *GoLoader) Load(_ context.Context, module, handler string) (Wrapper, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.handlers[module+"."+handler]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrHandlerNotFound, module, handler)
	}
	return &goWrapper{name: handler, handler: h}, nil
}

// Wrap adapts a single Go handler without a registry.
func Wrap(name string, handlerFunc any) Wrapper {
	return &goWrapper{name: name, handler: lambda.NewHandler(handlerFunc)}
}

type goWrapper struct {
	name    string
	handler lambda.Handler
}

func (w *goWrapper) Run(ctx context.Context, event any) (json.RawMessage, error) {
	in, err := payload(event)
	if err != nil {
		return nil, err
	}
	lc := &lambdacontext.LambdaContext{
		AwsRequestID:       uuid.NewString(),
		InvokedFunctionArn: "arn:aws:lambda:local:000000000000:function:" + w.name,
	}
	out, err := w.handler.Invoke(lambdacontext.NewContext(ctx, lc), in)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

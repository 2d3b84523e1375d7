// Package bridge implements the request/response boundary between the places facade
// and a platform handler. Calls travel as JSON envelopes over a channel to a single
// dispatcher goroutine; each call runs in its own goroutine and answers on a private
// reply channel.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/models"
)

// ErrClosed is returned by Invoke after Close
var ErrClosed = errors.New("bridge channel closed")

// MethodCall is one request envelope
type MethodCall struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`

	ctx   context.Context
	reply chan Reply
}

// Reply is the response envelope for a MethodCall. Exactly one of Result and Error is set.
type Reply struct {
	ID     string                `json:"id"`
	Result json.RawMessage       `json:"result,omitempty"`
	Error  *models.PlatformError `json:"error,omitempty"`
}

// Channel dispatches method calls to a platform handler
type Channel struct {
	handler  interfaces.PlatformHandler
	logger   arbor.ILogger
	calls    chan *MethodCall
	done     chan struct{}
	stopped  chan struct{}
	inFlight sync.WaitGroup
	once     sync.Once
}

// NewChannel starts a dispatcher for handler
func NewChannel(handler interfaces.PlatformHandler, logger arbor.ILogger) *Channel {
	c := &Channel{
		handler: handler,
		logger:  logger,
		calls:   make(chan *MethodCall),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.dispatch()

	logger.Debug().Str("platform", handler.Platform()).Msg("Bridge channel started")
	return c
}

// Platform returns the identifier of the handler behind the channel
func (c *Channel) Platform() string {
	return c.handler.Platform()
}

// Invoke sends method with JSON-encoded arguments and waits for the reply.
// A platform failure is returned as *models.PlatformError.
func (c *Channel) Invoke(ctx context.Context, method string, arguments interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if arguments != nil {
		encoded, err := json.Marshal(arguments)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s arguments: %w", method, err)
		}
		raw = encoded
	}

	call := &MethodCall{
		ID:        uuid.NewString(),
		Method:    method,
		Arguments: raw,
		ctx:       ctx,
		reply:     make(chan Reply, 1),
	}

	select {
	case c.calls <- call:
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-call.reply:
		if reply.Error != nil {
			return nil, reply.Error
		}
		return reply.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting calls and waits for calls in flight to reply
func (c *Channel) Close() error {
	c.once.Do(func() {
		close(c.done)
		<-c.stopped
		c.inFlight.Wait()
		c.logger.Debug().Str("platform", c.handler.Platform()).Msg("Bridge channel closed")
	})
	return nil
}

func (c *Channel) dispatch() {
	defer close(c.stopped)
	for {
		select {
		case call := <-c.calls:
			c.inFlight.Add(1)
			go c.handle(call)
		case <-c.done:
			return
		}
	}
}

func (c *Channel) handle(call *MethodCall) {
	defer c.inFlight.Done()

	reply := Reply{ID: call.ID}
	result, err := c.handler.HandleMethodCall(call.ctx, call.Method, call.Arguments)
	if err != nil {
		reply.Error = toPlatformError(err)
		c.logger.Debug().
			Str("call_id", call.ID).
			Str("method", call.Method).
			Str("code", reply.Error.Code).
			Msg("Bridge call failed")
	} else {
		reply.Result = result
	}

	call.reply <- reply
}

// toPlatformError keeps platform errors intact and classifies everything else
func toPlatformError(err error) *models.PlatformError {
	var pe *models.PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &models.PlatformError{Code: models.PlatformCodeNetwork, Message: err.Error()}
	}
	return &models.PlatformError{Code: models.PlatformCodeAPI, Message: err.Error()}
}

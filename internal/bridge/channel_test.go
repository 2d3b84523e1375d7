package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/models"
)

type scriptedHandler struct {
	calls atomic.Int32
	fn    func(ctx context.Context, method string, arguments json.RawMessage) (json.RawMessage, error)
}

func (h *scriptedHandler) Platform() string { return "test" }

func (h *scriptedHandler) HandleMethodCall(ctx context.Context, method string, arguments json.RawMessage) (json.RawMessage, error) {
	h.calls.Add(1)
	return h.fn(ctx, method, arguments)
}

func TestChannel_InvokeEncodesArguments(t *testing.T) {
	handler := &scriptedHandler{fn: func(_ context.Context, method string, arguments json.RawMessage) (json.RawMessage, error) {
		var args FetchPlaceArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, err
		}
		return json.Marshal(map[string]string{"method": method, "placeId": args.PlaceID, "token": args.SessionToken})
	}}
	ch := NewChannel(handler, arbor.NewLogger())
	defer ch.Close()

	result, err := ch.Invoke(context.Background(), "fetchPlace", FetchPlaceArgs{PlaceID: "p1", SessionToken: "tok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"fetchPlace","placeId":"p1","token":"tok"}`, string(result))
	assert.Equal(t, "test", ch.Platform())
}

func TestChannel_PlatformErrorsPassThrough(t *testing.T) {
	handler := &scriptedHandler{fn: func(context.Context, string, json.RawMessage) (json.RawMessage, error) {
		return nil, &models.PlatformError{Code: models.PlatformCodeNotFound, Message: "gone"}
	}}
	ch := NewChannel(handler, arbor.NewLogger())
	defer ch.Close()

	_, err := ch.Invoke(context.Background(), "fetchPlace", nil)
	var pe *models.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.PlatformCodeNotFound, pe.Code)
	assert.Equal(t, "gone", pe.Message)
}

func TestChannel_PlainErrorsAreClassified(t *testing.T) {
	handler := &scriptedHandler{fn: func(context.Context, string, json.RawMessage) (json.RawMessage, error) {
		return nil, errors.New("boom")
	}}
	ch := NewChannel(handler, arbor.NewLogger())
	defer ch.Close()

	_, err := ch.Invoke(context.Background(), "initialize", nil)
	var pe *models.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.PlatformCodeAPI, pe.Code)
}

func TestChannel_ContextCancelledWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	handler := &scriptedHandler{fn: func(context.Context, string, json.RawMessage) (json.RawMessage, error) {
		<-release
		return json.RawMessage(`true`), nil
	}}
	ch := NewChannel(handler, arbor.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ch.Invoke(ctx, "initialize", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, ch.Close())
}

func TestChannel_ConcurrentCallsDoNotBlockEachOther(t *testing.T) {
	slow := make(chan struct{})
	handler := &scriptedHandler{fn: func(_ context.Context, method string, _ json.RawMessage) (json.RawMessage, error) {
		if method == "slow" {
			<-slow
		}
		return json.RawMessage(`"` + method + `"`), nil
	}}
	ch := NewChannel(handler, arbor.NewLogger())
	defer ch.Close()

	slowDone := make(chan error, 1)
	go func() {
		_, err := ch.Invoke(context.Background(), "slow", nil)
		slowDone <- err
	}()

	result, err := ch.Invoke(context.Background(), "fast", nil)
	require.NoError(t, err)
	assert.Equal(t, `"fast"`, string(result))

	close(slow)
	require.NoError(t, <-slowDone)
}

func TestChannel_InvokeAfterClose(t *testing.T) {
	handler := &scriptedHandler{fn: func(context.Context, string, json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`true`), nil
	}}
	ch := NewChannel(handler, arbor.NewLogger())
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	_, err := ch.Invoke(context.Background(), "initialize", nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, handler.calls.Load())
}

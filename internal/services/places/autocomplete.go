package places

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/models"
)

// Listeners receive the results of an Autocomplete stream. Nil listeners are skipped.
type Listeners struct {
	OnPredictions func([]models.Prediction)
	OnLoading     func(bool)
	OnError       func(error)
}

// Autocomplete turns a stream of raw text input into debounced prediction requests.
// Only the result of the most recently dispatched request is delivered; results of
// superseded requests are dropped when they arrive.
type Autocomplete struct {
	service   *Service
	listeners Listeners
	debouncer *Debouncer
	timeout   time.Duration
	logger    arbor.ILogger

	mu      sync.Mutex
	options models.PredictionsRequest
	seq     uint64
	closed  bool

	deliverMu sync.Mutex
	loading   bool
}

// NewAutocomplete creates a stream over service. interval is the debounce interval and
// timeout bounds each dispatched request (zero means no extra bound).
func NewAutocomplete(service *Service, interval, timeout time.Duration, listeners Listeners, logger arbor.ILogger) *Autocomplete {
	a := &Autocomplete{
		service:   service,
		listeners: listeners,
		timeout:   timeout,
		logger:    logger,
	}
	a.debouncer = NewDebouncer(interval, a.dispatch)
	return a
}

// SetOptions sets the filters applied to every following request. The Query field is ignored.
func (a *Autocomplete) SetOptions(options models.PredictionsRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	options.Query = ""
	a.options = options
}

// Input feeds one text value into the stream
func (a *Autocomplete) Input(text string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}

	if strings.TrimSpace(text) != "" {
		a.mu.Unlock()
		a.debouncer.Push(text)
		return
	}

	// blank input supersedes everything and answers immediately. The reset happens
	// under mu so a timer that already fired cannot dispatch the older value.
	a.seq++
	seq := a.seq
	a.debouncer.Reset(text)
	a.mu.Unlock()

	a.deliver(seq, []models.Prediction{}, nil)
}

// Select fetches details for placeID, ending the current session. Pending and in-flight
// prediction requests are superseded.
func (a *Autocomplete) Select(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, models.NewPlacesError(models.ErrCodeNotInitialized, "autocomplete stream is closed", nil)
	}
	a.seq++
	a.debouncer.Reset("")
	a.mu.Unlock()

	// a superseded request never delivers, so clear its loading indicator here
	a.settleLoading()

	details, err := a.service.GetPlaceDetails(ctx, placeID)
	if err != nil {
		a.emitError(err)
		return nil, err
	}
	return details, nil
}

// SessionState reports the state of the stream's session token
func (a *Autocomplete) SessionState() models.SessionState {
	return a.service.SessionState()
}

// Close stops the pending debounce timer and releases the stream. Requests already
// dispatched run to completion but their results are dropped.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.debouncer.Stop()
	a.service.AbandonSession(context.Background())
}

// dispatch runs on the debounce timer goroutine. gen is the debouncer generation the
// value was scheduled under; a blank input or selection since then wins.
func (a *Autocomplete) dispatch(text string, gen uint64) {
	a.mu.Lock()
	if a.closed || !a.debouncer.Current(gen) {
		a.mu.Unlock()
		return
	}
	a.seq++
	seq := a.seq
	req := a.options
	req.Query = text
	a.mu.Unlock()

	a.emitLoading(seq, true)

	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	predictions, err := a.service.GetPredictions(ctx, &req)
	a.deliver(seq, predictions, err)
}

// deliver hands a result to the listeners if seq is still the latest request
func (a *Autocomplete) deliver(seq uint64, predictions []models.Prediction, err error) {
	a.deliverMu.Lock()
	defer a.deliverMu.Unlock()

	if !a.isCurrent(seq) {
		a.logger.Debug().Int64("seq", int64(seq)).Msg("Dropping superseded predictions")
		return
	}

	a.loading = false
	if a.listeners.OnLoading != nil {
		a.listeners.OnLoading(false)
	}

	if err != nil {
		if a.listeners.OnError != nil {
			a.listeners.OnError(err)
		}
		predictions = []models.Prediction{}
	}
	if predictions == nil {
		predictions = []models.Prediction{}
	}
	if a.listeners.OnPredictions != nil {
		a.listeners.OnPredictions(predictions)
	}
}

func (a *Autocomplete) emitLoading(seq uint64, loading bool) {
	a.deliverMu.Lock()
	defer a.deliverMu.Unlock()

	if !a.isCurrent(seq) {
		return
	}
	a.loading = loading
	if a.listeners.OnLoading != nil {
		a.listeners.OnLoading(loading)
	}
}

// settleLoading reports loading=false if a request left the indicator on
func (a *Autocomplete) settleLoading() {
	a.deliverMu.Lock()
	defer a.deliverMu.Unlock()

	if !a.loading {
		return
	}
	a.loading = false
	if a.listeners.OnLoading != nil {
		a.listeners.OnLoading(false)
	}
}

func (a *Autocomplete) emitError(err error) {
	a.deliverMu.Lock()
	defer a.deliverMu.Unlock()

	if a.listeners.OnError != nil {
		a.listeners.OnError(err)
	}
}

func (a *Autocomplete) isCurrent(seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.closed && seq == a.seq
}

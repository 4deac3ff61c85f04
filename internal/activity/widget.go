package activity

import (
	"context"
	"sync"
)

// View is what the rendering boundary shows for the widget.
type View struct {
	Account string  `json:"account"`
	Result  *Result `json:"result,omitempty"`
	Loading bool    `json:"loading"`
	Err     error   `json:"-"`
}

// Widget owns at most one refresh at a time. Switching accounts supersedes
// the in-flight refresh: its result is neither cached nor shown.
type Widget struct {
	agg *Aggregator

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	view       View
	closed     bool
}

// NewWidget creates a Widget refreshing through agg.
func NewWidget(agg *Aggregator) *Widget {
	return &Widget{agg: agg}
}

// SetAccount starts a refresh for account, cancelling any refresh in flight.
// The returned channel is closed when the refresh has finished, whether or
// not its result was applied.
func (w *Widget) SetAccount(ctx context.Context, account string) <-chan struct{} {
	done := make(chan struct{})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		close(done)
		return done
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.generation++
	gen := w.generation
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.view = View{Account: account, Loading: true}
	w.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		cycle := w.agg.Run(cctx, account)

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed || gen != w.generation {
			cycle.log.Debug().Msg("refresh superseded, dropping result")
			return
		}
		cycle.Commit()
		w.view = View{
			Account: account,
			Result:  cycle.Result,
			Err:     cycle.Err,
		}
	}()

	return done
}

// View returns the current view.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Close cancels any refresh in flight and stops applying results.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

package device

import (
	"time"

	"go.uber.org/zap"

	"github.com/lumakit/dmxlink/internal/logging"
	"github.com/lumakit/dmxlink/internal/transport"
)

// Connect opens the device's endpoint within the given time budget.
//
// An explicit open error is retried after a fixed 100 ms pause with the
// budget reduced by the pause, until the budget is exhausted; then Connect
// fails with ErrConnectionFailed wrapping the last open error. If instead
// the budget elapses while an open attempt is still in progress, Connect
// closes whatever the attempt eventually produces and fails immediately
// with ErrConnectionTimeout; the timeout path never retries.
//
// On success the inbound listener is installed for the lifetime of the
// endpoint. A zero budget gets a single open attempt with no timer.
func (d *Device) Connect(budget time.Duration) error {
	if budget <= 0 {
		budget = DefaultConnectBudget
	}

	var lastErr error
	for {
		ep, err := d.openWithTimeout(budget)
		if err == nil {
			d.install(ep)
			return nil
		}
		if de, ok := err.(*DeviceError); ok && de.Type == ErrTypeConnectionTimeout {
			return err
		}

		lastErr = err
		if budget <= 0 {
			return d.newError(ErrTypeConnectionFailed, "", lastErr)
		}

		logging.Debug("Open failed, retrying",
			zap.String("endpoint", d.path),
			zap.Duration("remaining_budget", budget),
			zap.Error(err),
		)
		time.Sleep(connectRetryPause)
		budget -= connectRetryPause
	}
}

// openWithTimeout races one open attempt against the remaining budget. With
// no budget left the attempt runs unguarded: it either opens or returns its
// own error.
func (d *Device) openWithTimeout(budget time.Duration) (transport.Endpoint, error) {
	if budget <= 0 {
		return d.open(d.path)
	}

	type openResult struct {
		ep  transport.Endpoint
		err error
	}
	result := make(chan openResult, 1)
	go func() {
		ep, err := d.open(d.path)
		result <- openResult{ep: ep, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case r := <-result:
		return r.ep, r.err
	case <-timer.C:
		// The attempt may still complete; close its endpoint when it does.
		go func() {
			if r := <-result; r.ep != nil {
				_ = r.ep.Close()
			}
		}()
		return nil, d.newError(ErrTypeConnectionTimeout, "", nil)
	}
}

// install adopts an open endpoint and starts its inbound listener
func (d *Device) install(ep transport.Endpoint) {
	d.mu.Lock()
	d.readGen++
	gen := d.readGen
	d.endpoint = ep
	d.pending = nil
	d.mu.Unlock()

	logging.LogConnection(d.path, "opened")
	go d.readLoop(ep, gen)
}

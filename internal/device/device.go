package device

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lumakit/dmxlink/internal/logging"
	"github.com/lumakit/dmxlink/internal/protocol"
	"github.com/lumakit/dmxlink/internal/transport"
)

const (
	// DefaultConnectBudget is the default time budget for Connect
	DefaultConnectBudget = 2 * time.Second

	// DefaultOperationBudget is the default per-operation response timeout
	DefaultOperationBudget = 1 * time.Second

	// connectRetryPause is the fixed pause between connect attempts after
	// an explicit open error.
	connectRetryPause = 100 * time.Millisecond
)

// Device is a client for one DL-series gateway reached over an exclusively
// owned byte-stream endpoint.
//
// A Device allows at most one in-flight request at a time: starting an
// operation while another is pending fails with ErrBusy rather than
// corrupting the shared response state. Operations on distinct Devices are
// fully independent.
type Device struct {
	// OperationBudget bounds how long each catalog operation waits for its
	// response. Zero means DefaultOperationBudget.
	OperationBudget time.Duration

	path string
	open transport.OpenFunc

	mu       sync.Mutex
	endpoint transport.Endpoint
	identity *protocol.Identity
	pending  *pendingOp
	readGen  int // invalidates the read loop of a replaced endpoint
}

// pendingOp is the single outstanding request slot: the accumulated inbound
// bytes and the reader deciding when they form a complete response.
type pendingOp struct {
	reader protocol.Reader
	buf    []byte
	done   chan opResult
}

type opResult struct {
	body []byte
	err  error
}

// New creates a device for the endpoint at path. The endpoint is not opened
// until Connect.
func New(path string) *Device {
	return NewWithOpener(path, transport.Open)
}

// NewWithOpener creates a device with a custom endpoint opener. Tests use
// this to substitute in-memory endpoints.
func NewWithOpener(path string, open transport.OpenFunc) *Device {
	return &Device{
		path:            path,
		open:            open,
		OperationBudget: DefaultOperationBudget,
	}
}

// Path returns the endpoint path this device was created with
func (d *Device) Path() string {
	return d.path
}

// Identity returns the metadata from the last successful Identify, or nil
// if the device has not been identified yet.
func (d *Device) Identity() *protocol.Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.identity
}

// Connected reports whether the device currently holds an open endpoint
func (d *Device) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.endpoint != nil
}

// Close closes the endpoint. A pending operation, if any, is failed.
func (d *Device) Close() error {
	d.mu.Lock()
	ep := d.endpoint
	d.endpoint = nil
	d.readGen++
	p := d.pending
	d.pending = nil
	d.mu.Unlock()

	if p != nil {
		p.done <- opResult{err: d.newError(ErrTypeNotConnected, "", nil)}
	}
	if ep == nil {
		return nil
	}
	logging.LogConnection(d.path, "closed")
	return ep.Close()
}

// readLoop is the inbound listener installed for the lifetime of one open
// endpoint. It appends every received chunk to the pending operation's
// buffer and feeds the completion reader.
func (d *Device) readLoop(ep transport.Endpoint, gen int) {
	chunk := make([]byte, 4096)
	for {
		n, err := ep.Read(chunk)
		if n > 0 {
			d.handleInbound(chunk[:n], gen)
		}
		if err != nil {
			d.handleReadError(err, gen)
			return
		}
	}
}

// handleInbound delivers one inbound chunk to the pending operation
func (d *Device) handleInbound(chunk []byte, gen int) {
	d.mu.Lock()
	if gen != d.readGen {
		// A stale loop for an endpoint that has been replaced.
		d.mu.Unlock()
		return
	}

	logging.LogRawBytes("inbound chunk", chunk)

	p := d.pending
	if p == nil {
		// No operation is waiting: a late response after a timeout, or
		// unsolicited chatter. Dropped rather than kept for the next
		// operation to trip over.
		d.mu.Unlock()
		logging.Debug("Dropped bytes with no pending operation",
			zap.String("endpoint", d.path),
			zap.Int("length", len(chunk)),
		)
		return
	}

	p.buf = append(p.buf, chunk...)
	body, complete := p.reader.Feed(p.buf)
	if !complete {
		d.mu.Unlock()
		return
	}

	d.pending = nil
	d.mu.Unlock()
	p.done <- opResult{body: body}
}

// handleReadError fails the pending operation when the stream dies
func (d *Device) handleReadError(err error, gen int) {
	d.mu.Lock()
	if gen != d.readGen {
		d.mu.Unlock()
		return
	}
	p := d.pending
	d.pending = nil
	d.endpoint = nil
	d.readGen++
	d.mu.Unlock()

	logging.Warn("Endpoint read failed",
		zap.String("endpoint", d.path),
		zap.Error(err),
	)
	if p != nil {
		p.done <- opResult{err: err}
	}
}

// operationBudget returns the effective per-operation timeout
func (d *Device) operationBudget() time.Duration {
	if d.OperationBudget > 0 {
		return d.OperationBudget
	}
	return DefaultOperationBudget
}

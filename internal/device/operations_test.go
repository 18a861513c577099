package device

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/lumakit/dmxlink/internal/protocol"
	"github.com/lumakit/dmxlink/internal/transport"
)

func newTestDevice(t *testing.T) (*Device, *scriptEndpoint) {
	t.Helper()
	ep := newScriptEndpoint()
	d := NewWithOpener("/dev/ttyTEST", func(path string) (transport.Endpoint, error) {
		return ep, nil
	})
	if err := d.Connect(time.Second); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d, ep
}

// waitWritten blocks until at least n bytes have been written to the
// endpoint, failing the test after one second.
func waitWritten(t *testing.T, ep *scriptEndpoint, n int) []byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		w := ep.written()
		if len(w) >= n {
			return w
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d written bytes, got %d", n, len(w))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGetUniverseDataChunkedResponse(t *testing.T) {
	d, ep := newTestDevice(t)
	d.OperationBudget = time.Second

	values := make([]byte, protocol.UniverseSize)
	for i := range values {
		values[i] = byte(i % 251)
	}

	type result struct {
		values []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		v, err := d.GetUniverseData(7)
		done <- result{v, err}
	}()

	want := protocol.EncodeMessage(protocol.OpGetUniverseData, []byte{0x07, 0x00})
	got := waitWritten(t, ep, len(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("request bytes = % x, want % x", got, want)
	}

	// The 512-byte response arrives in three pieces
	ep.feed(values[:200])
	ep.feed(values[200:400])
	ep.feed(values[400:])

	r := <-done
	if r.err != nil {
		t.Fatalf("GetUniverseData failed: %v", r.err)
	}
	if !bytes.Equal(r.values, values) {
		t.Error("returned values do not match fed response")
	}
}

func TestOperationTimeout(t *testing.T) {
	d, ep := newTestDevice(t)
	d.OperationBudget = 50 * time.Millisecond

	start := time.Now()
	_, err := d.GetFramerate()
	elapsed := time.Since(start)

	if !errors.Is(err, ErrOperationTimeout) {
		t.Fatalf("expected ErrOperationTimeout, got %v", err)
	}
	if elapsed < 50*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("timeout after %v, want roughly 50ms", elapsed)
	}

	// A response arriving after the deadline is dropped, not delivered to
	// the next operation
	ep.feed([]byte{99})
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	var rate uint8
	var rerr error
	go func() {
		rate, rerr = d.GetFramerate()
		close(done)
	}()
	waitWritten(t, ep, 2*protocol.HeaderSize)
	ep.feed([]byte{40})
	<-done

	if rerr != nil {
		t.Fatalf("second GetFramerate failed: %v", rerr)
	}
	if rate != 40 {
		t.Errorf("framerate = %d, want 40", rate)
	}
}

func TestOverlappingRequestsRejected(t *testing.T) {
	d, ep := newTestDevice(t)
	d.OperationBudget = time.Second

	done := make(chan error, 1)
	go func() {
		_, err := d.GetUniverseData(1)
		done <- err
	}()
	waitWritten(t, ep, protocol.HeaderSize)

	if _, err := d.GetFramerate(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for overlapping request, got %v", err)
	}
	if err := d.SetFramerate(30); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for overlapping send, got %v", err)
	}

	ep.feed(make([]byte, protocol.UniverseSize))
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}
}

func TestFireAndForgetReturnsImmediately(t *testing.T) {
	d, ep := newTestDevice(t)

	start := time.Now()
	if err := d.SetFramerate(44); err != nil {
		t.Fatalf("SetFramerate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("fire-and-forget took %v", elapsed)
	}

	want := protocol.EncodeMessage(protocol.OpSetFramerate, []byte{44})
	if got := ep.written(); !bytes.Equal(got, want) {
		t.Errorf("wire bytes = % x, want % x", got, want)
	}
}

func TestIdentify(t *testing.T) {
	d, ep := newTestDevice(t)

	done := make(chan error, 1)
	var id *protocol.Identity
	go func() {
		var err error
		id, err = d.Identify(time.Second)
		done <- err
	}()
	waitWritten(t, ep, protocol.HeaderSize)

	ep.feed([]byte(`{"version":"1.4.2","model":"DL-4","name":"rig-left"}` + "\n\n"))
	if err := <-done; err != nil {
		t.Fatalf("Identify failed: %v", err)
	}

	if id.Version != "1.4.2" || id.Model != "DL-4" || id.Name != "rig-left" {
		t.Errorf("unexpected identity: %+v", id)
	}
	if d.Identity() == nil {
		t.Error("identity was not stored on the device")
	}
}

func TestIdentifyRejectsMalformedRecord(t *testing.T) {
	d, ep := newTestDevice(t)

	done := make(chan error, 1)
	go func() {
		_, err := d.Identify(time.Second)
		done <- err
	}()
	waitWritten(t, ep, protocol.HeaderSize)

	ep.feed([]byte("not json\n\n"))
	if err := <-done; !errors.Is(err, ErrInvalidIdentify) {
		t.Errorf("expected ErrInvalidIdentify, got %v", err)
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	d := New("/dev/ttyNONE")

	if _, err := d.GetFramerate(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("request: expected ErrNotConnected, got %v", err)
	}
	if err := d.SetFramerate(30); !errors.Is(err, ErrNotConnected) {
		t.Errorf("send: expected ErrNotConnected, got %v", err)
	}
}

func TestCloseFailsPendingOperation(t *testing.T) {
	d, ep := newTestDevice(t)
	d.OperationBudget = time.Second

	done := make(chan error, 1)
	go func() {
		_, err := d.GetUniverseData(1)
		done <- err
	}()
	waitWritten(t, ep, protocol.HeaderSize)

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrNotConnected) {
		t.Errorf("pending operation after Close: expected ErrNotConnected, got %v", err)
	}
}

func TestQueryOperationsSelectByPayload(t *testing.T) {
	tests := []struct {
		name        string
		run         func(d *Device) error
		response    []byte
		wantPayload []byte
	}{
		{
			name: "list patches",
			run: func(d *Device) error {
				_, err := d.ListPatches()
				return err
			},
			response:    []byte{0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x09, 0x00},
			wantPayload: nil,
		},
		{
			name: "list ports",
			run: func(d *Device) error {
				_, err := d.ListPorts()
				return err
			},
			response:    []byte{0x01, 0x00, 0x01, 0x00, 0x00},
			wantPayload: []byte{0xFF, 0xFF},
		},
		{
			name: "values by address",
			run: func(d *Device) error {
				_, err := d.GetValuesByAddress([]protocol.Address{{Universe: 1, Address: 200}})
				return err
			},
			response:    []byte{0x01, 0x00, 0x80},
			wantPayload: []byte{0x01, 0x00, 0x01, 0x00, 0xC8, 0x00},
		},
		{
			name: "mask values by address",
			run: func(d *Device) error {
				_, err := d.GetMaskValuesByAddress(2, []uint16{5})
				return err
			},
			response:    []byte{0x01, 0x00, 0x01, 0xFF},
			wantPayload: []byte{0x02, 0x00, 0x01, 0x00, 0x05, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ep := newTestDevice(t)
			d.OperationBudget = time.Second

			done := make(chan error, 1)
			go func() { done <- tt.run(d) }()

			want := protocol.EncodeMessage(protocol.OpQuery, tt.wantPayload)
			got := waitWritten(t, ep, len(want))
			if !bytes.Equal(got, want) {
				t.Fatalf("request bytes = % x, want % x", got, want)
			}

			ep.feed(tt.response)
			if err := <-done; err != nil {
				t.Fatalf("operation failed: %v", err)
			}
		})
	}
}

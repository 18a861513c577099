package device

import (
	"time"

	"go.uber.org/zap"

	"github.com/lumakit/dmxlink/internal/logging"
	"github.com/lumakit/dmxlink/internal/protocol"
)

// The operation catalog. Each request operation installs the completion
// reader for its response shape, sends one framed message, and waits for
// the reader to complete or the operation budget to elapse. Fire-and-forget
// operations skip the reader and return as soon as the message is written.

// Identify performs the identify handshake within the given budget and
// stores the returned metadata on the device. A non-positive budget uses
// the device's operation budget.
func (d *Device) Identify(budget time.Duration) (*protocol.Identity, error) {
	if budget <= 0 {
		budget = d.operationBudget()
	}

	body, err := d.request("Identify", protocol.OpIdentify, nil, protocol.TextReader(), budget)
	if err != nil {
		return nil, err
	}

	id, err := protocol.ParseIdentity(body)
	if err != nil {
		return nil, d.newError(ErrTypeInvalidIdentify, "Identify", err)
	}

	d.mu.Lock()
	d.identity = id
	d.mu.Unlock()

	logging.Info("Gateway identified",
		zap.String("endpoint", d.path),
		zap.String("version", id.Version),
		zap.String("model", id.Model),
		zap.String("name", id.Name),
	)
	return id, nil
}

// SetUniverseData replaces all 512 channel values of a universe.
// Fire-and-forget: the gateway sends no reply.
func (d *Device) SetUniverseData(universe uint16, values []byte) error {
	payload, err := protocol.SetUniverseDataPayload(universe, values)
	if err != nil {
		return err
	}
	return d.send("SetUniverseData", protocol.OpSetUniverseData, payload)
}

// SetAddressValues writes sparse channel values across universes.
// Fire-and-forget.
func (d *Device) SetAddressValues(pairs []protocol.AddressValue) error {
	return d.send("SetAddressValues", protocol.OpSetAddressValues, protocol.AddressValuesPayload(pairs))
}

// GetUniverseData fetches the full 512-byte value buffer of a universe
func (d *Device) GetUniverseData(universe uint16) ([]byte, error) {
	body, err := d.request("GetUniverseData", protocol.OpGetUniverseData,
		protocol.AppendUniverse(nil, universe),
		protocol.FixedReader(protocol.UniverseSize), d.operationBudget())
	if err != nil {
		return nil, err
	}
	return protocol.ParseUniverseData(body)
}

// SetFramerate sets the gateway's output frame rate. Fire-and-forget.
func (d *Device) SetFramerate(rate uint8) error {
	return d.send("SetFramerate", protocol.OpSetFramerate, []byte{rate})
}

// GetFramerate reads the gateway's output frame rate
func (d *Device) GetFramerate() (uint8, error) {
	body, err := d.request("GetFramerate", protocol.OpGetFramerate, nil,
		protocol.FixedReader(1), d.operationBudget())
	if err != nil {
		return 0, err
	}
	return protocol.ParseFramerate(body)
}

// CreateMaskUniverse creates a mask universe. Fire-and-forget.
func (d *Device) CreateMaskUniverse(universe uint16) error {
	return d.send("CreateMaskUniverse", protocol.OpCreateMaskUniverse, protocol.AppendUniverse(nil, universe))
}

// GetMaskUniverses lists the mask universe numbers present on the gateway
func (d *Device) GetMaskUniverses() ([]uint16, error) {
	body, err := d.request("GetMaskUniverses", protocol.OpGetMaskUniverses, nil,
		protocol.CountReader(2), d.operationBudget())
	if err != nil {
		return nil, err
	}
	return protocol.ParseMaskUniverses(body)
}

// DeleteMaskUniverse removes a mask universe. Fire-and-forget.
func (d *Device) DeleteMaskUniverse(universe uint16) error {
	return d.send("DeleteMaskUniverse", protocol.OpDeleteMaskUniverse, protocol.AppendUniverse(nil, universe))
}

// SetMaskUniverseData replaces a mask universe's mask and channel values.
// Fire-and-forget.
func (d *Device) SetMaskUniverseData(universe uint16, mask protocol.ChannelMask, values []byte) error {
	payload, err := protocol.MaskUniverseDataPayload(universe, mask, values)
	if err != nil {
		return err
	}
	return d.send("SetMaskUniverseData", protocol.OpSetMaskUniverseData, payload)
}

// SetMaskAddressValues writes sparse masking flags and values within one
// mask universe. Fire-and-forget.
func (d *Device) SetMaskAddressValues(universe uint16, entries []protocol.MaskAddressValue) error {
	return d.send("SetMaskAddressValues", protocol.OpSetMaskAddressValues,
		protocol.MaskAddressValuesPayload(universe, entries))
}

// GetMaskUniverseData fetches a mask universe's packed mask and 512-byte
// value buffer.
func (d *Device) GetMaskUniverseData(universe uint16) (protocol.ChannelMask, []byte, error) {
	body, err := d.request("GetMaskUniverseData", protocol.OpGetMaskUniverseData,
		protocol.AppendUniverse(nil, universe),
		protocol.FixedReader(protocol.MaskBytes+protocol.UniverseSize), d.operationBudget())
	if err != nil {
		return nil, nil, err
	}
	return protocol.ParseMaskUniverseData(body)
}

// ClearMaskUniverse zeroes a mask universe. Fire-and-forget.
func (d *Device) ClearMaskUniverse(universe uint16) error {
	return d.send("ClearMaskUniverse", protocol.OpClearMaskUniverse, protocol.AppendUniverse(nil, universe))
}

// Patch installs a patch mapping. Fire-and-forget.
func (d *Device) Patch(p protocol.Patch) error {
	return d.send("Patch", protocol.OpPatch, protocol.PatchPayload(p))
}

// Unpatch removes a patch mapping. Fire-and-forget.
func (d *Device) Unpatch(p protocol.Patch) error {
	return d.send("Unpatch", protocol.OpUnpatch, protocol.PatchPayload(p))
}

// ListPatches fetches the active patch mappings
func (d *Device) ListPatches() ([]protocol.Patch, error) {
	body, err := d.request("ListPatches", protocol.OpQuery, nil,
		protocol.CountReader(6), d.operationBudget())
	if err != nil {
		return nil, err
	}
	return protocol.ParsePatches(body)
}

// CopyUniverse copies all channel values from one universe to another.
// Fire-and-forget.
func (d *Device) CopyUniverse(src, dst uint16) error {
	return d.send("CopyUniverse", protocol.OpCopyUniverse, protocol.CopyUniversePayload(src, dst))
}

// SetAddressesToValue sets every masked address of a universe to one value.
// Fire-and-forget.
func (d *Device) SetAddressesToValue(universe uint16, value byte, mask protocol.ChannelMask) error {
	return d.send("SetAddressesToValue", protocol.OpSetAddressesToValue,
		protocol.AddressesToValuePayload(universe, value, mask))
}

// ListPorts fetches the gateway's port bindings
func (d *Device) ListPorts() ([]protocol.Port, error) {
	body, err := d.request("ListPorts", protocol.OpQuery, protocol.PortQuerySelector,
		protocol.CountReader(3), d.operationBudget())
	if err != nil {
		return nil, err
	}
	return protocol.ParsePorts(body)
}

// GetValuesByAddress reads individual channel values, returned in request
// order.
func (d *Device) GetValuesByAddress(addrs []protocol.Address) ([]byte, error) {
	body, err := d.request("GetValuesByAddress", protocol.OpQuery,
		protocol.ValuesByAddressPayload(addrs),
		protocol.CountReader(1), d.operationBudget())
	if err != nil {
		return nil, err
	}
	return protocol.ParseValues(body)
}

// GetMaskValuesByAddress reads masking flags and values for individual
// addresses of a mask universe, returned in request order.
func (d *Device) GetMaskValuesByAddress(universe uint16, addrs []uint16) ([]protocol.MaskValue, error) {
	body, err := d.request("GetMaskValuesByAddress", protocol.OpQuery,
		protocol.MaskValuesByAddressPayload(universe, addrs),
		protocol.CountReader(2), d.operationBudget())
	if err != nil {
		return nil, err
	}
	return protocol.ParseMaskValues(body)
}

// request clears the pending slot, installs the completion reader, sends
// one framed message, and waits for the response or the budget timer.
func (d *Device) request(op string, opcode uint16, payload []byte, reader protocol.Reader, budget time.Duration) ([]byte, error) {
	p := &pendingOp{
		reader: reader,
		done:   make(chan opResult, 1),
	}

	d.mu.Lock()
	ep := d.endpoint
	if ep == nil {
		d.mu.Unlock()
		return nil, d.newError(ErrTypeNotConnected, op, nil)
	}
	if d.pending != nil {
		d.mu.Unlock()
		return nil, d.newError(ErrTypeBusy, op, nil)
	}
	// The reader must be armed before the write: the response can start
	// arriving before WriteMessage returns.
	d.pending = p
	d.mu.Unlock()

	logging.LogMessage(d.path, op, len(payload))
	if err := protocol.WriteMessage(ep, opcode, payload); err != nil {
		d.clearPending(p)
		return nil, err
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case r := <-p.done:
		if r.err != nil {
			return nil, r.err
		}
		return r.body, nil
	case <-timer.C:
		// Deregister so a late response cannot resolve this operation or
		// leak into the next one.
		d.clearPending(p)
		return nil, d.newError(ErrTypeOperationTimeout, op, nil)
	}
}

// send writes one fire-and-forget message; no reader is installed and the
// call returns as soon as the write completes.
func (d *Device) send(op string, opcode uint16, payload []byte) error {
	d.mu.Lock()
	ep := d.endpoint
	if ep == nil {
		d.mu.Unlock()
		return d.newError(ErrTypeNotConnected, op, nil)
	}
	if d.pending != nil {
		d.mu.Unlock()
		return d.newError(ErrTypeBusy, op, nil)
	}
	d.mu.Unlock()

	logging.LogMessage(d.path, op, len(payload))
	return protocol.WriteMessage(ep, opcode, payload)
}

// clearPending removes p from the pending slot if it is still installed
func (d *Device) clearPending(p *pendingOp) {
	d.mu.Lock()
	if d.pending == p {
		d.pending = nil
	}
	d.mu.Unlock()
}

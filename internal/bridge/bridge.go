package bridge

import (
	"errors"
	"fmt"
	"net"

	"github.com/Hundemeier/go-sacn/sacn"
	"go.uber.org/zap"

	"github.com/lumakit/dmxlink/internal/config"
	"github.com/lumakit/dmxlink/internal/device"
	"github.com/lumakit/dmxlink/internal/logging"
	"github.com/lumakit/dmxlink/internal/protocol"
)

// UniverseWriter accepts full-universe updates. *device.Device satisfies
// this.
type UniverseWriter interface {
	SetUniverseData(universe uint16, values []byte) error
}

// Bridge receives sACN (E1.31) packets from the network and forwards the
// mapped universes to a gateway as full-universe writes.
type Bridge struct {
	writer UniverseWriter
	cfg    *config.BridgeConfig
	recv   *sacn.ReceiverSocket
}

// New creates a bridge forwarding to writer according to cfg. The bridge
// does not touch the network until Start.
func New(writer UniverseWriter, cfg *config.BridgeConfig) *Bridge {
	return &Bridge{
		writer: writer,
		cfg:    cfg,
	}
}

// Start opens the sACN receiver socket, joins the multicast group of every
// mapped universe, and begins forwarding.
func (b *Bridge) Start() error {
	if len(b.cfg.Universes) == 0 {
		return errors.New("no universe mappings configured")
	}

	var ifi *net.Interface
	if b.cfg.Interface != "" {
		var err error
		ifi, err = net.InterfaceByName(b.cfg.Interface)
		if err != nil {
			return fmt.Errorf("failed to resolve interface %q: %w", b.cfg.Interface, err)
		}
	}

	recv, err := sacn.NewReceiverSocket("", ifi)
	if err != nil {
		return fmt.Errorf("failed to open sACN receiver: %w", err)
	}

	recv.SetOnChangeCallback(func(old sacn.DataPacket, newD sacn.DataPacket) {
		b.forward(newD.Universe(), newD.Data())
	})
	recv.SetTimeoutCallback(func(universe uint16) {
		logging.Warn("sACN source timed out", zap.Uint16("sacn_universe", universe))
	})

	for _, m := range b.cfg.Universes {
		recv.JoinUniverse(m.SACN)
	}
	recv.Start()

	b.recv = recv
	logging.Info("sACN bridge started",
		zap.Int("mappings", len(b.cfg.Universes)),
		zap.String("interface", b.cfg.Interface),
	)
	return nil
}

// Stop halts the receiver. The bridge can be started again afterwards.
func (b *Bridge) Stop() {
	if b.recv == nil {
		return
	}
	for _, m := range b.cfg.Universes {
		b.recv.LeaveUniverse(m.SACN)
	}
	b.recv.Close()
	b.recv = nil
	logging.Info("sACN bridge stopped")
}

// forward pushes one received sACN frame to the gateway. Unmapped
// universes are ignored. A Busy gateway drops the frame; sACN sources
// refresh continuously, so the next frame supersedes it anyway.
func (b *Bridge) forward(sacnUniverse uint16, data []byte) {
	target, ok := b.cfg.MappingFor(sacnUniverse)
	if !ok {
		return
	}

	if err := b.writer.SetUniverseData(target, padUniverse(data)); err != nil {
		if errors.Is(err, device.ErrBusy) {
			logging.Debug("Dropped sACN frame, gateway busy",
				zap.Uint16("sacn_universe", sacnUniverse),
				zap.Uint16("gateway_universe", target),
			)
			return
		}
		logging.Error("Failed to forward sACN frame",
			zap.Uint16("sacn_universe", sacnUniverse),
			zap.Uint16("gateway_universe", target),
			zap.Error(err),
		)
	}
}

// padUniverse zero-pads a frame to the full universe size. sACN sources
// may transmit fewer than 512 slots.
func padUniverse(data []byte) []byte {
	if len(data) >= protocol.UniverseSize {
		return data[:protocol.UniverseSize]
	}
	padded := make([]byte, protocol.UniverseSize)
	copy(padded, data)
	return padded
}

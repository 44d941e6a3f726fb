package lw14

import (
	"time"

	"dalicode-go/errcode"
)

// Config controls the engine's timing. All fields are optional; zero values
// select the defaults below.
type Config struct {
	// Timeout bounds the wait for a transaction to complete when the
	// caller passes a zero timeout to DaliCommand. Default 150 ms.
	Timeout time.Duration
	// SettleDelay is slept between writing a forward frame and the first
	// status read. Without it some hosts observe the write overlapping
	// the next status read and report stale status. Default 50 ms.
	SettleDelay time.Duration
	// IdlePollDelay is slept between idle polls while waiting for the bus
	// to leave the busy/reply-timeframe state. Default 10 ms.
	IdlePollDelay time.Duration
	// IdlePollLimit bounds the idle poll. One more status read than the
	// limit is performed before giving up with BusBusy. Default 25.
	IdlePollLimit int
	// CompletePollDelay is slept between completion polls. Default 1 ms.
	CompletePollDelay time.Duration
}

// Adapter drives one LW14 bridge. It is not safe for concurrent use:
// interleaving two transactions against one bridge corrupts both.
type Adapter struct {
	transport Transport
	cfg       Config
}

// New returns an Adapter over the given transport with default timing.
func New(t Transport) *Adapter {
	a := &Adapter{transport: t}
	a.Configure(Config{})
	return a
}

// Configure applies cfg, filling unset fields with defaults.
func (a *Adapter) Configure(cfg Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 150 * time.Millisecond
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 50 * time.Millisecond
	}
	if cfg.IdlePollDelay <= 0 {
		cfg.IdlePollDelay = 10 * time.Millisecond
	}
	if cfg.IdlePollLimit <= 0 {
		cfg.IdlePollLimit = 25
	}
	if cfg.CompletePollDelay <= 0 {
		cfg.CompletePollDelay = 1 * time.Millisecond
	}
	a.cfg = cfg
}

// DelayMicroseconds exposes the transport's delay to codec-level commands
// that need inter-frame gaps.
func (a *Adapter) DelayMicroseconds(us uint32) {
	a.transport.DelayMicroseconds(us)
}

func (a *Adapter) status() (Status, error) {
	var buf [1]byte
	if err := a.transport.ReadRegister(RegStatus, buf[:]); err != nil {
		return 0, errcode.I2CError
	}
	return Status(buf[0]), nil
}

// DaliCommand performs one DALI transaction: the forward frame {first, data}
// followed, if reply is non-empty, by one backward frame byte stored in
// reply[0]. A zero timeout selects the configured default. len(reply) must be
// 0 or 1; a DALI backward frame is a single byte.
//
// Errors are classified from the status register: BusError for physical
// faults and overruns, FrameError for collisions, BusBusy when the bus never
// goes idle, Timeout when no completion is seen within the deadline, and
// I2CError when the transport itself fails.
func (a *Adapter) DaliCommand(first, data byte, reply []byte, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = a.cfg.Timeout
	}
	var buf [2]byte

	// Wait for an idle bus. A timed-out earlier transaction can leave the
	// bridge holding an unread backward frame forever, so a pending valid
	// reply is drained through the command register first. The drain read
	// is fire-and-forget: any I²C failure surfaces on the next status read.
	for i := 0; ; i++ {
		status, err := a.status()
		if err != nil {
			return err
		}
		if status.BusError() {
			return errcode.BusError
		}
		if status.ValidReply() {
			_ = a.transport.ReadRegister(RegCommand, buf[:1])
			continue
		}
		if !status.Busy() && !status.ReplyTimeframe() {
			break
		}
		if i >= a.cfg.IdlePollLimit {
			return errcode.BusBusy
		}
		a.transport.DelayMicroseconds(uint32(a.cfg.IdlePollDelay / time.Microsecond))
	}

	buf[0] = first
	buf[1] = data
	if err := a.transport.WriteRegister(RegCommand, buf[:2]); err != nil {
		return errcode.I2CError
	}

	// Let the frame leave the bridge before polling again; otherwise the
	// next status read can overlap the write and report stale state.
	a.transport.DelayMicroseconds(uint32(a.cfg.SettleDelay / time.Microsecond))

	timeoutMs := uint32(timeout / time.Millisecond)
	start := a.transport.Millis()
	for {
		status, err := a.status()
		if err != nil {
			return err
		}
		if status.FrameError() {
			return errcode.FrameError
		}
		if status.BusError() {
			return errcode.BusError
		}
		if status.Overrun() {
			// A reply arrived while a previous one was unread; data
			// is already lost.
			return errcode.BusError
		}
		if len(reply) == 0 && !status.Busy() {
			return nil
		}
		if status.ValidReply() {
			break
		}
		if a.transport.Millis()-start > timeoutMs {
			return errcode.Timeout
		}
		a.transport.DelayMicroseconds(uint32(a.cfg.CompletePollDelay / time.Microsecond))
	}

	if err := a.transport.ReadRegister(RegCommand, reply[:1]); err != nil {
		return errcode.I2CError
	}
	return nil
}

// Signature reads the 6-byte device signature from the bridge.
func (a *Adapter) Signature() ([6]byte, error) {
	var sig [6]byte
	if err := a.transport.ReadRegister(RegSignature, sig[:]); err != nil {
		return sig, errcode.I2CError
	}
	return sig, nil
}

// WriteConfig writes the bridge configuration register.
func (a *Adapter) WriteConfig(v byte) error {
	if err := a.transport.WriteRegister(RegConfig, []byte{v}); err != nil {
		return errcode.I2CError
	}
	return nil
}

// ChangeAddress reprograms the bridge's I²C slave address. The register
// wants the new address followed by its complement as a plausibility check.
// The change takes effect immediately; the Transport must be reopened on the
// new address afterwards.
func (a *Adapter) ChangeAddress(newAddr byte) error {
	if err := a.transport.WriteRegister(RegAddress, []byte{newAddr, ^newAddr}); err != nil {
		return errcode.I2CError
	}
	return nil
}

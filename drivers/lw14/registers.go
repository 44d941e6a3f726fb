// Package lw14 provides a driver for the LW14 I²C-to-DALI bridge.
//
// The bridge exposes the DALI bus through a handful of 8-bit registers on a
// fixed 7-bit I²C address. A forward frame is written as two bytes to the
// command register; completion and backward frames are signalled only through
// the status register, which the driver polls. One Adapter drives one bridge
// and performs one transaction at a time; callers sharing an Adapter across
// goroutines must serialise.
package lw14

// 7-bit I²C address the bridge ships with.
const DefaultAddress = 0x23

// Register map.
const (
	RegStatus    = 0x00 // read only, 1 byte
	RegCommand   = 0x01 // write: 2 bytes (addr, data); read: reply byte
	RegConfig    = 0x02 // write only, 1 byte
	RegSignature = 0xF0 // read only, 6 bytes
	RegAddress   = 0xFE // write only, 2 bytes; changes the I²C address
)

// Status is the bridge status register. One byte carrying both the bus state
// and the state of the last command.
type Status byte

// LSBByteCount is the low bit of the received reply byte count.
func (s Status) LSBByteCount() bool { return s&(1<<0) != 0 }

// MSBByteCount is the high bit of the received reply byte count.
func (s Status) MSBByteCount() bool { return s&(1<<1) != 0 }

// ReplyTimeframe reports that less than 22 Te have passed since the last
// forward frame, i.e. the bus is still inside the reply window.
func (s Status) ReplyTimeframe() bool { return s&(1<<2) != 0 }

// ValidReply reports that a backward frame has been captured and awaits
// reading from the command register.
func (s Status) ValidReply() bool { return s&(1<<3) != 0 }

// FrameError reports a malformed frame on the bus.
func (s Status) FrameError() bool { return s&(1<<4) != 0 }

// Overrun reports that a reply arrived while a previous one was unread.
func (s Status) Overrun() bool { return s&(1<<5) != 0 }

// Busy reports that the bridge is currently driving or sampling a frame.
func (s Status) Busy() bool { return s&(1<<6) != 0 }

// BusError reports a physical bus fault: short, no power, line stuck.
func (s Status) BusError() bool { return s&(1<<7) != 0 }

func (s Status) String() string {
	buf := make([]byte, 0, 64)
	names := [...]struct {
		name string
		set  bool
	}{
		{"replyTimeframe", s.ReplyTimeframe()},
		{"validReply", s.ValidReply()},
		{"frameError", s.FrameError()},
		{"overrun", s.Overrun()},
		{"busy", s.Busy()},
		{"busError", s.BusError()},
	}
	for _, f := range names {
		if !f.set {
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, f.name...)
	}
	if len(buf) == 0 {
		return "idle"
	}
	return string(buf)
}

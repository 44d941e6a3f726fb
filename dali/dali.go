// Package dali implements the DALI (IEC 62386) command set for control gear:
// addressing, direct arc power control, configuration and query commands, and
// the random-address search used to commission freshly installed gear.
//
// The package is transport-agnostic. Everything is expressed against Bus,
// which transacts one forward frame (two bytes) and optionally one backward
// frame (one byte); drivers/lw14 provides the implementation for the LW14
// I²C bridge. All operations are synchronous and must not be interleaved on
// one bus.
package dali

import "time"

// DefaultTimeout bounds the wait for one frame to complete. The DALI reply
// window is 22 Te (~9.2 ms); 150 ms leaves generous room for the bridge's
// own forwarding latency.
const DefaultTimeout = 150 * time.Millisecond

// Bus transacts DALI frames. DaliCommand sends the forward frame
// {first, data}; when reply is non-empty one backward-frame byte is stored
// in reply[0]. Errors carry an errcode.Code.
type Bus interface {
	DaliCommand(first, data byte, reply []byte, timeout time.Duration) error
	DelayMicroseconds(us uint32)
}

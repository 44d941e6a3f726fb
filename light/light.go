// Package light exposes one control gear as a dimmable light with a
// normalised 0..1 brightness, the shape home-automation integrations expect.
package light

import (
	"dalicode-go/dali"
	"dalicode-go/x/mathx"
)

// Light wraps a gear address on a bus. It keeps no mutable gear state
// besides the brightness captured at setup for restoring.
type Light struct {
	bus  dali.Bus
	addr dali.Address

	restore    float32
	hasRestore bool
}

// New returns a Light for addr. Call Setup before first use.
func New(bus dali.Bus, addr dali.Address) *Light {
	return &Light{bus: bus, addr: addr}
}

// Setup selects the logarithmic dimming curve and samples the current arc
// power. A lamp that is already on keeps its level: the brightness is
// remembered and reported by RestoreBrightness so the integration can adopt
// it instead of switching the lamp off at boot.
func (l *Light) Setup() error {
	if err := dali.SelectDimmingCurve.Send(l.bus, l.addr, 0); err != nil {
		return err
	}
	level, err := dali.QueryActualLevel.Query(l.bus, l.addr)
	if err != nil {
		return err
	}
	if level > 0 {
		l.restore = float32(level) / 254
		l.hasRestore = true
	}
	return nil
}

// RestoreBrightness returns the brightness found at setup and whether the
// lamp was on. The value is consumed: a second call reports false.
func (l *Light) RestoreBrightness() (float32, bool) {
	b, ok := l.restore, l.hasRestore
	l.restore, l.hasRestore = 0, false
	return b, ok
}

// SetBrightness drives the arc power to b, clamped to [0, 1]. Zero switches
// the lamp off.
func (l *Light) SetBrightness(b float32) error {
	b = mathx.Clamp(b, 0, 1)
	return dali.DirectArc(l.bus, l.addr, uint8(254*b))
}

// On recalls the gear's configured maximum level.
func (l *Light) On() error {
	return dali.RecallMaxLevel.Send(l.bus, l.addr)
}

// Off switches the lamp off immediately.
func (l *Light) Off() error {
	return dali.DirectArc(l.bus, l.addr, 0)
}

// Brightness reads the actual arc power back as 0..1.
func (l *Light) Brightness() (float32, error) {
	level, err := dali.QueryActualLevel.Query(l.bus, l.addr)
	if err != nil {
		return 0, err
	}
	return float32(level) / 254, nil
}

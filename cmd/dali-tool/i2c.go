package main

import (
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// periphTransport implements lw14.Transport over a periph.io I²C device.
// Register reads are two separate transactions with a short pause between
// them; the bridge does not implement repeated-start reads reliably.
type periphTransport struct {
	dev   i2c.Dev
	bus   i2c.BusCloser
	start time.Time
}

func openTransport(busName string, addr uint16) (*periphTransport, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, err
	}
	return &periphTransport{
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		bus:   bus,
		start: time.Now(),
	}, nil
}

func (t *periphTransport) Close() error { return t.bus.Close() }

func (t *periphTransport) ReadRegister(reg byte, buf []byte) error {
	if err := t.dev.Tx([]byte{reg}, nil); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)
	return t.dev.Tx(nil, buf)
}

func (t *periphTransport) WriteRegister(reg byte, data []byte) error {
	buf := make([]byte, 1+len(data))
	buf[0] = reg
	copy(buf[1:], data)
	return t.dev.Tx(buf, nil)
}

func (t *periphTransport) DelayMicroseconds(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

func (t *periphTransport) Millis() uint32 {
	return uint32(time.Since(t.start) / time.Millisecond)
}

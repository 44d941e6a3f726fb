package dali

// MemoryLocation describes a big-endian unsigned value of Size bytes inside
// a gear's memory bank. Reading loads the bank into DTR1 and the starting
// offset into DTR0; the gear auto-increments the offset after each
// READ MEMORY LOCATION reply.
type MemoryLocation struct {
	Bank     byte
	Location byte
	Size     int
}

// Bank 0, offset 0x03: Global Trade Item Number, 6 bytes.
var MemoryBank0GTIN = MemoryLocation{Bank: 0, Location: 0x03, Size: 6}

// Bank 0, offset 0x0B: identification or serial number of the bus unit,
// 8 bytes.
var MemoryBank0GearIdentificationNumber = MemoryLocation{Bank: 0, Location: 0x0B, Size: 8}

// Read fetches the value from addr, assembled big-endian.
func (m MemoryLocation) Read(bus Bus, addr Address) (uint64, error) {
	if err := DataTransferRegister1(bus, m.Bank); err != nil {
		return 0, err
	}
	if err := DataTransferRegister(bus, m.Location); err != nil {
		return 0, err
	}
	var value uint64
	var buf [1]byte
	for i := 0; i < m.Size; i++ {
		if err := bus.DaliCommand(addr.Command(), saReadMemoryLocation, buf[:], DefaultTimeout); err != nil {
			return 0, err
		}
		value |= uint64(buf[0]) << ((m.Size - 1 - i) * 8)
	}
	return value, nil
}

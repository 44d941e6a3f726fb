package dali

import (
	"dalicode-go/errcode"
)

// CommissionConfig controls short-address assignment. All fields are
// optional.
type CommissionConfig struct {
	// Mode defaults to InitialiseAll, wiping and reassigning every gear.
	// InitialiseNew only addresses gear that have no short address yet.
	Mode InitialiseMode
	// MaxIterations bounds the outer search loop. A gear that repeatedly
	// fails to withdraw is re-found on every iteration; the bound keeps
	// that from looping forever. Default 64, the short-address space.
	MaxIterations int
	// Logf receives progress and non-fatal diagnostics. nil is silent.
	Logf func(format string, args ...any)
}

// AssignedGear reports one gear addressed during commissioning.
type AssignedGear struct {
	Short      uint8
	RandomAddr SearchAddr
	// ID is the gear identification number from memory bank 0, or 0 if
	// the read failed.
	ID uint64
}

// Commission assigns sequential short addresses 0, 1, 2, … to gear on the
// bus. With InitialiseAll every existing short address is erased first, so
// the bus ends up numbered densely from zero.
//
// Each gear is found by binary search on its 24-bit random address: for each
// bit from MSB to LSB the search address probes candidate|bit and COMPARE
// answers whether any remaining gear lies at or below the probe. After 24
// rounds candidate is the ceiling just below the smallest random address
// present; candidate+1 is that address. The gear is then withdrawn,
// programmed and verified. A gear that fails a sanity check is skipped, not
// fatal: it is either re-found on a later iteration or left unaddressed.
func Commission(bus Bus, cfg CommissionConfig) ([]AssignedGear, error) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 64
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// Lamps off while addresses change hands.
	if err := Off.Send(bus, Broadcast); err != nil {
		return nil, errcode.Wrap("off", err)
	}

	if cfg.Mode == InitialiseAll {
		// Erase every existing short address so commissioning starts
		// from a known blank state.
		if err := DataTransferRegister(bus, 0xFF); err != nil {
			return nil, errcode.Wrap("load dtr0", err)
		}
		if err := StoreDTRAsShortAddress(bus, Broadcast); err != nil {
			return nil, errcode.Wrap("store dtr as short address", err)
		}
	}

	// Cancel any initialisation still pending from an earlier run.
	if err := Terminate(bus); err != nil {
		return nil, errcode.Wrap("terminate", err)
	}

	if err := Initialise(bus, cfg.Mode); err != nil {
		return nil, errcode.Wrap("initialise", err)
	}
	if err := Randomise(bus); err != nil {
		return nil, errcode.Wrap("randomise", err)
	}
	// Gear may take up to 100 ms to settle on a random address.
	bus.DelayMicroseconds(100000)

	var assigned []AssignedGear
	short := uint8(0)
	for iter := 0; iter < cfg.MaxIterations && short <= 63; iter++ {
		candidate, err := searchSmallest(bus, logf)
		if err != nil {
			return assigned, err
		}
		if candidate == uint32(SearchAddrMax) {
			// All 24 bits set and still nobody at or below: the
			// bus is exhausted.
			break
		}

		// The search finds the ceiling; the smallest present random
		// address is one above.
		addr := SearchAddr(candidate + 1)
		logf("found gear at random address 0x%06x", addr.Value())

		// The gear must still answer at its own address. It may have
		// powered off mid-search; skip and let the next iteration
		// re-discover whatever is left.
		ok, err := compareAt(bus, addr)
		if err != nil {
			return assigned, errcode.Wrap("sanity compare", err)
		}
		if !ok {
			logf("gear at 0x%06x not matched in sanity check, skipping", addr.Value())
			continue
		}

		if err := SearchAddrs(bus, addr); err != nil {
			return assigned, errcode.Wrap("search address", err)
		}
		if err := Withdraw(bus); err != nil {
			return assigned, errcode.Wrap("withdraw", err)
		}

		// A withdrawn gear must stop answering COMPARE. If it keeps
		// answering it would be re-found forever; skip it without
		// programming and keep going (bounded by MaxIterations).
		ok, err = compareAt(bus, addr)
		if err != nil {
			return assigned, errcode.Wrap("sanity compare", err)
		}
		if ok {
			logf("gear at 0x%06x did not withdraw, skipping", addr.Value())
			continue
		}

		if err := ProgramShortAddress(bus, short); err != nil {
			return assigned, errcode.Wrap("program short address", err)
		}
		ok, err = VerifyShortAddress(bus, short)
		if err != nil {
			return assigned, errcode.Wrap("verify short address", err)
		}
		if !ok {
			return assigned, &errcode.E{C: errcode.Timeout, Op: "verify short address",
				Msg: "gear did not confirm programmed address"}
		}

		gear := AssignedGear{Short: short, RandomAddr: addr}
		id, err := MemoryBank0GearIdentificationNumber.Read(bus, ShortAddress(short))
		if err != nil {
			logf("reading gear id of short address %d: %v", short, err)
		} else {
			gear.ID = id
		}
		logf("programmed short address %d (id %d)", short, gear.ID)

		assigned = append(assigned, gear)
		short++
	}

	if err := Terminate(bus); err != nil {
		return assigned, errcode.Wrap("terminate", err)
	}
	return assigned, nil
}

// searchSmallest runs the 24-round binary search and returns the ceiling of
// the smallest random address still answering COMPARE, or SearchAddrMax if
// none does.
func searchSmallest(bus Bus, logf func(string, ...any)) (uint32, error) {
	candidate := uint32(0)
	for i := 23; i >= 0; i-- {
		probe := candidate | 1<<uint(i)
		ok, err := compareAt(bus, SearchAddr(probe))
		if err != nil {
			return 0, errcode.Wrap("compare", err)
		}
		if ok {
			// Some gear lies at or below the probe: the bit stays
			// clear to tighten the upper bound.
			logf("probe 0x%06x: yes", probe)
		} else {
			// Nobody at or below: the smallest address is above,
			// the bit is set.
			candidate |= 1 << uint(i)
			logf("probe 0x%06x: no", probe)
		}
	}
	return candidate, nil
}

// compareAt sets the search address and runs COMPARE. A frame error means
// several gear answered at once, which is still a "yes".
func compareAt(bus Bus, addr SearchAddr) (bool, error) {
	if err := SearchAddrs(bus, addr); err != nil {
		return false, err
	}
	ok, err := Compare(bus)
	if errcode.Of(err) == errcode.FrameError {
		return true, nil
	}
	return ok, err
}

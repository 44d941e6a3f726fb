package dali

import "dalicode-go/errcode"

// Special-command first bytes. These bypass the address codec; the slot a
// short address would occupy carries the command selector instead.
const (
	saTerminate           = 0xA1
	saDTR0                = 0xA3
	saInitialise          = 0xA5
	saRandomise           = 0xA7
	saCompare             = 0xA9
	saWithdraw            = 0xAB
	saSearchAddrH         = 0xB1
	saSearchAddrM         = 0xB3
	saSearchAddrL         = 0xB5
	saProgramShortAddress = 0xB7
	saVerifyShortAddress  = 0xB9
	saDTR1                = 0xC3
	saReadMemoryLocation  = 0xC5 // opcode, sent as the data byte after addr.Command()
)

// ControlCommand is a standard command with no reply.
type ControlCommand byte

// Commands 0..9.
const (
	Off                ControlCommand = 0x00
	Up                 ControlCommand = 0x01
	Down               ControlCommand = 0x02
	StepUp             ControlCommand = 0x03
	StepDown           ControlCommand = 0x04
	RecallMaxLevel     ControlCommand = 0x05
	RecallMinLevel     ControlCommand = 0x06
	StepDownAndOff     ControlCommand = 0x07
	OnAndStepUp        ControlCommand = 0x08
	EnableDAPCSequence ControlCommand = 0x09
)

// Send issues the command to addr.
func (c ControlCommand) Send(bus Bus, addr Address) error {
	return bus.DaliCommand(addr.Command(), byte(c), nil, DefaultTimeout)
}

// DirectArc sets the arc power level of addr directly. The value 255 is
// reserved on the wire as "stop fading", so it is folded to 254, the maximum
// level; 0..254 pass through unchanged.
func DirectArc(bus Bus, addr Address, power uint8) error {
	if power == 255 {
		power = 254
	}
	return bus.DaliCommand(addr.DACP(), power, nil, DefaultTimeout)
}

// DirectArcStopFading aborts a running fade on addr, leaving the arc power
// at its current level.
func DirectArcStopFading(bus Bus, addr Address) error {
	return bus.DaliCommand(addr.DACP(), 0xFF, nil, DefaultTimeout)
}

// QueryCommand is a command answered with one backward-frame byte, decoded
// into R.
type QueryCommand[R any] struct {
	opcode byte
	decode func(byte) R
}

// Query issues the command to addr and decodes the reply. A Timeout means no
// gear answered within the reply window and is surfaced to the caller.
func (q QueryCommand[R]) Query(bus Bus, addr Address) (R, error) {
	var buf [1]byte
	if err := bus.DaliCommand(addr.Command(), q.opcode, buf[:], DefaultTimeout); err != nil {
		var zero R
		return zero, err
	}
	return q.decode(buf[0]), nil
}

// Command 144: QUERY STATUS.
var QueryStatus = QueryCommand[StatusResponse]{0x90, decodeStatus}

// Command 160: QUERY ACTUAL LEVEL.
var QueryActualLevel = QueryCommand[uint8]{0xA0, func(b byte) uint8 { return b }}

// Command 237: QUERY GEAR TYPE.
var QueryGearType = QueryCommand[GearTypeResponse]{0xED, decodeGearType}

// Command 238: QUERY DIMMING CURVE.
var QueryDimmingCurve = QueryCommand[DimmingCurve]{0xEE, func(b byte) DimmingCurve { return DimmingCurve(b) }}

// Command 239: QUERY POSSIBLE OPERATING MODES.
var QueryPossibleOperatingModes = QueryCommand[PossibleOperatingModes]{0xEF, decodePossibleOperatingModes}

// Command 240: QUERY FEATURES.
var QueryFeatures = QueryCommand[uint8]{0xF0, func(b byte) uint8 { return b }}

// Command 241: QUERY FAILURE STATUS.
var QueryFailureStatus = QueryCommand[uint8]{0xF1, func(b byte) uint8 { return b }}

// Command 242: QUERY SHORT CIRCUIT.
var QueryShortCircuit = QueryCommand[bool]{0xF2, func(b byte) bool { return b != 0 }}

// Command 252: QUERY OPERATING MODE.
var QueryOperatingMode = QueryCommand[OperatingMode]{0xFC, decodeOperatingMode}

// DTR0Command is a command whose parameter travels through DTR0: the value
// is stored with a special frame first, then the command consumes it. An
// error on the store aborts; the gear's DTR keeps whatever was written,
// which is harmless because DTRs are only consumed by an explicit follow-up.
type DTR0Command byte

// Command 227: SELECT DIMMING CURVE. DTR0 = 0 selects the logarithmic
// curve, 1 the linear curve.
const SelectDimmingCurve = DTR0Command(0xE3)

// Send stores dtr0 and issues the command to addr.
func (c DTR0Command) Send(bus Bus, addr Address, dtr0 byte) error {
	if err := DataTransferRegister(bus, dtr0); err != nil {
		return err
	}
	return bus.DaliCommand(addr.Command(), byte(c), nil, DefaultTimeout)
}

// Command 128: STORE DTR AS SHORT ADDRESS. The standard requires the command
// twice within 100 ms; both frames are sent back to back with no
// interleaving.
func StoreDTRAsShortAddress(bus Bus, addr Address) error {
	if err := bus.DaliCommand(addr.Command(), 0x80, nil, DefaultTimeout); err != nil {
		return err
	}
	return bus.DaliCommand(addr.Command(), 0x80, nil, DefaultTimeout)
}

// Command 257: DATA TRANSFER REGISTER. Stores value in DTR0 of every gear.
func DataTransferRegister(bus Bus, value byte) error {
	return bus.DaliCommand(saDTR0, value, nil, DefaultTimeout)
}

// Command 273: DATA TRANSFER REGISTER 1. Stores value in DTR1 of every gear.
func DataTransferRegister1(bus Bus, value byte) error {
	return bus.DaliCommand(saDTR1, value, nil, DefaultTimeout)
}

// InitialiseMode selects which gear react to INITIALISE.
type InitialiseMode byte

const (
	// InitialiseAll: all control gear shall react.
	InitialiseAll InitialiseMode = 0x00
	// InitialiseNew: only gear without a short address shall react.
	InitialiseNew InitialiseMode = 0xFF
)

// Command 258: INITIALISE. Gear accept addressing commands for 15 minutes.
// Sent twice with a 1 ms gap, as the standard requires.
func Initialise(bus Bus, mode InitialiseMode) error {
	return sendTwice(bus, saInitialise, byte(mode))
}

// InitialiseSingle targets INITIALISE at one gear by its address.
func InitialiseSingle(bus Bus, addr Address) error {
	return sendTwice(bus, saInitialise, addr.Command())
}

// Command 259: RANDOMISE. Each gear picks a fresh 24-bit random address;
// the standard allows up to 100 ms for the selection. Sent twice with a
// 1 ms gap.
func Randomise(bus Bus) error {
	return sendTwice(bus, saRandomise, 0x00)
}

func sendTwice(bus Bus, first, data byte) error {
	if err := bus.DaliCommand(first, data, nil, DefaultTimeout); err != nil {
		return err
	}
	bus.DelayMicroseconds(1000)
	return bus.DaliCommand(first, data, nil, DefaultTimeout)
}

// Command 260: COMPARE. Asks whether any initialised, non-withdrawn gear
// has a random address less than or equal to the current search address.
// No answer within the reply window means "no", so a Timeout is folded to
// false; all other errors propagate.
func Compare(bus Bus) (bool, error) {
	var buf [1]byte
	err := bus.DaliCommand(saCompare, 0x00, buf[:], DefaultTimeout)
	if errcode.Of(err) == errcode.Timeout {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return buf[0] == 0xFF, nil
}

// Command 256: TERMINATE. Cancels a running initialisation on every gear.
func Terminate(bus Bus) error {
	return bus.DaliCommand(saTerminate, 0x00, nil, DefaultTimeout)
}

// Command 261: WITHDRAW. Excludes the gear whose random address equals the
// search address from further COMPARE answers.
func Withdraw(bus Bus) error {
	return bus.DaliCommand(saWithdraw, 0x00, nil, DefaultTimeout)
}

// Commands 264-266: set the 24-bit search address, high byte first.
func SearchAddrs(bus Bus, addr SearchAddr) error {
	if err := bus.DaliCommand(saSearchAddrH, addr.H(), nil, DefaultTimeout); err != nil {
		return err
	}
	if err := bus.DaliCommand(saSearchAddrM, addr.M(), nil, DefaultTimeout); err != nil {
		return err
	}
	return bus.DaliCommand(saSearchAddrL, addr.L(), nil, DefaultTimeout)
}

// Command 267: PROGRAM SHORT ADDRESS. Writes the short address into the
// gear currently selected by the search address.
func ProgramShortAddress(bus Bus, short uint8) error {
	return bus.DaliCommand(saProgramShortAddress, ShortAddress(short).Command(), nil, DefaultTimeout)
}

// ProgramShortAddressDelete clears the short address of the selected gear.
func ProgramShortAddressDelete(bus Bus) error {
	return bus.DaliCommand(saProgramShortAddress, 0xFF, nil, DefaultTimeout)
}

// Command 268: VERIFY SHORT ADDRESS. True if the selected gear confirms the
// short address. As with Compare, a Timeout is the gear's way of saying no.
func VerifyShortAddress(bus Bus, short uint8) (bool, error) {
	var buf [1]byte
	err := bus.DaliCommand(saVerifyShortAddress, ShortAddress(short).Command(), buf[:], DefaultTimeout)
	if errcode.Of(err) == errcode.Timeout {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return buf[0] == 0xFF, nil
}

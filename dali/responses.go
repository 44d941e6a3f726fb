package dali

// StatusResponse is the decoded QUERY STATUS reply.
type StatusResponse struct {
	StatusOK            bool // bit 0
	LampFailure         bool // bit 1
	LampArcPowerOn      bool // bit 2
	LimitError          bool // bit 3
	FadeReady           bool // bit 4
	ResetState          bool // bit 5
	MissingShortAddress bool // bit 6
	PowerFailure        bool // bit 7
}

func decodeStatus(b byte) StatusResponse {
	return StatusResponse{
		StatusOK:            b&(1<<0) != 0,
		LampFailure:         b&(1<<1) != 0,
		LampArcPowerOn:      b&(1<<2) != 0,
		LimitError:          b&(1<<3) != 0,
		FadeReady:           b&(1<<4) != 0,
		ResetState:          b&(1<<5) != 0,
		MissingShortAddress: b&(1<<6) != 0,
		PowerFailure:        b&(1<<7) != 0,
	}
}

// GearTypeResponse is the decoded QUERY GEAR TYPE reply. Only the low four
// bits carry meaning.
type GearTypeResponse struct {
	LEDSupplyIntegrated bool
	LEDModuleIntegrated bool
	ACSupply            bool
	DCSupply            bool
}

func decodeGearType(b byte) GearTypeResponse {
	return GearTypeResponse{
		LEDSupplyIntegrated: b&(1<<0) != 0,
		LEDModuleIntegrated: b&(1<<1) != 0,
		ACSupply:            b&(1<<2) != 0,
		DCSupply:            b&(1<<3) != 0,
	}
}

// DimmingCurve is the QUERY DIMMING CURVE reply.
type DimmingCurve byte

const (
	CurveLogarithmic DimmingCurve = 0
	CurveLinear      DimmingCurve = 1
)

func (c DimmingCurve) String() string {
	if c == CurveLinear {
		return "linear"
	}
	return "logarithmic"
}

// PossibleOperatingModes is the decoded QUERY POSSIBLE OPERATING MODES reply.
type PossibleOperatingModes struct {
	PWM                    bool
	AM                     bool
	OutputCurrentRegulated bool
	HighCurrentPulse       bool
}

func decodePossibleOperatingModes(b byte) PossibleOperatingModes {
	return PossibleOperatingModes{
		PWM:                    b&(1<<0) != 0,
		AM:                     b&(1<<1) != 0,
		OutputCurrentRegulated: b&(1<<2) != 0,
		HighCurrentPulse:       b&(1<<3) != 0,
	}
}

// OperatingMode is the decoded QUERY OPERATING MODE reply.
type OperatingMode struct {
	PWMActive                   bool
	AMActive                    bool
	OutputCurrentRegulated      bool
	HighCurrentPulseActive      bool
	NonLogarithmicDimmingActive bool
}

func decodeOperatingMode(b byte) OperatingMode {
	return OperatingMode{
		PWMActive:                   b&(1<<0) != 0,
		AMActive:                    b&(1<<1) != 0,
		OutputCurrentRegulated:      b&(1<<2) != 0,
		HighCurrentPulseActive:      b&(1<<3) != 0,
		NonLogarithmicDimmingActive: b&(1<<4) != 0,
	}
}

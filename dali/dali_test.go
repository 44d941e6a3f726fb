package dali

import (
	"testing"
	"time"

	"dalicode-go/errcode"
)

// testBus implements Bus and records every frame. Replies and errors are
// scripted per call.
type testBus struct {
	frames []frame
	delays []uint32

	nextErr  error
	reply    byte
	hasReply bool
}

type frame struct {
	first, data byte
	replyLen    int
}

func (b *testBus) DaliCommand(first, data byte, reply []byte, timeout time.Duration) error {
	b.frames = append(b.frames, frame{first, data, len(reply)})
	if b.nextErr != nil {
		return b.nextErr
	}
	if len(reply) > 0 && b.hasReply {
		reply[0] = b.reply
	}
	return nil
}

func (b *testBus) DelayMicroseconds(us uint32) {
	b.delays = append(b.delays, us)
}

func (b *testBus) last() frame {
	return b.frames[len(b.frames)-1]
}

func TestAddressEncoding(t *testing.T) {
	for n := uint8(0); n < 64; n++ {
		a := ShortAddress(n)
		if got, want := a.Command(), n<<1|1; got != want {
			t.Fatalf("ShortAddress(%d).Command() = %#02x, want %#02x", n, got, want)
		}
		if got, want := a.DACP(), n<<1; got != want {
			t.Fatalf("ShortAddress(%d).DACP() = %#02x, want %#02x", n, got, want)
		}
	}
	if got := Broadcast.Command(); got != 0xFF {
		t.Fatalf("Broadcast.Command() = %#02x, want 0xff", got)
	}
	if got := Broadcast.DACP(); got != 0xFE {
		t.Fatalf("Broadcast.DACP() = %#02x, want 0xfe", got)
	}
	if got, want := GroupAddress(3).Command(), byte((0x40|3)<<1|1); got != want {
		t.Fatalf("GroupAddress(3).Command() = %#02x, want %#02x", got, want)
	}
	if got := ShortAddress(200); got != Address(200&63) {
		t.Fatalf("ShortAddress(200) = %#02x, not masked", byte(got))
	}
}

func TestSearchAddrBytes(t *testing.T) {
	s := SearchAddr(0x123456)
	if s.H() != 0x12 || s.M() != 0x34 || s.L() != 0x56 {
		t.Fatalf("SearchAddr bytes = %02x %02x %02x", s.H(), s.M(), s.L())
	}
	if SearchAddrMax.Value() != 0xFFFFFF {
		t.Fatalf("SearchAddrMax = %#x", SearchAddrMax.Value())
	}
}

func TestDirectArc(t *testing.T) {
	bus := &testBus{}
	addr := ShortAddress(10)

	if err := DirectArc(bus, addr, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0x14, 0x00, 0}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}

	// 255 is reserved for "stop fading"; the maximum level is 254.
	if err := DirectArc(bus, addr, 255); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0x14, 0xFE, 0}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}

	if err := DirectArc(bus, addr, 100); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0x14, 100, 0}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}

	if err := DirectArcStopFading(bus, addr); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0x14, 0xFF, 0}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}
}

func TestControlCommands(t *testing.T) {
	commands := []struct {
		cmd    ControlCommand
		opcode byte
	}{
		{Off, 0x00},
		{Up, 0x01},
		{Down, 0x02},
		{StepUp, 0x03},
		{StepDown, 0x04},
		{RecallMaxLevel, 0x05},
		{RecallMinLevel, 0x06},
		{StepDownAndOff, 0x07},
		{OnAndStepUp, 0x08},
		{EnableDAPCSequence, 0x09},
	}
	bus := &testBus{}
	addr := ShortAddress(10)
	for _, tc := range commands {
		if err := tc.cmd.Send(bus, addr); err != nil {
			t.Fatal(err)
		}
		if got, want := bus.last(), (frame{0x15, tc.opcode, 0}); got != want {
			t.Fatalf("opcode %#02x: frame = %+v, want %+v", tc.opcode, got, want)
		}
	}
}

func TestQueryStatus(t *testing.T) {
	bus := &testBus{reply: 0b01010101, hasReply: true}
	status, err := QueryStatus.Query(bus, ShortAddress(10))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0x15, 0x90, 1}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}
	want := StatusResponse{
		StatusOK:            true,
		LampArcPowerOn:      true,
		FadeReady:           true,
		MissingShortAddress: true,
	}
	if status != want {
		t.Fatalf("status = %+v, want %+v", status, want)
	}
}

func TestQueryTimeoutPropagates(t *testing.T) {
	bus := &testBus{nextErr: errcode.Timeout}
	if _, err := QueryStatus.Query(bus, ShortAddress(10)); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v, want timeout", err)
	}
	if _, err := QueryActualLevel.Query(bus, ShortAddress(10)); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestQueryOperatingMode(t *testing.T) {
	bus := &testBus{reply: 0xFF, hasReply: true}
	mode, err := QueryOperatingMode.Query(bus, ShortAddress(10))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0x15, 0xFC, 1}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}
	if !mode.PWMActive || !mode.AMActive || !mode.OutputCurrentRegulated ||
		!mode.HighCurrentPulseActive || !mode.NonLogarithmicDimmingActive {
		t.Fatalf("mode = %+v, want all set", mode)
	}
}

func TestQueryDimmingCurve(t *testing.T) {
	bus := &testBus{reply: 1, hasReply: true}
	curve, err := QueryDimmingCurve.Query(bus, ShortAddress(3))
	if err != nil {
		t.Fatal(err)
	}
	if curve != CurveLinear {
		t.Fatalf("curve = %v, want linear", curve)
	}
	bus.reply = 0
	if curve, _ = QueryDimmingCurve.Query(bus, ShortAddress(3)); curve != CurveLogarithmic {
		t.Fatalf("curve = %v, want logarithmic", curve)
	}
}

func TestTerminate(t *testing.T) {
	bus := &testBus{}
	if err := Terminate(bus); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.last(), (frame{0xA1, 0x00, 0}); got != want {
		t.Fatalf("frame = %+v, want %+v", got, want)
	}
}

func TestStoreDTRAsShortAddressSendsTwice(t *testing.T) {
	bus := &testBus{}
	if err := StoreDTRAsShortAddress(bus, Broadcast); err != nil {
		t.Fatal(err)
	}
	if len(bus.frames) != 2 {
		t.Fatalf("sent %d frames, want 2", len(bus.frames))
	}
	want := frame{0xFF, 0x80, 0}
	if bus.frames[0] != want || bus.frames[1] != want {
		t.Fatalf("frames = %+v, want two of %+v", bus.frames, want)
	}
}

func TestInitialiseAndRandomiseDoubleSend(t *testing.T) {
	bus := &testBus{}
	if err := Initialise(bus, InitialiseAll); err != nil {
		t.Fatal(err)
	}
	if len(bus.frames) != 2 || bus.frames[0] != (frame{0xA5, 0x00, 0}) || bus.frames[1] != bus.frames[0] {
		t.Fatalf("initialise frames = %+v", bus.frames)
	}
	if len(bus.delays) != 1 || bus.delays[0] != 1000 {
		t.Fatalf("initialise delays = %v, want one 1ms gap", bus.delays)
	}

	bus = &testBus{}
	if err := Randomise(bus); err != nil {
		t.Fatal(err)
	}
	if len(bus.frames) != 2 || bus.frames[0] != (frame{0xA7, 0x00, 0}) || bus.frames[1] != bus.frames[0] {
		t.Fatalf("randomise frames = %+v", bus.frames)
	}
	if len(bus.delays) != 1 || bus.delays[0] != 1000 {
		t.Fatalf("randomise delays = %v, want one 1ms gap", bus.delays)
	}
}

func TestInitialiseModes(t *testing.T) {
	bus := &testBus{}
	if err := Initialise(bus, InitialiseNew); err != nil {
		t.Fatal(err)
	}
	if bus.last() != (frame{0xA5, 0xFF, 0}) {
		t.Fatalf("frame = %+v", bus.last())
	}

	bus = &testBus{}
	if err := InitialiseSingle(bus, ShortAddress(5)); err != nil {
		t.Fatal(err)
	}
	if bus.last() != (frame{0xA5, 5<<1 | 1, 0}) {
		t.Fatalf("frame = %+v", bus.last())
	}
}

func TestSearchAddrs(t *testing.T) {
	bus := &testBus{}
	if err := SearchAddrs(bus, SearchAddr(0x123456)); err != nil {
		t.Fatal(err)
	}
	want := []frame{{0xB1, 0x12, 0}, {0xB3, 0x34, 0}, {0xB5, 0x56, 0}}
	if len(bus.frames) != 3 {
		t.Fatalf("sent %d frames, want 3", len(bus.frames))
	}
	for i := range want {
		if bus.frames[i] != want[i] {
			t.Fatalf("frame %d = %+v, want %+v", i, bus.frames[i], want[i])
		}
	}
}

func TestCompareFoldsTimeout(t *testing.T) {
	bus := &testBus{nextErr: errcode.Timeout}
	ok, err := Compare(bus)
	if err != nil || ok {
		t.Fatalf("Compare = %v, %v; want false, nil", ok, err)
	}

	bus = &testBus{reply: 0xFF, hasReply: true}
	if ok, err = Compare(bus); err != nil || !ok {
		t.Fatalf("Compare = %v, %v; want true, nil", ok, err)
	}
	if bus.last() != (frame{0xA9, 0x00, 1}) {
		t.Fatalf("frame = %+v", bus.last())
	}

	bus = &testBus{nextErr: errcode.BusError}
	if _, err = Compare(bus); errcode.Of(err) != errcode.BusError {
		t.Fatalf("err = %v, want bus error", err)
	}
}

func TestVerifyShortAddressFoldsTimeout(t *testing.T) {
	bus := &testBus{nextErr: errcode.Timeout}
	ok, err := VerifyShortAddress(bus, 7)
	if err != nil || ok {
		t.Fatalf("VerifyShortAddress = %v, %v; want false, nil", ok, err)
	}

	bus = &testBus{reply: 0xFF, hasReply: true}
	if ok, err = VerifyShortAddress(bus, 7); err != nil || !ok {
		t.Fatalf("VerifyShortAddress = %v, %v; want true, nil", ok, err)
	}
	if bus.last() != (frame{0xB9, 7<<1 | 1, 1}) {
		t.Fatalf("frame = %+v", bus.last())
	}
}

func TestProgramShortAddress(t *testing.T) {
	bus := &testBus{}
	if err := ProgramShortAddress(bus, 5); err != nil {
		t.Fatal(err)
	}
	if bus.last() != (frame{0xB7, 5<<1 | 1, 0}) {
		t.Fatalf("frame = %+v", bus.last())
	}
	if err := ProgramShortAddressDelete(bus); err != nil {
		t.Fatal(err)
	}
	if bus.last() != (frame{0xB7, 0xFF, 0}) {
		t.Fatalf("frame = %+v", bus.last())
	}
}

func TestSelectDimmingCurve(t *testing.T) {
	bus := &testBus{}
	if err := SelectDimmingCurve.Send(bus, ShortAddress(2), 1); err != nil {
		t.Fatal(err)
	}
	if len(bus.frames) != 2 {
		t.Fatalf("sent %d frames, want 2", len(bus.frames))
	}
	if bus.frames[0] != (frame{0xA3, 0x01, 0}) {
		t.Fatalf("dtr frame = %+v", bus.frames[0])
	}
	if bus.frames[1] != (frame{2<<1 | 1, 0xE3, 0}) {
		t.Fatalf("command frame = %+v", bus.frames[1])
	}

	// An error storing the DTR aborts before the command frame.
	bus = &testBus{nextErr: errcode.BusError}
	if err := SelectDimmingCurve.Send(bus, ShortAddress(2), 1); errcode.Of(err) != errcode.BusError {
		t.Fatalf("err = %v, want bus error", err)
	}
	if len(bus.frames) != 1 {
		t.Fatalf("sent %d frames after DTR failure, want 1", len(bus.frames))
	}
}

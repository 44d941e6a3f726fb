// dali-tool drives DALI control gear through an LW14 I²C bridge.
//
//	dali-tool [-addr N] <i2c-bus> <op> [args...]
//
// Operations:
//
//	initialise        assign short addresses to all gear on the bus
//	blink N           flash the gear at short address N once
//	info N            dump status, level, type and identity of gear N
//	level N VALUE     set the arc power of gear N to VALUE (0..254)
//	off               broadcast OFF
//	shell             interactive mode; the same ops, one per line
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"dalicode-go/dali"
	"dalicode-go/drivers/lw14"
	"dalicode-go/x/mathx"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-addr N] <i2c-bus> OPERATION\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "OPERATION can be")
	fmt.Fprintln(os.Stderr, "  initialise")
	fmt.Fprintln(os.Stderr, "  blink N")
	fmt.Fprintln(os.Stderr, "  info N")
	fmt.Fprintln(os.Stderr, "  level N VALUE")
	fmt.Fprintln(os.Stderr, "  off")
	fmt.Fprintln(os.Stderr, "  shell")
	fmt.Fprintln(os.Stderr, "      where N is a short address 0..63")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("dali-tool: ")

	args := os.Args[1:]
	bridgeAddr := uint16(lw14.DefaultAddress)
	if len(args) >= 2 && args[0] == "-addr" {
		n, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			log.Fatalf("bad bridge address %q: %v", args[1], err)
		}
		bridgeAddr = uint16(n)
		args = args[2:]
	}
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}

	transport, err := openTransport(args[0], bridgeAddr)
	if err != nil {
		log.Fatalf("opening I2C transport: %v", err)
	}
	defer transport.Close()
	bus := lw14.New(transport)

	if err := dispatch(bus, args[1], args[2:]); err != nil {
		log.Fatal(err)
	}
}

func dispatch(bus *lw14.Adapter, op string, args []string) error {
	switch op {
	case "initialise":
		return initialise(bus)
	case "blink":
		return blink(bus, args)
	case "info":
		return info(bus, args)
	case "level":
		return level(bus, args)
	case "off":
		return dali.Off.Send(bus, dali.Broadcast)
	case "shell":
		return shell(bus)
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

func shortAddressArg(args []string) (dali.Address, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing short address argument")
	}
	n, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil || !mathx.Between(n, 0, 63) {
		return 0, fmt.Errorf("bad short address %q", args[0])
	}
	return dali.ShortAddress(uint8(n)), nil
}

func initialise(bus *lw14.Adapter) error {
	gears, err := dali.Commission(bus, dali.CommissionConfig{
		Logf: log.Printf,
	})
	if err != nil {
		return err
	}
	for _, g := range gears {
		fmt.Printf("short %2d  random 0x%06x  id %d\n", g.Short, g.RandomAddr.Value(), g.ID)
	}
	fmt.Printf("%d gear addressed\n", len(gears))
	return nil
}

func blink(bus *lw14.Adapter, args []string) error {
	gear, err := shortAddressArg(args)
	if err != nil {
		return err
	}

	level, err := dali.QueryActualLevel.Query(bus, gear)
	if err != nil {
		return fmt.Errorf("query actual level: %w", err)
	}
	fmt.Printf("actual level: %d\n", level)

	if err := dali.DirectArc(bus, gear, 254); err != nil {
		return err
	}
	time.Sleep(time.Second)

	if level, err = dali.QueryActualLevel.Query(bus, gear); err != nil {
		return fmt.Errorf("query actual level: %w", err)
	}
	fmt.Printf("actual level: %d\n", level)

	if err := dali.DirectArc(bus, gear, 0); err != nil {
		return err
	}

	if level, err = dali.QueryActualLevel.Query(bus, gear); err != nil {
		return fmt.Errorf("query actual level: %w", err)
	}
	fmt.Printf("actual level: %d\n", level)
	return nil
}

func info(bus *lw14.Adapter, args []string) error {
	gear, err := shortAddressArg(args)
	if err != nil {
		return err
	}

	status, err := dali.QueryStatus.Query(bus, gear)
	if err != nil {
		return fmt.Errorf("query status: %w", err)
	}
	fmt.Printf("status: %+v\n", status)

	level, err := dali.QueryActualLevel.Query(bus, gear)
	if err != nil {
		return fmt.Errorf("query actual level: %w", err)
	}
	fmt.Printf("actual level: %d\n", level)

	gearType, err := dali.QueryGearType.Query(bus, gear)
	if err != nil {
		log.Printf("query gear type: %v", err)
	} else {
		fmt.Printf("gear type: %+v\n", gearType)
	}

	curve, err := dali.QueryDimmingCurve.Query(bus, gear)
	if err != nil {
		log.Printf("query dimming curve: %v", err)
	} else {
		fmt.Printf("dimming curve: %s\n", curve)
	}

	mode, err := dali.QueryOperatingMode.Query(bus, gear)
	if err != nil {
		log.Printf("query operating mode: %v", err)
	} else {
		fmt.Printf("operating mode: %+v\n", mode)
	}

	gtin, err := dali.MemoryBank0GTIN.Read(bus, gear)
	if err != nil {
		log.Printf("read gtin: %v", err)
	} else {
		fmt.Printf("gtin: %d\n", gtin)
	}

	id, err := dali.MemoryBank0GearIdentificationNumber.Read(bus, gear)
	if err != nil {
		return fmt.Errorf("read gear identification number: %w", err)
	}
	fmt.Printf("gear identification number: %d\n", id)
	return nil
}

func level(bus *lw14.Adapter, args []string) error {
	gear, err := shortAddressArg(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("missing level argument")
	}
	v, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return fmt.Errorf("bad level %q", args[1])
	}
	return dali.DirectArc(bus, gear, uint8(v))
}

func shell(bus *lw14.Adapter) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		fields, err := shlex.Split(scanner.Text())
		if err != nil {
			log.Printf("parse: %v", err)
			fmt.Print("> ")
			continue
		}
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		if fields[0] == "shell" {
			log.Print("already in a shell")
		} else if err := dispatch(bus, fields[0], fields[1:]); err != nil {
			log.Print(err)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/i2c"

	"twibus/config"
	"twibus/core"
	"twibus/core/sim"
	"twibus/host/i2cconn"
	"twibus/host/serial"
	"twibus/sensor"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	tasks      = flag.Int("tasks", 0, "Number of reader tasks (overrides config)")
	readings   = flag.Int("readings", -1, "Readings per task, 0 = forever (overrides config)")
	interval   = flag.Duration("interval", 0, "Pause between readings (overrides config)")
	busy       = flag.Int("busy", 0, "Address phases the RTC NACKs before answering")
	latency    = flag.Duration("latency", 0, "Simulated duration of one bus phase")
	console    = flag.String("console", "", "Serial device for readings (default stdout)")
	verbose    = flag.Bool("verbose", false, "Enable bus debug output on stderr")
	trace      = flag.Bool("trace", false, "Dump the bus trace on exit")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	core.SetDebugEnabled(cfg.Debug)

	bus, rtc, err := setup(cfg, *latency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := serial.OpenConsole(&serial.Config{Device: cfg.Console.Device, Baud: cfg.Console.Baud})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if _, err := describe(os.Stderr, bus, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// Armed after the scan, which addresses each device once and would
	// spend a busy NACK listing the RTC as absent.
	rtc.SetBusy(*busy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Sensor.Tasks; i++ {
		g.Go(func() error {
			return readLoop(ctx, bus, core.Address(cfg.Sensor.Address), cfg.Sensor, out)
		})
	}
	err = g.Wait()

	st := bus.Stats()
	fmt.Fprintf(os.Stderr, "%s: %d sessions, %d retries, %d spurious interrupts\n",
		bus, st.Sessions, st.Retries, st.Spurious)
	if *trace {
		core.DumpTrace(bus.Trace())
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, then applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}

	if *tasks > 0 {
		cfg.Sensor.Tasks = *tasks
	}
	if *readings >= 0 {
		cfg.Sensor.Readings = *readings
	}
	if *interval > 0 {
		cfg.Sensor.Interval = *interval
	}
	if *console != "" {
		cfg.Console.Device = *console
	}
	if *verbose {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

// setup builds the simulated board: one TWI peripheral with a DS3232 on it
func setup(cfg *config.Config, latency time.Duration) (*core.Bus, *sim.Registers, error) {
	hw := sim.New()
	hw.SetLatency(latency)
	rtc := sim.NewDS3232()
	hw.Attach(cfg.Sensor.Address, rtc)

	bus, err := core.NewBus(hw, cfg.BusConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up bus: %w", err)
	}
	return bus, rtc, nil
}

// describe prints what is on the bus through the periph adapter and the
// RTC's calendar through the ds3231 driver
func describe(w io.Writer, bus *core.Bus, cfg *config.Config) ([]i2c.Addr, error) {
	pb := i2cconn.New(bus)
	defer pb.Close()

	found, err := pb.Scan()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "%s at %d Hz, devices: %v\n", pb, bus.Frequency(), found)

	if core.Address(cfg.Sensor.Address) == sensor.Address {
		now, err := sensor.NewRTC(bus).Time()
		if err != nil {
			return found, fmt.Errorf("failed to read RTC time: %w", err)
		}
		fmt.Fprintf(w, "RTC time: %s\n", now.Format(time.RFC3339))
	}
	return found, nil
}

// readLoop is one temperature task: read, print, sleep
func readLoop(ctx context.Context, bus *core.Bus, addr core.Address, sc config.SensorConfig, out *serial.Console) error {
	for n := 0; sc.Readings == 0 || n < sc.Readings; n++ {
		r, err := sensor.ReadTemperature(bus, addr)
		if err != nil {
			return fmt.Errorf("failed to read temperature: %w", err)
		}
		if err := out.Println(r.Line()); err != nil {
			return fmt.Errorf("failed to print reading: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(sc.Interval):
		}
	}
	return nil
}

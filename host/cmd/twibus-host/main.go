package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"twibus/host/mcu"
	"twibus/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", 9600, "Baud rate of the board's console")
	count   = flag.Int("count", 0, "Stop after this many readings (0 = forever)")
	verbose = flag.Bool("verbose", false, "Print raw console lines")
)

func main() {
	flag.Parse()

	fmt.Println("twibus host - board temperature monitor")

	board := mcu.NewMCU()

	fmt.Printf("Connecting to board on %s...\n", *device)
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	if err := board.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer board.Close()

	var minMilli, maxMilli int32
	for n := 0; *count == 0 || n < *count; n++ {
		s, err := board.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if n == 0 || s.MilliCelsius < minMilli {
			minMilli = s.MilliCelsius
		}
		if n == 0 || s.MilliCelsius > maxMilli {
			maxMilli = s.MilliCelsius
		}

		if *verbose {
			fmt.Println(s.Line)
		}
		fmt.Printf("%s C (min %s, max %s)\n",
			mcu.FormatMilli(s.MilliCelsius), mcu.FormatMilli(minMilli), mcu.FormatMilli(maxMilli))
	}

	if board.Skipped() > 0 {
		fmt.Printf("%d non-temperature lines skipped\n", board.Skipped())
	}
}

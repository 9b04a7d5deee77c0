package serial

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestConsolePrintln(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	if err := c.Println("Temp 25.25 C"); err != nil {
		t.Fatalf("Println failed: %v", err)
	}
	if got := buf.String(); got != "Temp 25.25 C\r\n" {
		t.Errorf("Expected CRLF-terminated line, got %q", got)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close of a stream console failed: %v", err)
	}
}

func TestConsoleLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				c.Println("Temp 25.25 C")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 400 {
		t.Fatalf("Expected 400 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if l != "Temp 25.25 C" {
			t.Fatalf("Line %d corrupted: %q", i, l)
		}
	}
}

func TestOpenConsoleFallsBackToStdout(t *testing.T) {
	c, err := OpenConsole(DefaultConfig(""))
	if err != nil {
		t.Fatalf("OpenConsole failed: %v", err)
	}
	if c.c != nil {
		t.Error("Expected no port to close for stdout console")
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected an error for nil config")
	}
}

func TestOpenMissingDevice(t *testing.T) {
	if _, err := OpenConsole(DefaultConfig("/dev/does-not-exist-twibus")); err == nil {
		t.Error("Expected an error opening a missing device")
	}
}

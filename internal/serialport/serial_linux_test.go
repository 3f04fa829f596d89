//go:build linux

package serialport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/gps_reader/internal/serialport/ptytest"
)

func TestSerialReadsLinesFromTTY(t *testing.T) {
	master, slave := ptytest.Open(t)

	s, err := Serial{}.Open(context.Background(), slave, 4800)
	if err != nil {
		t.Fatalf("Open(%s): %v", slave, err)
	}
	defer s.Close()

	if _, err := master.Write([]byte("$GPTXT,01,01,02,ANTSTATUS=OK*3B\r\n")); err != nil {
		t.Fatalf("write master: %v", err)
	}
	line, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if string(line) != "$GPTXT,01,01,02,ANTSTATUS=OK*3B" {
		t.Errorf("line = %q", line)
	}
}

func TestSerialCloseInterruptsBlockedRead(t *testing.T) {
	_, slave := ptytest.Open(t)

	s, err := Serial{}.Open(context.Background(), slave, 4800)
	if err != nil {
		t.Fatalf("Open(%s): %v", slave, err)
	}

	readErr := make(chan error, 1)
	go func() {
		_, err := s.ReadLine()
		readErr <- err
	}()
	// Let the reader park on the silent device.
	time.Sleep(50 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- s.Close() }()

	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked behind a pending read")
	}

	select {
	case err := <-readErr:
		if !errors.Is(err, ErrIOFailure) {
			t.Errorf("ReadLine after Close = %v, want ErrIOFailure", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLine not interrupted by Close")
	}
}

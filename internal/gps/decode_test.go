package gps

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"
)

const munichGGA = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"

// withChecksum appends the NMEA checksum to body (without '$').
func withChecksum(body string) string {
	var sum uint8
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

func TestDecodeGGA(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fix, err := Decode([]byte(munichGGA), at)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if math.Abs(fix.Latitude-48.1173) > 1e-4 {
		t.Errorf("latitude = %v, want ~48.1173", fix.Latitude)
	}
	if math.Abs(fix.Longitude-11.5167) > 1e-4 {
		t.Errorf("longitude = %v, want ~11.5167", fix.Longitude)
	}
	if !fix.HasAltitude() || math.Abs(*fix.Altitude-545.4) > 1e-9 {
		t.Errorf("altitude = %v, want 545.4", fix.Altitude)
	}
	if fix.Satellites != 8 {
		t.Errorf("satellites = %d, want 8", fix.Satellites)
	}
	if fix.Quality != 1 {
		t.Errorf("quality = %d, want 1", fix.Quality)
	}
	if fix.Talker != "GP" {
		t.Errorf("talker = %q, want GP", fix.Talker)
	}
	if !fix.CapturedAt.Equal(at) {
		t.Errorf("captured at = %v, want %v", fix.CapturedAt, at)
	}
}

func TestDecodeSouthWest(t *testing.T) {
	line := withChecksum("GNGGA,101010,3351.000,S,15112.000,W,2,11,0.7,12.0,M,0.0,M,,")
	fix, err := Decode([]byte(line), time.Time{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if fix.Latitude >= 0 || fix.Longitude >= 0 {
		t.Errorf("got lat=%v lon=%v, want both negative", fix.Latitude, fix.Longitude)
	}
	if fix.Quality != 2 || fix.Talker != "GN" {
		t.Errorf("got quality=%d talker=%q", fix.Quality, fix.Talker)
	}
}

func TestDecodeMissingAltitude(t *testing.T) {
	line := withChecksum("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,,M,,M,,")
	fix, err := Decode([]byte(line), time.Time{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if fix.HasAltitude() {
		t.Errorf("altitude = %v, want nil", *fix.Altitude)
	}
	if got := fix.AltitudeOr(-1); got != -1 {
		t.Errorf("AltitudeOr = %v, want -1", got)
	}
}

func TestDecodeFailures(t *testing.T) {
	tables := []struct {
		name string
		line []byte
		want error
	}{
		{"truncated", []byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46"), ErrMalformed},
		{"bad checksum", []byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*48"), ErrMalformed},
		{"not nmea", []byte("hello world"), ErrMalformed},
		{"empty", []byte(""), ErrMalformed},
		{"empty latitude", []byte(withChecksum("GPGGA,123519,,,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")), ErrMalformed},
		{"empty quality", []byte(withChecksum("GPGGA,123519,4807.038,N,01131.000,E,,08,0.9,545.4,M,46.9,M,,")), ErrMalformed},
		{"rmc", []byte("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"), ErrNotApplicable},
		{"gsa", []byte(withChecksum("GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0")), ErrNotApplicable},
		{"vendor", []byte(withChecksum("PSTMVER,GNSSLIB_8.4.9.15")), ErrNotApplicable},
		{"invalid utf8", []byte{'$', 'G', 'P', 0xff, 0xfe, '*', '0', '0'}, ErrEncoding},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode(table.line, time.Time{})
			if err == nil {
				t.Fatalf("Decode(%q) succeeded, want %v", table.line, table.want)
			}
			if !errors.Is(err, table.want) {
				t.Errorf("Decode(%q) = %v, want %v", table.line, err, table.want)
			}
			if !IsRoutine(err) {
				t.Errorf("IsRoutine(%v) = false", err)
			}
		})
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	at := time.Unix(1700000000, 0)
	for _, line := range []string{munichGGA, "$GPGGA,123519,4807.038*00", "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"} {
		f1, err1 := Decode([]byte(line), at)
		f2, err2 := Decode([]byte(line), at)
		if !reflect.DeepEqual(f1, f2) {
			t.Errorf("%q: fixes differ: %+v vs %+v", line, f1, f2)
		}
		if fmt.Sprint(err1) != fmt.Sprint(err2) {
			t.Errorf("%q: errors differ: %v vs %v", line, err1, err2)
		}
	}
}

func TestIsRoutine(t *testing.T) {
	if IsRoutine(errors.New("boom")) {
		t.Error("plain error reported as routine")
	}
	if IsRoutine(nil) {
		t.Error("nil reported as routine")
	}
	wrapped := fmt.Errorf("wrap: %w", &DecodeError{Kind: KindNotApplicable})
	if !IsRoutine(wrapped) {
		t.Error("wrapped decode error not routine")
	}
}

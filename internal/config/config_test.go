package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "gps_config.txt", "# only comments\n\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GPSBaudRate != 4800 {
		t.Errorf("baud = %d, want 4800", cfg.GPSBaudRate)
	}
	if cfg.GPSMinQuality != 1 {
		t.Errorf("min quality = %d, want 1", cfg.GPSMinQuality)
	}
	if cfg.GPSPositionTolerance != 0.001 {
		t.Errorf("tolerance = %v, want 0.001", cfg.GPSPositionTolerance)
	}
	if cfg.ReconnectDelay() != 5*time.Second {
		t.Errorf("reconnect delay = %v, want 5s", cfg.ReconnectDelay())
	}
	if cfg.ReadTimeout() != 0 {
		t.Errorf("read timeout = %v, want 0", cfg.ReadTimeout())
	}
	if !cfg.AutoDetect() {
		t.Error("AutoDetect = false for default port")
	}
}

func TestLoadKeyValue(t *testing.T) {
	path := writeFile(t, "gps_config.txt", strings.Join([]string{
		"MQTT_BROKER = tcp://broker:1883",
		"GPS_SERIAL_PORT=/dev/ttyUSB1",
		"GPS_BAUD_RATE=9600",
		"GPS_MIN_QUALITY=2",
		"GPS_POSITION_TOLERANCE=0.0005",
		"GPS_RECONNECT_DELAY_MS=1000",
		"GPS_READ_TIMEOUT_MS=30000",
		"GPS_DEBUG=true",
		"DISPLAY_UPDATE_INTERVAL=250",
	}, "\n"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://broker:1883" {
		t.Errorf("broker = %q", cfg.MQTTBroker)
	}
	if cfg.GPSSerialPort != "/dev/ttyUSB1" || cfg.AutoDetect() {
		t.Errorf("port = %q autodetect=%v", cfg.GPSSerialPort, cfg.AutoDetect())
	}
	if cfg.GPSBaudRate != 9600 || cfg.GPSMinQuality != 2 || cfg.GPSPositionTolerance != 0.0005 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.ReconnectDelay() != time.Second || cfg.ReadTimeout() != 30*time.Second {
		t.Errorf("timing = %v / %v", cfg.ReconnectDelay(), cfg.ReadTimeout())
	}
	if !cfg.GPSDebug {
		t.Error("debug not set")
	}
	if cfg.DisplayUpdateInterval != 250 {
		t.Errorf("display interval = %d", cfg.DisplayUpdateInterval)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "gps.toml", `
mqtt_broker = "tcp://10.0.0.2:1883"
gps_serial_port = "sim"
gps_baud_rate = 38400
gps_position_tolerance = 0.01
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://10.0.0.2:1883" || cfg.GPSSerialPort != "sim" {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.GPSBaudRate != 38400 || cfg.GPSPositionTolerance != 0.01 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.GPSMinQuality != 1 || cfg.TopicGPS != "gps/fix" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tables := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{"missing equals", "GPS_BAUD_RATE 9600", "invalid config line 1"},
		{"unknown key", "FOO=bar", "unknown config key"},
		{"bad baud", "GPS_BAUD_RATE=fast", "invalid GPS_BAUD_RATE"},
		{"zero baud", "GPS_BAUD_RATE=0", "GPS_BAUD_RATE must be positive"},
		{"negative quality", "GPS_MIN_QUALITY=-1", "GPS_MIN_QUALITY must be >= 0"},
		{"zero tolerance", "GPS_POSITION_TOLERANCE=0", "GPS_POSITION_TOLERANCE must be positive"},
		{"bad debug", "GPS_DEBUG=maybe", "invalid GPS_DEBUG"},
		{"empty broker", "MQTT_BROKER=", "MQTT_BROKER is required"},
	}

	for _, table := range tables {
		path := writeFile(t, "gps_config.txt", table.contents)
		_, err := Load(path)
		if err == nil {
			t.Errorf("%s: Load succeeded, want error containing %q", table.name, table.wantErr)
			continue
		}
		if !strings.Contains(err.Error(), table.wantErr) {
			t.Errorf("%s: error %q does not contain %q", table.name, err, table.wantErr)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

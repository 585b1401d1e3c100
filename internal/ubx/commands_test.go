package ubx

import (
	"testing"

	"gnss-timesetup/internal/config"
	"gnss-timesetup/internal/fixedpoint"
)

func testConfig() config.Config {
	return config.Config{
		Position: config.PositionConfig{AccuracyM: 1.0},
		Timepulse: config.TimepulseConfig{
			PeriodUS:     1000000,
			PeriodLockUS: 1000000,
			LenUS:        0,
			LenLockUS:    100000,
			Polarity:     1,
			Grid:         0,
		},
	}
}

func testPosition() fixedpoint.FixedPosition {
	return fixedpoint.FixedPosition{
		LatMajor: 491234567, LatResidual: 90,
		LonMajor: 80000000, LonResidual: 1,
		HeightMajor: 54210, HeightResidual: -3,
	}
}

func findItem(t *testing.T, items []Item, key string) Item {
	t.Helper()
	for _, it := range items {
		if it.Key == key {
			return it
		}
	}
	t.Fatalf("key %s not in sequence", key)
	return Item{}
}

func TestSequence_EncodedFieldsLand(t *testing.T) {
	items := Sequence(testConfig(), testPosition())
	cases := []struct {
		key   string
		value string
	}{
		{"CFG-TMODE-LAT", "491234567"},
		{"CFG-TMODE-LAT_HP", "90"},
		{"CFG-TMODE-LON", "80000000"},
		{"CFG-TMODE-LON_HP", "1"},
		{"CFG-TMODE-HEIGHT", "54210"},
		{"CFG-TMODE-HEIGHT_HP", "-3"},
	}
	for _, tc := range cases {
		if got := findItem(t, items, tc.key).Value; got != tc.value {
			t.Fatalf("%s=%s want %s", tc.key, got, tc.value)
		}
	}
}

func TestSequence_AccuracyInTenthMillimeters(t *testing.T) {
	items := Sequence(testConfig(), testPosition())
	if got := findItem(t, items, "CFG-TMODE-FIXED_POS_ACC").Value; got != "10000" {
		t.Fatalf("accuracy=%s want 10000", got)
	}
}

func TestSequence_FixedModeAndTimepulse(t *testing.T) {
	items := Sequence(testConfig(), testPosition())
	if got := findItem(t, items, "CFG-TMODE-MODE").Value; got != "2" {
		t.Fatalf("mode=%s want 2 (fixed)", got)
	}
	if got := findItem(t, items, "CFG-TMODE-POS_TYPE").Value; got != "1" {
		t.Fatalf("pos_type=%s want 1 (LLH)", got)
	}
	if got := findItem(t, items, "CFG-TP-PERIOD_TP1").Value; got != "1000000" {
		t.Fatalf("period=%s want 1000000", got)
	}
	if got := findItem(t, items, "CFG-TP-LEN_LOCK_TP1").Value; got != "100000" {
		t.Fatalf("len_lock=%s want 100000", got)
	}
	if got := findItem(t, items, "CFG-TP-POL_TP1").Value; got != "1" {
		t.Fatalf("polarity=%s want 1", got)
	}
}

func TestSequence_PortDisablesAreOptional(t *testing.T) {
	items := Sequence(testConfig(), testPosition())
	for _, key := range []string{"CFG-UART1-ENABLED", "CFG-UART2-ENABLED", "CFG-I2C-ENABLED", "CFG-SPI-ENABLED"} {
		it := findItem(t, items, key)
		if !it.Optional {
			t.Fatalf("%s should be optional", key)
		}
		if it.Value != "0" {
			t.Fatalf("%s=%s want 0", key, it.Value)
		}
	}
	// Position fields must never be optional.
	if findItem(t, items, "CFG-TMODE-LAT").Optional {
		t.Fatalf("CFG-TMODE-LAT must be required")
	}
}

func TestSequence_QuietsNMEAFirst(t *testing.T) {
	items := Sequence(testConfig(), testPosition())
	if items[0].Key != "CFG-USBOUTPROT-NMEA" || items[0].Value != "0" {
		t.Fatalf("first item = %+v, want NMEA disable", items[0])
	}
}

// Package ubx drives the vendor ubxtool utility through gpsd to write the
// receiver's configuration items. It never speaks the binary protocol
// itself; every write is a ubxtool invocation whose acknowledgement output
// is classified as applied, not-applicable or failed.
package ubx

import (
	"fmt"
	"math"

	"gnss-timesetup/internal/config"
	"gnss-timesetup/internal/fixedpoint"
)

// Item is one configuration key/value written to the receiver. Optional
// items target ports that not every receiver variant has; a NAK on them
// skips the item instead of failing the run.
type Item struct {
	Name     string
	Key      string
	Value    string
	Optional bool
}

// Sequence builds the fixed, ordered command list that turns the receiver
// into a fixed-position time source: quiet the unused interfaces, pin the
// measurement rate, fix the surveyed position, and shape timepulse 1.
func Sequence(cfg config.Config, pos fixedpoint.FixedPosition) []Item {
	tp := cfg.Timepulse
	// FIXED_POS_ACC is in 0.1 mm, same unit as the height correction.
	accuracy := uint32(math.Round(cfg.Position.AccuracyM * 1e4))

	return []Item{
		{Name: "disable NMEA on USB", Key: "CFG-USBOUTPROT-NMEA", Value: "0"},
		{Name: "enable UBX on USB", Key: "CFG-USBOUTPROT-UBX", Value: "1"},
		{Name: "disable UART1", Key: "CFG-UART1-ENABLED", Value: "0", Optional: true},
		{Name: "disable UART2", Key: "CFG-UART2-ENABLED", Value: "0", Optional: true},
		{Name: "disable I2C", Key: "CFG-I2C-ENABLED", Value: "0", Optional: true},
		{Name: "disable SPI", Key: "CFG-SPI-ENABLED", Value: "0", Optional: true},

		{Name: "1 Hz measurements", Key: "CFG-RATE-MEAS", Value: "1000"},
		{Name: "one solution per measurement", Key: "CFG-RATE-NAV", Value: "1"},
		{Name: "solutions aligned to UTC", Key: "CFG-RATE-TIMEREF", Value: "0"},

		{Name: "fixed position mode", Key: "CFG-TMODE-MODE", Value: "2"},
		{Name: "position given as lat/lon/height", Key: "CFG-TMODE-POS_TYPE", Value: "1"},
		{Name: "latitude", Key: "CFG-TMODE-LAT", Value: fmt.Sprintf("%d", pos.LatMajor)},
		{Name: "latitude correction", Key: "CFG-TMODE-LAT_HP", Value: fmt.Sprintf("%d", pos.LatResidual)},
		{Name: "longitude", Key: "CFG-TMODE-LON", Value: fmt.Sprintf("%d", pos.LonMajor)},
		{Name: "longitude correction", Key: "CFG-TMODE-LON_HP", Value: fmt.Sprintf("%d", pos.LonResidual)},
		{Name: "height", Key: "CFG-TMODE-HEIGHT", Value: fmt.Sprintf("%d", pos.HeightMajor)},
		{Name: "height correction", Key: "CFG-TMODE-HEIGHT_HP", Value: fmt.Sprintf("%d", pos.HeightResidual)},
		{Name: "position accuracy", Key: "CFG-TMODE-FIXED_POS_ACC", Value: fmt.Sprintf("%d", accuracy)},

		{Name: "timepulse enable", Key: "CFG-TP-TP1_ENA", Value: "1"},
		{Name: "timepulse period", Key: "CFG-TP-PERIOD_TP1", Value: fmt.Sprintf("%d", tp.PeriodUS)},
		{Name: "timepulse period (locked)", Key: "CFG-TP-PERIOD_LOCK_TP1", Value: fmt.Sprintf("%d", tp.PeriodLockUS)},
		{Name: "timepulse length", Key: "CFG-TP-LEN_TP1", Value: fmt.Sprintf("%d", tp.LenUS)},
		{Name: "timepulse length (locked)", Key: "CFG-TP-LEN_LOCK_TP1", Value: fmt.Sprintf("%d", tp.LenLockUS)},
		{Name: "locked settings once synced", Key: "CFG-TP-USE_LOCKED_TP1", Value: "1"},
		{Name: "timepulse polarity", Key: "CFG-TP-POL_TP1", Value: fmt.Sprintf("%d", tp.Polarity)},
		{Name: "timepulse time grid", Key: "CFG-TP-TIMEGRID_TP1", Value: fmt.Sprintf("%d", tp.Grid)},
	}
}

// Package fixedpoint converts decimal-degree coordinates and metric height
// into the receiver's split fixed-point configuration fields.
//
// Each quantity is written to the device as a coarse int32 plus a signed
// high-precision correction in [-99, 99], where major*100 + residual is the
// value in the fine unit: 1e-9 degrees for coordinates, 0.1 mm for height.
package fixedpoint

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// DegreeScale converts degrees into 1e-9 degree units.
	DegreeScale = decimal.New(1, 9)
	// HeightScale converts meters into 0.1 mm units.
	HeightScale = decimal.New(1, 4)
)

// Input bounds checked before encoding. The height window is the receiver's
// documented fixed-position range (±840 m HAE).
var (
	maxLatDeg  = decimal.New(90, 0)
	maxLonDeg  = decimal.New(180, 0)
	maxHeightM = decimal.New(840, 0)
)

// Encode quantizes value*scale to an integer with half-to-even rounding and
// splits it into a coarse field plus a high-precision residual.
//
// Postconditions: major*100 + residual == roundHalfEven(value*scale),
// -99 <= residual <= 99, and the residual never carries a sign opposite to
// the total.
func Encode(value, scale decimal.Decimal) (major int64, residual int8) {
	total := value.Mul(scale).RoundBank(0).IntPart()
	major = total / 100
	rem := total - major*100
	// Fold any full hundred left by truncation back into the coarse field.
	if rem >= 100 {
		major++
		rem -= 100
	} else if rem <= -100 {
		major--
		rem += 100
	}
	return major, int8(rem)
}

// FixedPosition holds the six integers consumed by the receiver's
// fixed-position configuration items.
type FixedPosition struct {
	LatMajor    int32 // 1e-7 degrees
	LatResidual int8  // 1e-9 degrees
	LonMajor    int32 // 1e-7 degrees
	LonResidual int8  // 1e-9 degrees

	HeightMajor    int32 // centimeters
	HeightResidual int8  // 0.1 mm
}

// Reasons reported by InvalidInputError.
const (
	ReasonNotANumber = "not a number"
	ReasonOutOfRange = "out of range"
)

// InvalidInputError reports which position quantity was rejected and why.
type InvalidInputError struct {
	Quantity string // "latitude", "longitude" or "height"
	Value    string
	Reason   string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s %q is invalid: %s", e.Quantity, e.Value, e.Reason)
}

// EncodePosition parses the three decimal strings, validates them against
// the receiver's representable ranges, and encodes them into the six
// fixed-position integers.
func EncodePosition(latDeg, lonDeg, heightM string) (FixedPosition, error) {
	lat, err := parseBounded("latitude", latDeg, maxLatDeg)
	if err != nil {
		return FixedPosition{}, err
	}
	lon, err := parseBounded("longitude", lonDeg, maxLonDeg)
	if err != nil {
		return FixedPosition{}, err
	}
	height, err := parseBounded("height", heightM, maxHeightM)
	if err != nil {
		return FixedPosition{}, err
	}

	var pos FixedPosition
	major, residual := Encode(lat, DegreeScale)
	pos.LatMajor, pos.LatResidual = int32(major), residual
	major, residual = Encode(lon, DegreeScale)
	pos.LonMajor, pos.LonResidual = int32(major), residual
	major, residual = Encode(height, HeightScale)
	pos.HeightMajor, pos.HeightResidual = int32(major), residual
	return pos, nil
}

func parseBounded(quantity, raw string, limit decimal.Decimal) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, &InvalidInputError{Quantity: quantity, Value: raw, Reason: ReasonNotANumber}
	}
	if d.Abs().Cmp(limit) > 0 {
		return decimal.Decimal{}, &InvalidInputError{Quantity: quantity, Value: raw, Reason: ReasonOutOfRange}
	}
	return d, nil
}

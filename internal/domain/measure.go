package domain

import (
	"math"
	"strconv"
)

const (
	ozPerGSM  = 0.0295
	inchPerCM = 0.393701
)

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GSMToOz converts grams per square metre to ounces per square yard.
func GSMToOz(gsm float64) float64 {
	return Round2(gsm * ozPerGSM)
}

// CMToInch converts a width in centimetres to inches.
func CMToInch(cm float64) float64 {
	return Round2(cm * inchPerCM)
}

// FormatMeasure renders a derived measure with exactly two decimals.
func FormatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// DeriveMeasures recomputes oz from gsm and inch from cm. A source that is
// blank or not a positive number blanks its derived field.
func DeriveMeasures(d Draft) Draft {
	out := d.Clone()
	out["oz"] = derive(d, "gsm", GSMToOz)
	out["inch"] = derive(d, "cm", CMToInch)
	return out
}

func derive(d Draft, source string, convert func(float64) float64) string {
	v, ok := d.Number(source)
	if !ok || v <= 0 {
		return ""
	}
	return FormatMeasure(convert(v))
}

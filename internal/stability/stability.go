// Package stability derives the Pasquill-Gifford atmospheric stability
// class (A-F) used for odour dispersion reasoning. The classification is a
// stateless table lookup over solar elevation, cloud cover and wind speed.
package stability

import (
	"math"
	"time"
)

// Class is a Pasquill-Gifford stability category, A (very unstable)
// through F (stable).
type Class string

const (
	ClassA Class = "A"
	ClassB Class = "B"
	ClassC Class = "C"
	ClassD Class = "D"
	ClassE Class = "E"
	ClassF Class = "F"
)

// Insolation is the qualitative daytime solar input class.
type Insolation string

const (
	InsolationStrong   Insolation = "strong"
	InsolationModerate Insolation = "moderate"
	InsolationSlight   Insolation = "slight"
	InsolationNight    Insolation = "night"
)

// SolarElevation computes the sun's elevation angle in degrees at the given
// coordinates and instant, using the simplified astronomical formula
// (solar declination plus hour angle, no atmospheric refraction).
func SolarElevation(latitude, longitude float64, at time.Time) float64 {
	utc := at.UTC()
	dayOfYear := float64(utc.YearDay())

	// Solar declination (Cooper's formula), degrees
	declination := 23.45 * math.Sin(rad(360.0/365.0*(284.0+dayOfYear)))

	// Hour angle: solar time approximated from UTC plus longitude offset,
	// 15 degrees per hour from solar noon
	fractionalHour := float64(utc.Hour()) + float64(utc.Minute())/60.0 + float64(utc.Second())/3600.0
	solarTime := fractionalHour + longitude/15.0
	hourAngle := 15.0 * (solarTime - 12.0)

	sinElevation := math.Sin(rad(latitude))*math.Sin(rad(declination)) +
		math.Cos(rad(latitude))*math.Cos(rad(declination))*math.Cos(rad(hourAngle))

	return deg(math.Asin(clamp(sinElevation, -1, 1)))
}

// InsolationFor buckets solar elevation and cloud cover into a qualitative
// insolation class. Below the horizon is night; heavy overcast (>=85%
// cloud) downgrades the class one step.
func InsolationFor(solarElevation, cloudCoverPct float64) Insolation {
	if solarElevation <= 0 {
		return InsolationNight
	}

	var class Insolation
	switch {
	case solarElevation > 60:
		class = InsolationStrong
	case solarElevation > 35:
		class = InsolationModerate
	default:
		class = InsolationSlight
	}

	if cloudCoverPct >= 85 {
		switch class {
		case InsolationStrong:
			class = InsolationModerate
		case InsolationModerate:
			class = InsolationSlight
		}
	}

	return class
}

// ClassFor maps wind speed (m/s) and insolation to a stability class using
// the Pasquill-Gifford lookup. At night the cloud cover decides between the
// clear (<=50%) and overcast rows.
func ClassFor(windSpeedMS float64, insolation Insolation, cloudCoverPct float64) Class {
	if insolation == InsolationNight {
		return nightClass(windSpeedMS, cloudCoverPct)
	}
	return dayClass(windSpeedMS, insolation)
}

// Classify is the one-shot form: solar elevation from site coordinates and
// time, then the table lookup.
func Classify(latitude, longitude float64, at time.Time, windSpeedMS, cloudCoverPct float64) Class {
	elevation := SolarElevation(latitude, longitude, at)
	insolation := InsolationFor(elevation, cloudCoverPct)
	return ClassFor(windSpeedMS, insolation, cloudCoverPct)
}

func dayClass(wind float64, insolation Insolation) Class {
	// Rows: wind bucket; columns: strong / moderate / slight
	switch {
	case wind < 2:
		return pick(insolation, ClassA, ClassA, ClassB)
	case wind < 3:
		return pick(insolation, ClassA, ClassB, ClassC)
	case wind < 5:
		return pick(insolation, ClassB, ClassB, ClassC)
	case wind < 6:
		return pick(insolation, ClassC, ClassC, ClassD)
	default:
		// Strong mechanical mixing dominates regardless of insolation
		return ClassD
	}
}

func nightClass(wind, cloudCoverPct float64) Class {
	if cloudCoverPct <= 50 {
		switch {
		case wind < 2:
			return ClassF
		case wind < 5:
			return ClassE
		default:
			return ClassD
		}
	}
	if wind < 3 {
		return ClassE
	}
	return ClassD
}

func pick(insolation Insolation, strong, moderate, slight Class) Class {
	switch insolation {
	case InsolationStrong:
		return strong
	case InsolationModerate:
		return moderate
	default:
		return slight
	}
}

func rad(degrees float64) float64 { return degrees * math.Pi / 180.0 }
func deg(radians float64) float64 { return radians * 180.0 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

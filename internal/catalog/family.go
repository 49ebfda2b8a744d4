// Package catalog holds the static table of joint metadata and the
// physical-unit/wire conversions for each actuator family.
package catalog

import "math"

// Family identifies one of the five actuator hardware variants. Each family
// has its own min/max endpoints for angle, velocity, torque and gains.
type Family int

const (
	Robstride00 Family = iota
	Robstride01
	Robstride02
	Robstride03
	Robstride04
)

func (f Family) String() string {
	switch f {
	case Robstride00:
		return "Robstride00"
	case Robstride01:
		return "Robstride01"
	case Robstride02:
		return "Robstride02"
	case Robstride03:
		return "Robstride03"
	case Robstride04:
		return "Robstride04"
	default:
		return "unknown"
	}
}

// FamilyRanges holds the linear wire<->physical endpoints for one family.
type FamilyRanges struct {
	AngleMin, AngleMax       float64
	VelocityMin, VelocityMax float64
	TorqueMin, TorqueMax     float64
	KPMin, KPMax             float64
	KDMin, KDMax             float64
}

// Ranges returns the endpoint table for f, per original_source/firmware/actuators.py.
func (f Family) Ranges() FamilyRanges {
	switch f {
	case Robstride00:
		return FamilyRanges{
			AngleMin: -4.0 * math.Pi, AngleMax: 4.0 * math.Pi,
			VelocityMin: -33.0, VelocityMax: 33.0,
			TorqueMin: -14.0, TorqueMax: 14.0,
			KPMin: 0.0, KPMax: 500.0,
			KDMin: 0.0, KDMax: 5.0,
		}
	case Robstride01:
		return FamilyRanges{
			AngleMin: -4.0 * math.Pi, AngleMax: 4.0 * math.Pi,
			VelocityMin: -44.0, VelocityMax: 44.0,
			TorqueMin: -17.0, TorqueMax: 17.0,
			KPMin: 0.0, KPMax: 500.0,
			KDMin: 0.0, KDMax: 5.0,
		}
	case Robstride02:
		return FamilyRanges{
			AngleMin: -4.0 * math.Pi, AngleMax: 4.0 * math.Pi,
			VelocityMin: -44.0, VelocityMax: 44.0,
			TorqueMin: -17.0, TorqueMax: 17.0,
			KPMin: 0.0, KPMax: 500.0,
			KDMin: 0.0, KDMax: 5.0,
		}
	case Robstride03:
		return FamilyRanges{
			AngleMin: -4.0 * math.Pi, AngleMax: 4.0 * math.Pi,
			VelocityMin: -20.0, VelocityMax: 20.0,
			TorqueMin: -60.0, TorqueMax: 60.0,
			KPMin: 0.0, KPMax: 5000.0,
			KDMin: 0.0, KDMax: 100.0,
		}
	case Robstride04:
		return FamilyRanges{
			AngleMin: -4.0 * math.Pi, AngleMax: 4.0 * math.Pi,
			VelocityMin: -15.0, VelocityMax: 15.0,
			TorqueMin: -120.0, TorqueMax: 120.0,
			KPMin: 0.0, KPMax: 5000.0,
			KDMin: 0.0, KDMax: 100.0,
		}
	default:
		return FamilyRanges{}
	}
}

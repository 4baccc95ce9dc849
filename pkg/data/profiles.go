package data

import (
	"math"
	"math/rand"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// ProfilePoint is one sampled value of a load or generation profile
type ProfilePoint struct {
	Time  time.Time
	Value fpdecimal.Decimal
}

// Profile is a time series of load or generation values on a fixed grid.
// It implements Source; the observation time is ignored because profiles
// are forecasts known in advance.
type Profile struct {
	name   string
	step   time.Duration
	points []ProfilePoint
}

// Name identifies the profile
func (p *Profile) Name() string {
	return p.name
}

// Points returns the underlying samples
func (p *Profile) Points() []ProfilePoint {
	return p.points
}

// At returns the profile value for the grid slot containing delivery
func (p *Profile) At(delivery, now time.Time) (fpdecimal.Decimal, error) {
	for i := len(p.points) - 1; i >= 0; i-- {
		pt := p.points[i]
		if !pt.Time.After(delivery) {
			if delivery.Sub(pt.Time) < p.step {
				return pt.Value, nil
			}
			break
		}
	}
	return fpdecimal.Zero, ErrNoData
}

// Ensure Profile implements Source
var _ Source = (*Profile)(nil)

// grid builds the sample timestamps between start and end inclusive
func grid(start, end time.Time, step time.Duration) []time.Time {
	ts := make([]time.Time, 0)
	for t := start; !t.After(end); t = t.Add(step) {
		ts = append(ts, t)
	}
	return ts
}

// sample builds a profile from a shape function, adding optional seeded
// noise and clamping at zero.
func sample(name string, start, end time.Time, step time.Duration, noiseFactor float64, seed int64, shape func(t time.Time) float64) *Profile {
	rng := rand.New(rand.NewSource(seed))
	points := make([]ProfilePoint, 0)

	for _, t := range grid(start, end, step) {
		v := shape(t)
		if noiseFactor > 0 {
			v += rng.NormFloat64() * v * noiseFactor
		}
		v = math.Max(v, 0)
		points = append(points, ProfilePoint{Time: t, Value: fpdecimal.FromFloat(v)})
	}

	return &Profile{name: name, step: step, points: points}
}

// ConstantProfile creates a flat load or generation profile in MW
func ConstantProfile(name string, start, end time.Time, step time.Duration, value, noiseFactor float64, seed int64) *Profile {
	return sample(name, start, end, step, noiseFactor, seed, func(time.Time) float64 {
		return value
	})
}

// ResidentialProfile creates a load profile with morning and evening peaks
func ResidentialProfile(name string, start, end time.Time, step time.Duration, baseLoad, morningPeak, eveningPeak, noiseFactor float64, seed int64) *Profile {
	return sample(name, start, end, step, noiseFactor, seed, func(t time.Time) float64 {
		hour := float64(t.Hour())
		morning := math.Exp(-math.Pow(hour-8, 2) / 4)
		evening := math.Exp(-math.Pow(hour-19, 2) / 6)
		return baseLoad + morningPeak*morning + eveningPeak*evening
	})
}

// IndustrialProfile creates a load profile following working hours, with
// reduced weekend load.
func IndustrialProfile(name string, start, end time.Time, step time.Duration, baseLoad, peakLoad float64, workStart, workEnd int, weekendFactor, noiseFactor float64, seed int64) *Profile {
	return sample(name, start, end, step, noiseFactor, seed, func(t time.Time) float64 {
		v := baseLoad
		if t.Hour() >= workStart && t.Hour() < workEnd {
			v = peakLoad
		}
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			v *= weekendFactor
		}
		return v
	})
}

package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// MediaType tags the kind of media a probability sequence came from.
type MediaType string

// Supported media types.
const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
	MediaAudio MediaType = "AUDIO"
)

// Sentinel errors for aggregation preconditions.
var (
	// ErrNoProbabilities is returned for an empty probability sequence.
	// That is an upstream pipeline bug, never a degraded input, so it
	// fails loudly instead of defaulting.
	ErrNoProbabilities = errors.New("scoring: empty probability sequence")

	// ErrNotFinite is returned when a probability is NaN or infinite.
	ErrNotFinite = errors.New("scoring: non-finite probability")
)

// Report is the composite manipulation risk report. All fields are
// percentages in [0,100], rounded to two decimals.
type Report struct {
	VideoScore          float64 // 90th percentile of frame probabilities
	PeakRisk            float64 // highest single-frame probability
	MeanRisk            float64 // mean frame probability
	AudioScore          float64 // placeholder: non-zero only for AUDIO
	GANFingerprint      float64 // alias of VideoScore kept for consumers
	TemporalConsistency float64 // 100 - scaled variance, VIDEO only
	RiskScore           float64 // VideoScore, blended toward PeakRisk
	Confidence          float64 // mean distance from the 0.5 point
}

// Aggregate reduces per-frame fake probabilities (each in [0,1], original
// frame order) into a Report for the given media type.
//
// RiskScore starts at the 90th-percentile score and blends in the peak
// only when a single frame spikes more than 10 points above it
// (0.7/0.3). The threshold and weights are uncalibrated legacy constants
// preserved for output compatibility.
func Aggregate(probs []float64, media MediaType) (Report, error) {
	if len(probs) == 0 {
		return Report{}, ErrNoProbabilities
	}
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Report{}, fmt.Errorf("%w at index %d: %v", ErrNotFinite, i, p)
		}
	}

	videoScore := percentile(probs, 90) * 100
	peakRisk := maxOf(probs) * 100
	meanRisk := mean(probs) * 100
	ganFingerprint := videoScore

	temporalConsistency := 100.0
	if media == MediaVideo && len(probs) >= 2 {
		temporalConsistency = clamp(100-variance(probs)*1000, 0, 100)
	}

	audioScore := 0.0
	if media == MediaAudio {
		// The aggregator has no distinct audio signal path yet.
		audioScore = videoScore
	}

	confSum := 0.0
	for _, p := range probs {
		confSum += math.Max(p, 1-p)
	}
	confidence := confSum / float64(len(probs)) * 100

	riskScore := videoScore
	if peakRisk > videoScore+10 {
		riskScore = videoScore*0.7 + peakRisk*0.3
	}
	riskScore = clamp(riskScore, 0, 100)

	return Report{
		VideoScore:          round2(videoScore),
		PeakRisk:            round2(peakRisk),
		MeanRisk:            round2(meanRisk),
		AudioScore:          round2(audioScore),
		GANFingerprint:      round2(ganFingerprint),
		TemporalConsistency: round2(temporalConsistency),
		RiskScore:           round2(riskScore),
		Confidence:          round2(confidence),
	}, nil
}

// percentile computes the p-th percentile with linear interpolation
// between the two nearest ranks of the sorted sequence.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance over the raw probabilities.
func variance(values []float64) float64 {
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

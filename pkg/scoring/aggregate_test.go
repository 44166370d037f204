package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateVideoWithOutlierFrame(t *testing.T) {
	probs := []float64{0.9, 0.1, 0.1, 0.1, 0.1}

	report, err := Aggregate(probs, MediaVideo)
	require.NoError(t, err)

	// Sorted [0.1 0.1 0.1 0.1 0.9], rank 0.9*4=3.6: 0.1 + 0.6*0.8 = 0.58.
	assert.InDelta(t, 58.0, report.VideoScore, 1e-9)
	assert.InDelta(t, 90.0, report.PeakRisk, 1e-9)
	assert.InDelta(t, 26.0, report.MeanRisk, 1e-9)
	assert.Equal(t, report.VideoScore, report.GANFingerprint)

	// Peak (90) exceeds videoScore+10 (68): blended 0.7*58 + 0.3*90.
	assert.InDelta(t, 67.6, report.RiskScore, 1e-9)

	// Population variance 0.1024 scales past the floor.
	assert.InDelta(t, 0.0, report.TemporalConsistency, 1e-9)

	// mean(max(p,1-p)) = 0.9.
	assert.InDelta(t, 90.0, report.Confidence, 1e-9)

	assert.Zero(t, report.AudioScore)
}

func TestAggregateNoBlendWithinThreshold(t *testing.T) {
	// Uniform frames: peak equals the percentile, no blending.
	report, err := Aggregate([]float64{0.6, 0.6, 0.6}, MediaVideo)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, report.VideoScore, 1e-9)
	assert.InDelta(t, 60.0, report.PeakRisk, 1e-9)
	assert.InDelta(t, 60.0, report.RiskScore, 1e-9)
	assert.InDelta(t, 100.0, report.TemporalConsistency, 1e-9)
}

func TestAggregateSingleFrame(t *testing.T) {
	for _, media := range []MediaType{MediaImage, MediaVideo, MediaAudio} {
		report, err := Aggregate([]float64{0.8}, media)
		require.NoError(t, err)

		assert.InDelta(t, 100.0, report.TemporalConsistency, 1e-9,
			"single frame is trivially consistent for %s", media)
		assert.InDelta(t, 80.0, report.VideoScore, 1e-9)
		assert.InDelta(t, 80.0, report.PeakRisk, 1e-9)
	}
}

func TestAggregateImageIgnoresVariance(t *testing.T) {
	// Non-video media keeps consistency at 100 even with many frames.
	report, err := Aggregate([]float64{0.1, 0.9, 0.1, 0.9}, MediaImage)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, report.TemporalConsistency, 1e-9)
}

func TestAggregateAudioScore(t *testing.T) {
	report, err := Aggregate([]float64{0.5, 0.7}, MediaAudio)
	require.NoError(t, err)

	assert.Equal(t, report.VideoScore, report.AudioScore)

	video, err := Aggregate([]float64{0.5, 0.7}, MediaVideo)
	require.NoError(t, err)
	assert.Zero(t, video.AudioScore)
}

func TestAggregateRounding(t *testing.T) {
	report, err := Aggregate([]float64{1.0 / 3.0}, MediaImage)
	require.NoError(t, err)

	assert.InDelta(t, 33.33, report.VideoScore, 1e-9)
	assert.InDelta(t, 66.67, report.Confidence, 1e-9)
}

func TestAggregateEmptyFailsLoudly(t *testing.T) {
	_, err := Aggregate(nil, MediaVideo)

	assert.ErrorIs(t, err, ErrNoProbabilities)
}

func TestAggregateRejectsNonFinite(t *testing.T) {
	_, err := Aggregate([]float64{0.5, math.NaN()}, MediaVideo)
	assert.ErrorIs(t, err, ErrNotFinite)

	_, err = Aggregate([]float64{math.Inf(1)}, MediaImage)
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestPercentileInterpolation(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4}

	assert.InDelta(t, 0.1, percentile(values, 0), 1e-9)
	assert.InDelta(t, 0.25, percentile(values, 50), 1e-9)
	assert.InDelta(t, 0.4, percentile(values, 100), 1e-9)
	// rank 0.9*3 = 2.7: 0.3 + 0.7*0.1
	assert.InDelta(t, 0.37, percentile(values, 90), 1e-9)
}

func TestVariancePopulation(t *testing.T) {
	assert.InDelta(t, 0.25, variance([]float64{0, 1}), 1e-9)
	// Identical values are only zero-variance up to float rounding of
	// the mean.
	assert.InDelta(t, 0.0, variance([]float64{0.4, 0.4, 0.4}), 1e-12)
}

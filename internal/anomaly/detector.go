package anomaly

import (
	"math"

	"stock-pulse/internal/domain"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
)

const minHistory = 40

// Detector scores how unusual the latest trading day looks relative to
// recent history using an isolation forest over simple daily features
// (return, intraday range, volume shift). The score is advisory
// metadata attached to an analysis; it never alters the pipeline's
// verdict.
type Detector struct {
	numTrees   int
	sampleSize int
	threshold  float64
}

func NewDetector(numTrees, sampleSize int, threshold float64) *Detector {
	if numTrees <= 0 {
		numTrees = 100
	}
	if sampleSize <= 0 {
		sampleSize = 128
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.6
	}
	return &Detector{numTrees: numTrees, sampleSize: sampleSize, threshold: threshold}
}

// Score fits a forest on the feature history and scores the most recent
// day. ok is false when there is not enough history to score.
func (d *Detector) Score(points []domain.PricePoint) (score float64, ok bool) {
	samples := featureMatrix(points)
	if len(samples) < minHistory {
		return 0, false
	}

	means, stds := fitNormalizer(samples)
	normalized := make([][]float64, len(samples))
	for i := range samples {
		normalized[i] = normalize(samples[i], means, stds)
	}

	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     d.threshold,
		NumTrees:      d.numTrees,
		SampleSize:    d.sampleSize,
	})
	forest.Fit(normalized)

	scores := forest.Score(normalized[len(normalized)-1:])
	if len(scores) == 0 {
		return 0, false
	}
	score = scores[0]
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, true
}

// IsAnomalous reports whether a score crosses the detector threshold.
func (d *Detector) IsAnomalous(score float64) bool {
	return score >= d.threshold
}

// featureMatrix derives one row per day after the first: close-to-close
// return, intraday range fraction, and log volume change.
func featureMatrix(points []domain.PricePoint) [][]float64 {
	if len(points) < 2 {
		return nil
	}
	rows := make([][]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]
		if prev.Close <= 0 || curr.Close <= 0 {
			continue
		}
		ret := (curr.Close - prev.Close) / prev.Close
		rangeFrac := 0.0
		if curr.Close > 0 {
			rangeFrac = (curr.High - curr.Low) / curr.Close
		}
		volShift := 0.0
		if prev.Volume > 0 && curr.Volume > 0 {
			volShift = math.Log(curr.Volume / prev.Volume)
		}
		rows = append(rows, []float64{ret, rangeFrac, volShift})
	}
	return rows
}

func fitNormalizer(samples [][]float64) (means, stds []float64) {
	features := len(samples[0])
	means = make([]float64, features)
	stds = make([]float64, features)

	for _, row := range samples {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(samples))
	}
	for _, row := range samples {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(len(samples)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalize(sample, means, stds []float64) []float64 {
	out := make([]float64, len(sample))
	for j, v := range sample {
		out[j] = (v - means[j]) / stds[j]
	}
	return out
}

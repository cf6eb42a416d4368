package risk

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Forest is an immutable ensemble of TreeRules. It is safe for concurrent
// use once constructed.
type Forest struct {
	params Params
	trees  []TreeRule
}

// NewForest generates p.NumTrees rules. With p.Seed set the jitter of tree i
// depends only on (seed, i), so the same params always build the same forest.
func NewForest(p Params) (*Forest, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	trees := make([]TreeRule, p.NumTrees)
	for i := range trees {
		trees[i] = newTreeRule(i, drawJitter(p, i), p.Tree)
	}
	return &Forest{params: p, trees: trees}, nil
}

func drawJitter(p Params, index int) float64 {
	var u float64
	if p.Seed != 0 {
		u = rand.New(rand.NewPCG(uint64(p.Seed), uint64(index))).Float64()
	} else {
		u = rand.Float64()
	}
	return p.JitterMin + u*(p.JitterMax-p.JitterMin)
}

// Params returns the parameters the forest was built with.
func (f *Forest) Params() Params { return f.params }

// Trees returns a copy of the ensemble.
func (f *Forest) Trees() []TreeRule {
	out := make([]TreeRule, len(f.trees))
	copy(out, f.trees)
	return out
}

func (f *Forest) Size() int { return len(f.trees) }

// FeatureImportance returns the unadjusted importance table.
func (f *Forest) FeatureImportance() map[string]float64 {
	return baseImportance()
}

// Predict scores every applicable tree and folds the scores into a single
// calibrated probability in [0, MaxProbability], rounded to one decimal.
func (f *Forest) Predict(rec FeatureRecord) float64 {
	use := f.selector(rec)

	scores := make([]float64, 0, len(f.trees))
	for _, t := range f.trees {
		if use(t) {
			scores = append(scores, ScoreTree(t, rec, f.params.BaseProbability, f.params.MaxProbability))
		}
	}
	return f.aggregate(scores)
}

// selector decides which trees take part for rec. Trees tuned for cold
// weather sit out hot readings, humid-tuned trees sit out dry ones. When
// that leaves too few trees the whole ensemble is used.
//
// Cold-tuned trees score highest on warm readings, so dropping them just
// above HotTemperature lowers the vote by a couple of points at that edge.
// Risk is only monotonic in temperature across the wider range, not at
// every step; see TestPredict_HotThresholdEdge.
func (f *Forest) selector(rec FeatureRecord) func(TreeRule) bool {
	relevant := func(t TreeRule) bool {
		if rec.Temperature > f.params.HotTemperature && t.TemperatureThreshold < f.params.ColdTunedBelow {
			return false
		}
		if rec.Humidity < f.params.DryHumidity && t.HumidityThreshold > f.params.HumidTunedAbove {
			return false
		}
		return true
	}

	n := 0
	for _, t := range f.trees {
		if relevant(t) {
			n++
		}
	}
	if float64(n) < f.params.MinApplicableFraction*float64(len(f.trees)) {
		return func(TreeRule) bool { return true }
	}
	return relevant
}

// aggregate sorts scores in place, trims both tails, averages and calibrates.
func (f *Forest) aggregate(scores []float64) float64 {
	n := len(scores)
	if n == 0 {
		return clamp(f.params.BaseProbability, 0, f.params.MaxProbability)
	}

	sort.Float64s(scores)
	k := int(float64(n) * f.params.TrimFraction)
	if n-2*k < 1 {
		k = (n - 1) / 2
	}
	kept := scores[k : n-k]

	var sum float64
	for _, s := range kept {
		sum += s
	}
	avg := sum / float64(len(kept))

	switch {
	case avg > f.params.HighCalibrationThreshold:
		avg *= f.params.HighCalibrationFactor
	case avg < f.params.LowCalibrationThreshold:
		avg *= f.params.LowCalibrationFactor
	}

	return clamp(math.Round(avg*10)/10, 0, f.params.MaxProbability)
}

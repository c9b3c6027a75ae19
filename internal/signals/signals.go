package signals

import (
	"time"

	"github.com/selivandex/market-scanner/internal/bias"
	"github.com/selivandex/market-scanner/internal/classifier"
)

// VolatilityMode is a coarse classification of combined market bias
type VolatilityMode string

const (
	VolatilityNormal    VolatilityMode = "Normal"
	VolatilityElevated  VolatilityMode = "Elevated"
	VolatilitySpike     VolatilityMode = "Spike"
	VolatilityExplosion VolatilityMode = "Explosion"
)

// Ascending thresholds over the combined absolute bias total
const (
	elevatedThreshold  = 4
	spikeThreshold     = 8
	explosionThreshold = 10
)

// Gamma alert trigger levels
const (
	alertBiasThreshold  = 3
	alertTotalThreshold = 6
)

// volatilityBasket is the fixed asset subset whose absolute scores make up
// the combined total: index, macro, commodity, sector. Policy constant, not
// derived.
var volatilityBasket = []classifier.Asset{
	classifier.AssetNifty,
	classifier.AssetRBIPolicy,
	classifier.AssetCrudeOil,
	classifier.AssetBanking,
}

// primaryAsset is the single asset whose bias magnitude gates the gamma alert
const primaryAsset = classifier.AssetNifty

// Intraday windows (minutes of day) during which the gamma alert is relevant:
// the opening drive and the early-afternoon institutional window.
const (
	morningWindowStart   = 9*60 + 15
	morningWindowEnd     = 10*60 + 30
	afternoonWindowStart = 13*60 + 15
	afternoonWindowEnd   = 14*60 + 30
)

// Projection is a deterministic next-session outlook for a single index
type Projection struct {
	Asset      classifier.Asset
	Score      int
	Strength   string
	GapUp      int
	GapDown    int
	Direction  string
	ActionPlan string
	Volatility VolatilityMode
}

// Engine derives signals from the current accumulator state. Read-only: the
// engine never mutates bias.
type Engine struct {
	acc *bias.Accumulator
}

// NewEngine creates signal engine over the accumulator
func NewEngine(acc *bias.Accumulator) *Engine {
	return &Engine{acc: acc}
}

// VolatilityTotal sums absolute bias over the fixed basket
func (e *Engine) VolatilityTotal() int {
	total := 0
	for _, asset := range volatilityBasket {
		score := e.acc.Score(asset)
		if score < 0 {
			score = -score
		}
		total += score
	}
	return total
}

// VolatilityMode classifies the current combined total
func (e *Engine) VolatilityMode() VolatilityMode {
	return ClassifyVolatility(e.VolatilityTotal())
}

// ClassifyVolatility maps a combined absolute total to a mode
func ClassifyVolatility(total int) VolatilityMode {
	switch {
	case total >= explosionThreshold:
		return VolatilityExplosion
	case total >= spikeThreshold:
		return VolatilitySpike
	case total >= elevatedThreshold:
		return VolatilityElevated
	default:
		return VolatilityNormal
	}
}

// AlertCondition reports whether the gamma-blast setup is live: primary index
// bias at or beyond threshold, combined total at or beyond threshold, and the
// local time inside one of the intraday windows. All three are conjunctive;
// outside the windows the condition is always false.
func (e *Engine) AlertCondition(now time.Time) bool {
	if !inAlertWindow(now) {
		return false
	}

	score := e.acc.Score(primaryAsset)
	if score < 0 {
		score = -score
	}
	if score < alertBiasThreshold {
		return false
	}

	return e.VolatilityTotal() >= alertTotalThreshold
}

func inAlertWindow(now time.Time) bool {
	minute := now.Hour()*60 + now.Minute()

	if minute >= morningWindowStart && minute <= morningWindowEnd {
		return true
	}
	return minute >= afternoonWindowStart && minute <= afternoonWindowEnd
}

// IndexProjection builds a next-session outlook for an index by combining its
// own bias with the macro policy bias. Three score regions, fixed action plan
// per region.
func (e *Engine) IndexProjection(asset classifier.Asset) Projection {
	combined := e.acc.Score(asset) + e.acc.Score(classifier.AssetRBIPolicy)

	p := bias.Probability(combined, 1)

	proj := Projection{
		Asset:      asset,
		Score:      combined,
		Strength:   bias.StrengthLabel(combined),
		GapUp:      p,
		GapDown:    100 - p,
		Volatility: e.VolatilityMode(),
	}

	switch {
	case combined > 2:
		proj.Direction = "Bullish"
		proj.ActionPlan = "Buy dips near support; gap-up continuation likely"
	case combined < -2:
		proj.Direction = "Bearish"
		proj.ActionPlan = "Sell rallies near resistance; gap-down risk elevated"
	default:
		proj.Direction = "Rangebound"
		proj.ActionPlan = "Expect a range day; fade moves at extremes"
	}

	return proj
}

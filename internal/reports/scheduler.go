package reports

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/internal/bias"
	"github.com/selivandex/market-scanner/internal/classifier"
	"github.com/selivandex/market-scanner/internal/signals"
	"github.com/selivandex/market-scanner/pkg/logger"
)

// Notifier delivers rendered reports
type Notifier interface {
	Send(text string) error
}

// Daily emitter windows, minutes of day
const (
	premarketWindowStart = 8*60 + 45
	premarketWindowEnd   = 9*60 + 10
	closingWindowStart   = 15*60 + 35
	closingWindowEnd     = 16 * 60
)

// Scheduler owns the time-gated emitters: interval summary, once-daily
// premarket digest, once-daily closing projection and the cooldown-throttled
// gamma alert. Each emitter is a predicate over the passed wall-clock time
// plus a last-fired guard; the scanner loop calls Run once per cycle.
type Scheduler struct {
	acc      *bias.Accumulator
	engine   *signals.Engine
	notifier Notifier

	summaryInterval time.Duration
	alertCooldown   time.Duration

	lastSummary        time.Time
	lastAlert          time.Time
	lastDigestDate     string
	lastProjectionDate string
}

// NewScheduler creates report scheduler. The first interval summary comes one
// full interval after startup.
func NewScheduler(acc *bias.Accumulator, engine *signals.Engine, notifier Notifier, summaryInterval, alertCooldown time.Duration) *Scheduler {
	return &Scheduler{
		acc:             acc,
		engine:          engine,
		notifier:        notifier,
		summaryInterval: summaryInterval,
		alertCooldown:   alertCooldown,
		lastSummary:     time.Now(),
	}
}

// Run evaluates every emitter against now. Delivery failures are logged and
// the guard still advances, matching at-most-once everywhere else.
func (s *Scheduler) Run(now time.Time) {
	s.maybeSendAlert(now)
	s.maybeSendPremarketDigest(now)
	s.maybeSendClosingProjection(now)
	s.maybeSendSummary(now)
}

// maybeSendSummary fires when the configured interval elapsed since the last
// summary. Not calendar-aligned.
func (s *Scheduler) maybeSendSummary(now time.Time) {
	if now.Sub(s.lastSummary) < s.summaryInterval {
		return
	}
	s.lastSummary = now

	var b strings.Builder
	b.WriteString("📊 *Market Bias Summary*\n\n")
	for _, asset := range classifier.Assets() {
		score := s.acc.Score(asset)
		b.WriteString(fmt.Sprintf("%s: %+d (%s) — %d%%\n",
			asset, score, bias.StrengthLabel(score), bias.Probability(score, 1)))
	}
	b.WriteString(fmt.Sprintf("\nVolatility: *%s*", s.engine.VolatilityMode()))

	s.deliver("summary", b.String())
}

// maybeSendPremarketDigest fires once per calendar date while the local time
// sits inside the premarket window. The date guard stops re-fires when the
// loop revisits the window within the same day.
func (s *Scheduler) maybeSendPremarketDigest(now time.Time) {
	if !inWindow(now, premarketWindowStart, premarketWindowEnd) {
		return
	}
	today := now.Format("2006-01-02")
	if s.lastDigestDate == today {
		return
	}
	s.lastDigestDate = today

	proj := s.engine.IndexProjection(classifier.AssetNifty)

	text := fmt.Sprintf(
		"🌅 *Premarket Digest — %s*\n\n"+
			"NIFTY bias: %+d (%s)\n"+
			"Gap-up: %d%% | Gap-down: %d%%\n"+
			"View: *%s*\n"+
			"Plan: %s\n"+
			"Volatility: *%s*",
		now.Format("02 Jan 2006"),
		proj.Score, proj.Strength,
		proj.GapUp, proj.GapDown,
		proj.Direction, proj.ActionPlan, proj.Volatility,
	)

	s.deliver("premarket digest", text)
}

// maybeSendClosingProjection fires once per calendar date inside the closing
// window with the next-session outlook
func (s *Scheduler) maybeSendClosingProjection(now time.Time) {
	if !inWindow(now, closingWindowStart, closingWindowEnd) {
		return
	}
	today := now.Format("2006-01-02")
	if s.lastProjectionDate == today {
		return
	}
	s.lastProjectionDate = today

	nifty := s.engine.IndexProjection(classifier.AssetNifty)
	sensex := s.engine.IndexProjection(classifier.AssetSensex)

	text := fmt.Sprintf(
		"🌇 *Next Session Projection*\n\n"+
			"NIFTY: %+d (%s), %s\n"+
			"Gap-up %d%% / Gap-down %d%%\n"+
			"%s\n\n"+
			"SENSEX: %+d (%s), %s\n\n"+
			"Volatility: *%s*",
		nifty.Score, nifty.Strength, nifty.Direction,
		nifty.GapUp, nifty.GapDown,
		nifty.ActionPlan,
		sensex.Score, sensex.Strength, sensex.Direction,
		nifty.Volatility,
	)

	s.deliver("closing projection", text)
}

// maybeSendAlert fires when the gamma condition holds and the sliding
// cooldown since the previous alert expired
func (s *Scheduler) maybeSendAlert(now time.Time) {
	if !s.engine.AlertCondition(now) {
		return
	}
	if !s.lastAlert.IsZero() && now.Sub(s.lastAlert) < s.alertCooldown {
		return
	}
	s.lastAlert = now

	score := s.acc.Score(classifier.AssetNifty)

	text := fmt.Sprintf(
		"⚡ *GAMMA BLAST WATCH*\n\n"+
			"NIFTY bias: %+d (%s)\n"+
			"Combined volatility total: %d\n"+
			"Mode: *%s*\n\n"+
			"Expect outsized intraday moves. Manage option exposure.",
		score, bias.StrengthLabel(score),
		s.engine.VolatilityTotal(), s.engine.VolatilityMode(),
	)

	s.deliver("gamma alert", text)
}

func (s *Scheduler) deliver(kind, text string) {
	if err := s.notifier.Send(text); err != nil {
		logger.Error("failed to send report",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	logger.Info("report sent", zap.String("kind", kind))
}

func inWindow(now time.Time, start, end int) bool {
	minute := now.Hour()*60 + now.Minute()
	return minute >= start && minute <= end
}

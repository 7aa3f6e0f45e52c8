// internal/scoring/scorer.go
package scoring

import (
	"math"

	"github.com/akshita317/devinsight/internal/model"
)

const (
	baseline = 100.0

	// One point per open issue, saturating at maxIssuePenalty.
	maxIssuePenalty = 20.0

	// Activity tiers. The stale threshold must be checked before the idle
	// one: both conditions hold for a repository untouched for 90+ days.
	staleDays    = 90
	stalePenalty = 30.0
	idleDays     = 30
	idlePenalty  = 15.0

	// A repository whose commit history is unreadable is penalized flat.
	noHistoryPenalty = 20.0

	readmeBonus   = 10.0
	readmePenalty = 10.0
	licenseBonus  = 5.0

	popularStars  = 100
	popularBonus  = 10.0
	notableStars  = 10
	notableBonus  = 5.0
)

// Score maps a repository snapshot to a health score in [0, 100], rounded to
// two decimal places. It is deterministic and performs no I/O.
func Score(snap *model.RawRepositorySnapshot) float64 {
	score := baseline

	score -= math.Min(float64(snap.Metadata.OpenIssues), maxIssuePenalty)

	switch {
	case snap.DaysSinceLastCommit == nil:
		score -= noHistoryPenalty
	case *snap.DaysSinceLastCommit > staleDays:
		score -= stalePenalty
	case *snap.DaysSinceLastCommit > idleDays:
		score -= idlePenalty
	}

	if snap.HasReadme {
		score += readmeBonus
	} else {
		score -= readmePenalty
	}

	if snap.HasLicense {
		score += licenseBonus
	}

	switch {
	case snap.Metadata.Stars > popularStars:
		score += popularBonus
	case snap.Metadata.Stars > notableStars:
		score += notableBonus
	}

	score = math.Max(0, math.Min(100, score))
	return math.Round(score*100) / 100
}

package tracker

import (
	"math"

	"github.com/drewAdorno/stfc-stat-tracker/internal/config"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

// AllianceRollup is one alliance's server-wide standing for a date.
type AllianceRollup struct {
	AllianceID    int64
	AllianceTag   string
	Rank          int
	MemberCount   int
	TotalPower    int64
	AvgLevel      int
	MaxLevel      int64
	TotalPVP      int64
	TotalHostiles int64
	TotalMined    int64
	TotalRaided   int64
	PowerDelta7d  int64
	HasDelta      bool
}

// RankAlliances turns per-alliance aggregates into ranked rollups with a
// 7-day power delta. pastPower maps alliance ID to its power sum on the
// delta base date; how an absent baseline reads is configurable (see
// config.DeltaBaselineZero / DeltaBaselineOmit).
func RankAlliances(current []storage.AllianceAggregate, pastPower map[int64]int64, baselineMode string) []AllianceRollup {
	rollups := make([]AllianceRollup, 0, len(current))

	for i, agg := range current {
		delta, hasDelta := int64(0), true
		past, hasPast := pastPower[agg.AllianceID]
		switch {
		case hasPast:
			delta = agg.TotalPower - past
		case baselineMode == config.DeltaBaselineOmit:
			hasDelta = false
		default:
			// Absent baseline reads as zero, so a brand-new alliance shows
			// its full power as the week's gain.
			delta = agg.TotalPower
		}

		rollups = append(rollups, AllianceRollup{
			AllianceID:    agg.AllianceID,
			AllianceTag:   agg.AllianceTag,
			Rank:          i + 1,
			MemberCount:   agg.MemberCount,
			TotalPower:    agg.TotalPower,
			AvgLevel:      int(math.Round(agg.AvgLevel)),
			MaxLevel:      agg.MaxLevel,
			TotalPVP:      agg.TotalPVP,
			TotalHostiles: agg.TotalHostiles,
			TotalMined:    agg.TotalMined,
			TotalRaided:   agg.TotalRaided,
			PowerDelta7d:  delta,
			HasDelta:      hasDelta,
		})
	}

	return rollups
}

// PlayerMovement is a current member's 7-day power delta plus alliance
// movement relative to the delta base date.
type PlayerMovement struct {
	PowerDelta7d int64
	Moved        bool
	PrevTag      string
}

// PlayerMovements computes per-player deltas against the rows of the delta
// base date, keyed by player ID. Players absent from the base date get a
// zero delta and no movement flag.
func PlayerMovements(current []storage.SnapshotRow, past map[string]storage.SnapshotRow) map[int64]PlayerMovement {
	result := make(map[int64]PlayerMovement, len(current))
	for _, r := range current {
		prev, ok := past[plain(r.PlayerID)]
		if !ok {
			result[r.PlayerID] = PlayerMovement{}
			continue
		}

		movement := PlayerMovement{PowerDelta7d: r.Power - prev.Power}
		if prev.AllianceID != r.AllianceID {
			movement.Moved = true
			movement.PrevTag = prev.AllianceTag
		}
		result[r.PlayerID] = movement
	}
	return result
}

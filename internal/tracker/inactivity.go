package tracker

import (
	"sort"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
)

type InactiveMember struct {
	Name string
	Days int
}

// FindInactive counts, per current member, the consecutive completed days
// with no movement in any tracked field.
//
// Snapshots with an empty member map are failed pulls and are excluded from
// the walk rather than read as zero-activity days. The most recent valid
// snapshot is also dropped: the comparison often runs right after the first
// scrape of a day, when its data is still partial. Fewer than 3 valid
// snapshots means there is nothing to walk.
//
// Members with a zero-day streak are omitted. The result is sorted by streak
// length descending; the caller truncates to however many it wants to show.
func FindInactive(current []Member, history []Snapshot) []InactiveMember {
	var valid []Snapshot
	for _, snap := range history {
		if len(snap.Members) > 0 {
			valid = append(valid, snap)
		}
	}
	if len(valid) < 3 {
		return nil
	}
	valid = valid[:len(valid)-1]

	var inactive []InactiveMember
	for _, m := range current {
		key := m.Key()

		days := 0
		for i := len(valid) - 1; i > 0; i-- {
			currData, inCurr := valid[i].Members[key]
			prevData, inPrev := valid[i-1].Members[key]
			if !inCurr || !inPrev {
				break
			}
			if statsChanged(prevData, currData) {
				break
			}
			days++
		}

		if days > 0 {
			inactive = append(inactive, InactiveMember{Name: m.Name, Days: days})
		}
	}

	sort.SliceStable(inactive, func(i, j int) bool {
		return inactive[i].Days > inactive[j].Days
	})
	return inactive
}

func statsChanged(prev, curr Member) bool {
	prevFields := prev.tracked()
	currFields := curr.tracked()
	for i := range prevFields {
		if abbrev.Parse(prevFields[i]) != abbrev.Parse(currFields[i]) {
			return true
		}
	}
	return false
}

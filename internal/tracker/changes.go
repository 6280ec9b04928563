package tracker

import (
	"sort"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
)

// DetectChanges diffs two member maps. Joins and leaves come from the key
// set difference only; a member present in both snapshots is neither,
// regardless of stat changes. Output is ordered by ascending key so repeated
// runs over the same data produce identical results.
func DetectChanges(prev, curr map[MemberKey]Member) ChangeSet {
	var changes ChangeSet

	for _, key := range sortedKeys(curr) {
		if _, ok := prev[key]; !ok {
			changes.Joined = append(changes.Joined, curr[key])
		}
	}

	for _, key := range sortedKeys(prev) {
		if _, ok := curr[key]; !ok {
			changes.Left = append(changes.Left, prev[key])
		}
	}

	for _, key := range sortedKeys(prev) {
		currMember, ok := curr[key]
		if !ok {
			continue
		}

		oldLevel := abbrev.Parse(prev[key].Level)
		newLevel := abbrev.Parse(currMember.Level)

		// A decreasing level is accepted silently; it shows up in scrapes
		// as a data artifact, not a real demotion.
		if newLevel > oldLevel {
			changes.LevelUps = append(changes.LevelUps, LevelUp{
				Name:     currMember.Name,
				OldLevel: plain(oldLevel),
				NewLevel: plain(newLevel),
			})
		}
	}

	return changes
}

func sortedKeys(members map[MemberKey]Member) []MemberKey {
	keys := make([]MemberKey, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

package notify

import (
	"context"

	"github.com/drewAdorno/stfc-stat-tracker/internal/metrics"
	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

// Ledger records which events were already announced for a comparison
// window, so a crash-and-rerun between the same two snapshots never posts
// the same alert twice.
type Ledger interface {
	SentEvents(ctx context.Context, window string) (map[string]struct{}, error)
	MarkSent(ctx context.Context, window string, keys []string) error
}

// Window names a prev/curr snapshot pair. Entries from any other window are
// discarded when this one is first written to, keeping the ledger bounded.
func Window(prevDate, currDate string) string {
	return prevDate + "->" + currDate
}

func joinedKey(m tracker.Member) string  { return "joined|" + m.Name }
func leftKey(m tracker.Member) string    { return "left|" + m.Name }
func levelKey(up tracker.LevelUp) string { return "levelup|" + up.Name + "|" + up.NewLevel }

// EventKeys lists every event in the change set as a ledger key.
func EventKeys(changes tracker.ChangeSet) []string {
	keys := make([]string, 0, len(changes.Joined)+len(changes.Left)+len(changes.LevelUps))
	for _, m := range changes.Joined {
		keys = append(keys, joinedKey(m))
	}
	for _, m := range changes.Left {
		keys = append(keys, leftKey(m))
	}
	for _, up := range changes.LevelUps {
		keys = append(keys, levelKey(up))
	}
	return keys
}

// FilterUnsent drops every event whose key the ledger already holds for the
// current window.
func FilterUnsent(changes tracker.ChangeSet, sent map[string]struct{}) tracker.ChangeSet {
	if len(sent) == 0 {
		return changes
	}

	var filtered tracker.ChangeSet
	for _, m := range changes.Joined {
		if _, dup := sent[joinedKey(m)]; dup {
			metrics.SuppressedDuplicates.Inc()
			continue
		}
		filtered.Joined = append(filtered.Joined, m)
	}
	for _, m := range changes.Left {
		if _, dup := sent[leftKey(m)]; dup {
			metrics.SuppressedDuplicates.Inc()
			continue
		}
		filtered.Left = append(filtered.Left, m)
	}
	for _, up := range changes.LevelUps {
		if _, dup := sent[levelKey(up)]; dup {
			metrics.SuppressedDuplicates.Inc()
			continue
		}
		filtered.LevelUps = append(filtered.LevelUps, up)
	}
	return filtered
}

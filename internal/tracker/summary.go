package tracker

import (
	"math"
	"time"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
)

// Summary aggregates one date's member rows.
type Summary struct {
	TotalPower  int64
	TotalHelps  int64
	TotalRSS    int64
	TotalISO    int64
	MemberCount int
	AvgLevel    int
}

func Summarize(members []Member) Summary {
	var s Summary
	var levelSum int64

	for _, m := range members {
		s.TotalPower += abbrev.Parse(m.Power)
		s.TotalHelps += abbrev.Parse(m.Helps)
		s.TotalRSS += abbrev.Parse(m.RSSContrib)
		s.TotalISO += abbrev.Parse(m.ISOContrib)
		levelSum += abbrev.Parse(m.Level)
	}

	s.MemberCount = len(members)
	if s.MemberCount > 0 {
		s.AvgLevel = int(math.Round(float64(levelSum) / float64(s.MemberCount)))
	}
	return s
}

const joinDateLayout = "Jan 2, 2006"

// FindNewMembers returns members whose leaderboard join date falls within
// the last seven days of now. Unparseable or missing join dates are skipped.
func FindNewMembers(members []Member, now time.Time) []Member {
	cutoff := now.AddDate(0, 0, -7)

	var result []Member
	for _, m := range members {
		if m.JoinDate == "" {
			continue
		}
		joined, err := time.Parse(joinDateLayout, m.JoinDate)
		if err != nil {
			continue
		}
		if !joined.Before(cutoff) {
			result = append(result, m)
		}
	}
	return result
}

type DepartedMember struct {
	Name     string
	Power    string
	LastSeen string
}

// FindDeparted lists members present in the second-to-last completed history
// snapshot but absent from the current roster.
func FindDeparted(current []Member, history []Snapshot) []DepartedMember {
	if len(history) < 2 {
		return nil
	}

	currentKeys := make(map[MemberKey]struct{}, len(current))
	for _, m := range current {
		currentKeys[m.Key()] = struct{}{}
	}

	yesterday := history[len(history)-2]

	var departed []DepartedMember
	for _, key := range sortedKeys(yesterday.Members) {
		if _, ok := currentKeys[key]; ok {
			continue
		}
		m := yesterday.Members[key]
		departed = append(departed, DepartedMember{
			Name:     m.Name,
			Power:    m.Power,
			LastSeen: yesterday.Date,
		})
	}
	return departed
}

// SnapshotDaysAgo finds the history entry closest to (and not newer than)
// n days before now, falling back to the oldest entry. History must be
// ordered by date ascending. Returns nil for empty history.
func SnapshotDaysAgo(history []Snapshot, days int, now time.Time) *Snapshot {
	if len(history) == 0 {
		return nil
	}

	target := now.AddDate(0, 0, -days).Format("2006-01-02")
	var best *Snapshot
	for i := range history {
		if history[i].Date <= target {
			best = &history[i]
		}
	}
	if best == nil {
		best = &history[0]
	}
	return best
}

package tracker

import (
	"sort"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
)

const moversCap = 5

type Mover struct {
	Name  string
	Delta int64
}

// FindPowerMovers ranks current members by power delta against an anchor
// snapshot (typically ~7 days old). Members absent from the anchor are
// excluded entirely so new joiners don't show up as infinite gainers. A
// missing or empty anchor yields two empty lists. Zero deltas appear in
// neither list.
func FindPowerMovers(current []Member, anchor map[MemberKey]Member) (gainers, losers []Mover) {
	if len(anchor) == 0 {
		return nil, nil
	}

	var deltas []Mover
	for _, m := range current {
		past, ok := anchor[m.Key()]
		if !ok {
			continue
		}
		delta := abbrev.Parse(m.Power) - abbrev.Parse(past.Power)
		deltas = append(deltas, Mover{Name: m.Name, Delta: delta})
	}

	for _, d := range deltas {
		if d.Delta > 0 {
			gainers = append(gainers, d)
		} else if d.Delta < 0 {
			losers = append(losers, d)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool { return gainers[i].Delta > gainers[j].Delta })
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].Delta < losers[j].Delta })

	return capMovers(gainers), capMovers(losers)
}

// FindLowestHelps ranks current members by helps gained since their earliest
// appearance in history, ascending. Members absent from all history are
// excluded.
func FindLowestHelps(current []Member, history []Snapshot) []Mover {
	if len(history) == 0 {
		return nil
	}

	var results []Mover
	for _, m := range current {
		key := m.Key()

		baseline, found := int64(0), false
		for _, snap := range history {
			if past, ok := snap.Members[key]; ok {
				baseline = abbrev.Parse(past.Helps)
				found = true
				break
			}
		}
		if !found {
			continue
		}

		gained := abbrev.Parse(m.Helps) - baseline
		results = append(results, Mover{Name: m.Name, Delta: gained})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Delta < results[j].Delta })
	return capMovers(results)
}

func capMovers(movers []Mover) []Mover {
	if len(movers) > moversCap {
		return movers[:moversCap]
	}
	return movers
}

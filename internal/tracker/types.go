// Package tracker derives roster and stat changes from point-in-time
// snapshots: joins and leaves, level-ups, inactivity streaks, ranked movers
// and aggregate summaries. Every function is total over its input; malformed
// numeric strings degrade to 0 through the abbrev codec and never abort a
// computation.
package tracker

import (
	"strconv"

	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

// MemberKey identifies a member across snapshots. The stable player ID is
// preferred; records that never carried an ID fall back to the display name.
// Name-keyed members cannot survive a rename: the old name reads as a leave
// and the new one as a join.
type MemberKey string

func KeyFor(id, name string) MemberKey {
	if id != "" {
		return MemberKey("id:" + id)
	}
	return MemberKey("name:" + name)
}

// Member is one member's stat record inside a snapshot, string-valued as
// captured upstream. Values may be abbreviated ("80M"), plain decimal, or
// empty.
type Member struct {
	ID              string
	Name            string
	Level           string
	Power           string
	Helps           string
	RSSContrib      string
	ISOContrib      string
	PlayersKilled   string
	HostilesKilled  string
	ResourcesMined  string
	ResourcesRaided string
	RankTitle       string
	JoinDate        string
}

func (m Member) Key() MemberKey {
	return KeyFor(m.ID, m.Name)
}

// tracked returns the nine stat fields whose movement defines activity.
func (m Member) tracked() [9]string {
	return [9]string{
		m.Level, m.Power, m.Helps, m.RSSContrib, m.ISOContrib,
		m.PlayersKilled, m.HostilesKilled, m.ResourcesMined, m.ResourcesRaided,
	}
}

// Snapshot is the member set captured for one calendar date.
type Snapshot struct {
	Date    string
	Members map[MemberKey]Member
}

// ChangeSet is the result of reconciling two snapshots. It is derived fresh
// on every run, never stored.
type ChangeSet struct {
	Joined   []Member
	Left     []Member
	LevelUps []LevelUp
}

type LevelUp struct {
	Name     string
	OldLevel string
	NewLevel string
}

func (c ChangeSet) Empty() bool {
	return len(c.Joined) == 0 && len(c.Left) == 0 && len(c.LevelUps) == 0
}

// FromRow converts a stored snapshot row to the engine's string-valued form.
func FromRow(r storage.SnapshotRow) Member {
	return Member{
		ID:              strconv.FormatInt(r.PlayerID, 10),
		Name:            r.Name,
		Level:           plain(r.Level),
		Power:           plain(r.Power),
		Helps:           plain(r.Helps),
		RSSContrib:      plain(r.RSSContrib),
		ISOContrib:      plain(r.ISOContrib),
		PlayersKilled:   plain(r.PlayersKilled),
		HostilesKilled:  plain(r.HostilesKilled),
		ResourcesMined:  plain(r.ResourcesMined),
		ResourcesRaided: plain(r.ResourcesRaided),
		RankTitle:       r.RankTitle,
		JoinDate:        r.JoinDate,
	}
}

func plain(n int64) string {
	return strconv.FormatInt(n, 10)
}

// FromRows converts a stored member map to the engine's keyed form.
func FromRows(rows map[string]storage.SnapshotRow) map[MemberKey]Member {
	members := make(map[MemberKey]Member, len(rows))
	for _, r := range rows {
		m := FromRow(r)
		members[m.Key()] = m
	}
	return members
}

// MemberList converts ordered snapshot rows, preserving their order.
func MemberList(rows []storage.SnapshotRow) []Member {
	members := make([]Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, FromRow(r))
	}
	return members
}

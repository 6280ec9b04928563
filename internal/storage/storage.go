// Package storage owns the persisted roster state: player identities, daily
// stat snapshots, the pull audit log, the notification dedup ledger and a
// small key-value state table. Everything lives in one embedded sqlite file.
package storage

import (
	"context"
)

type Storage interface {
	UpsertDaily(ctx context.Context, date string, rows []SnapshotRow) error
	ImportHistory(ctx context.Context, days []ImportDay) error
	LogPull(ctx context.Context, server, totalPlayers int, source string) error
	LastPulledAt(ctx context.Context) (string, error)

	LatestDate(ctx context.Context, allianceID int64) (string, error)
	LatestServerDate(ctx context.Context) (string, error)
	LatestTwoDates(ctx context.Context, allianceID int64) (prev, curr string, err error)
	DistinctDates(ctx context.Context, allianceID int64) ([]string, error)
	DateNDaysBefore(ctx context.Context, anchor string, days int) (string, error)
	MembersForDate(ctx context.Context, date string, allianceID int64) (map[string]SnapshotRow, error)
	RowsForDate(ctx context.Context, date string, allianceID int64) ([]SnapshotRow, error)
	ServerRows(ctx context.Context, date string) ([]SnapshotRow, error)
	AllianceAggregates(ctx context.Context, date string) ([]AllianceAggregate, error)
	AlliancePowerByDate(ctx context.Context, date string) (map[int64]int64, error)

	SentEvents(ctx context.Context, window string) (map[string]struct{}, error)
	MarkSent(ctx context.Context, window string, keys []string) error

	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error

	Close() error
}

// SnapshotRow is one member's stat capture for one date, joined with the
// player's current display name. All counters are parsed integers; missing
// upstream values arrive here as 0.
type SnapshotRow struct {
	PlayerID        int64
	Name            string
	Server          int64
	Level           int64
	Power           int64
	Helps           int64
	RSSContrib      int64
	ISOContrib      int64
	PlayersKilled   int64
	HostilesKilled  int64
	ResourcesMined  int64
	ResourcesRaided int64
	RankTitle       string
	JoinDate        string
	AllianceID      int64
	AllianceTag     string
}

// ImportDay is one backfilled day from a historical export document.
type ImportDay struct {
	Date string
	Rows []SnapshotRow
}

// AllianceAggregate is a per-alliance rollup of one date's snapshot rows.
type AllianceAggregate struct {
	AllianceID     int64
	AllianceTag    string
	MemberCount    int
	TotalPower     int64
	AvgLevel       float64
	MaxLevel       int64
	TotalPVP       int64
	TotalHostiles  int64
	TotalMined     int64
	TotalRaided    int64
}

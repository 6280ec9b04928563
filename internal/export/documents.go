// Package export materializes the dashboard JSON documents from the store:
// the current alliance roster, the full per-day history, and the server-wide
// alliance and player standings.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

// Summary carries one day's alliance totals as display strings.
type Summary struct {
	TotalPower  string `json:"total_power"`
	MemberCount string `json:"member_count"`
	TotalHelps  string `json:"total_helps"`
	TotalRSS    string `json:"total_rss"`
	TotalISO    string `json:"total_iso"`
	AvgLevel    string `json:"avg_level"`
}

// LatestSummary adds the league slot the roster dashboard shows.
type LatestSummary struct {
	Summary
	League string `json:"league"`
}

// MemberDocument is one roster row in latest.json, everything stringified
// the way the dashboard table consumes it.
type MemberDocument struct {
	Name            string `json:"name"`
	Rank            string `json:"rank"`
	Level           string `json:"level"`
	Power           string `json:"power"`
	Helps           string `json:"helps"`
	RSSContrib      string `json:"rss_contrib"`
	ISOContrib      string `json:"iso_contrib"`
	JoinDate        string `json:"join_date"`
	ID              string `json:"id"`
	PlayersKilled   string `json:"players_killed"`
	HostilesKilled  string `json:"hostiles_killed"`
	ResourcesMined  string `json:"resources_mined"`
	ResourcesRaided string `json:"resources_raided"`
	AllianceTag     string `json:"alliance_tag"`
	AllianceName    string `json:"alliance_name"`
	AllianceID      int64  `json:"alliance_id"`
}

type LatestDocument struct {
	PulledAt     string           `json:"pulled_at"`
	AllianceURL  string           `json:"alliance_url"`
	AllianceName string           `json:"alliance_name"`
	AllianceTag  string           `json:"alliance_tag"`
	Summary      LatestSummary    `json:"summary"`
	Members      []MemberDocument `json:"members"`
}

// HistoryMember is one member's stats inside a history day, keyed by
// player ID in the parent map.
type HistoryMember struct {
	Level           string `json:"level"`
	Power           string `json:"power"`
	Helps           string `json:"helps"`
	RSSContrib      string `json:"rss_contrib"`
	ISOContrib      string `json:"iso_contrib"`
	PlayersKilled   string `json:"players_killed"`
	HostilesKilled  string `json:"hostiles_killed"`
	ResourcesMined  string `json:"resources_mined"`
	ResourcesRaided string `json:"resources_raided"`
	Name            string `json:"name"`
}

type HistoryDay struct {
	Date    string                   `json:"date"`
	Summary Summary                  `json:"summary"`
	Members map[string]HistoryMember `json:"members"`
}

type AllianceDocument struct {
	AllianceID   int64  `json:"alliance_id"`
	AllianceTag  string `json:"alliance_tag"`
	Rank         int    `json:"rank"`
	MemberCount  int    `json:"member_count"`
	TotalPower   int64  `json:"total_power"`
	AvgLevel     int    `json:"avg_level"`
	MaxLevel     int64  `json:"max_level"`
	TotalPVP     int64  `json:"total_pvp"`
	TotalHK      int64  `json:"total_hk"`
	TotalMined   int64  `json:"total_mined"`
	TotalRaided  int64  `json:"total_raided"`
	PowerDelta7d *int64 `json:"power_delta_7d,omitempty"`
}

type ServerAlliancesDocument struct {
	PulledAt      string             `json:"pulled_at"`
	AsOfDate      string             `json:"as_of_date"`
	DeltaBaseDate string             `json:"delta_base_date"`
	AllianceCount int                `json:"alliance_count"`
	Alliances     []AllianceDocument `json:"alliances"`
}

type PlayerDocument struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	AllianceID      int64   `json:"alliance_id"`
	AllianceTag     string  `json:"alliance_tag"`
	Level           int64   `json:"level"`
	Power           int64   `json:"power"`
	Helps           int64   `json:"helps"`
	RSSContrib      int64   `json:"rss_contrib"`
	ISOContrib      int64   `json:"iso_contrib"`
	PlayersKilled   int64   `json:"players_killed"`
	HostilesKilled  int64   `json:"hostiles_killed"`
	ResourcesMined  int64   `json:"resources_mined"`
	ResourcesRaided int64   `json:"resources_raided"`
	PowerDelta7d    int64   `json:"power_delta_7d"`
	Moved           bool    `json:"moved"`
	PrevAllianceTag *string `json:"prev_alliance_tag"`
}

type ServerPlayersDocument struct {
	PulledAt    string           `json:"pulled_at"`
	AsOfDate    string           `json:"as_of_date"`
	PlayerCount int              `json:"player_count"`
	Players     []PlayerDocument `json:"players"`
}

// LoadHistory reads a history.json document for backfilling the store.
func LoadHistory(path string) ([]HistoryDay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read history file: %w", err)
	}

	var history []HistoryDay
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("unable to parse history file: %w", err)
	}
	return history, nil
}

// ToImportDays converts loaded history days to storage rows, parsing the
// abbreviated display values back to integers.
func ToImportDays(history []HistoryDay, server int, allianceID int64, allianceTag string) []storage.ImportDay {
	days := make([]storage.ImportDay, 0, len(history))
	for _, day := range history {
		rows := make([]storage.SnapshotRow, 0, len(day.Members))
		for id, m := range day.Members {
			var playerID int64
			if _, err := fmt.Sscanf(id, "%d", &playerID); err != nil {
				continue
			}
			rows = append(rows, storage.SnapshotRow{
				PlayerID:        playerID,
				Name:            m.Name,
				Server:          int64(server),
				Level:           abbrev.Parse(m.Level),
				Power:           abbrev.Parse(m.Power),
				Helps:           abbrev.Parse(m.Helps),
				RSSContrib:      abbrev.Parse(m.RSSContrib),
				ISOContrib:      abbrev.Parse(m.ISOContrib),
				PlayersKilled:   abbrev.Parse(m.PlayersKilled),
				HostilesKilled:  abbrev.Parse(m.HostilesKilled),
				ResourcesMined:  abbrev.Parse(m.ResourcesMined),
				ResourcesRaided: abbrev.Parse(m.ResourcesRaided),
				AllianceID:      allianceID,
				AllianceTag:     allianceTag,
			})
		}
		days = append(days, storage.ImportDay{Date: day.Date, Rows: rows})
	}
	return days
}

// formatJoinDate rewrites an ISO-8601 join timestamp as MM-DD-YYYY for the
// dashboard table. Anything that doesn't look ISO passes through untouched.
func formatJoinDate(iso string) string {
	if iso == "" {
		return ""
	}
	datePart, _, _ := strings.Cut(iso, "T")
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return datePart
	}
	return parts[1] + "-" + parts[2] + "-" + parts[0]
}

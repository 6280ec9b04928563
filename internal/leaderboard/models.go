// Package leaderboard is the input boundary: it loads raw snapshot documents
// produced by the acquisition layer and parses scraped roster HTML, mapping
// both into storage rows. Field values upstream are untyped — the scraper
// emits abbreviated strings, the API emits numbers — so everything funnels
// through FlexString and the abbrev codec.
package leaderboard

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

// FlexString accepts a JSON string or number and holds it as a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	// Bare number; keep the literal text.
	*f = FlexString(s)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// RawMemberRecord is one member as captured upstream.
type RawMemberRecord struct {
	ID              FlexString `json:"id"`
	Name            string     `json:"name"`
	Rank            string     `json:"rank"`
	Level           FlexString `json:"level"`
	Power           FlexString `json:"power"`
	Helps           FlexString `json:"helps"`
	RSSContrib      FlexString `json:"rss_contrib"`
	ISOContrib      FlexString `json:"iso_contrib"`
	JoinDate        string     `json:"join_date"`
	PlayersKilled   FlexString `json:"players_killed"`
	HostilesKilled  FlexString `json:"hostiles_killed"`
	ResourcesMined  FlexString `json:"resources_mined"`
	ResourcesRaided FlexString `json:"resources_raided"`
	AllianceTag     string     `json:"alliance_tag"`
	AllianceName    string     `json:"alliance_name"`
	AllianceID      int64      `json:"alliance_id"`
}

// RawSnapshot is the snapshot document written by the acquisition layer.
type RawSnapshot struct {
	PulledAt    string            `json:"pulled_at"`
	AllianceURL string            `json:"alliance_url"`
	Members     []RawMemberRecord `json:"members"`
}

// LoadSnapshot reads a raw snapshot JSON file.
func LoadSnapshot(path string) (*RawSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read snapshot file: %w", err)
	}

	var snap RawSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unable to parse snapshot file: %w", err)
	}
	return &snap, nil
}

// MapMember converts a raw record to a storage row. Records without a player
// ID cannot be stored and return false.
func MapMember(m RawMemberRecord, server int) (storage.SnapshotRow, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(m.ID.String()), 10, 64)
	if err != nil || id == 0 {
		return storage.SnapshotRow{}, false
	}

	return storage.SnapshotRow{
		PlayerID:        id,
		Name:            m.Name,
		Server:          int64(server),
		Level:           abbrev.Parse(m.Level.String()),
		Power:           abbrev.Parse(m.Power.String()),
		Helps:           abbrev.Parse(m.Helps.String()),
		RSSContrib:      abbrev.Parse(m.RSSContrib.String()),
		ISOContrib:      abbrev.Parse(m.ISOContrib.String()),
		PlayersKilled:   abbrev.Parse(m.PlayersKilled.String()),
		HostilesKilled:  abbrev.Parse(m.HostilesKilled.String()),
		ResourcesMined:  abbrev.Parse(m.ResourcesMined.String()),
		ResourcesRaided: abbrev.Parse(m.ResourcesRaided.String()),
		RankTitle:       m.Rank,
		JoinDate:        m.JoinDate,
		AllianceID:      m.AllianceID,
		AllianceTag:     m.AllianceTag,
	}, true
}

// MapMembers converts every mappable record, dropping the ID-less ones.
func MapMembers(members []RawMemberRecord, server int) []storage.SnapshotRow {
	rows := make([]storage.SnapshotRow, 0, len(members))
	for _, m := range members {
		if row, ok := MapMember(m, server); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/drewAdorno/stfc-stat-tracker/internal/config"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

type mockStore struct {
	storage.Storage

	latestDate       string
	latestServerDate string
	distinctDates    []string
	rowsByDate       map[string][]storage.SnapshotRow
	serverRowsByDate map[string][]storage.SnapshotRow
	aggregates       []storage.AllianceAggregate
	pastPower        map[int64]int64
	deltaDate        string
	pulledAt         string
}

func (m *mockStore) LatestDate(_ context.Context, _ int64) (string, error) {
	return m.latestDate, nil
}

func (m *mockStore) LatestServerDate(_ context.Context) (string, error) {
	return m.latestServerDate, nil
}

func (m *mockStore) DistinctDates(_ context.Context, _ int64) ([]string, error) {
	return m.distinctDates, nil
}

func (m *mockStore) DateNDaysBefore(_ context.Context, _ string, _ int) (string, error) {
	return m.deltaDate, nil
}

func (m *mockStore) RowsForDate(_ context.Context, date string, _ int64) ([]storage.SnapshotRow, error) {
	return m.rowsByDate[date], nil
}

func (m *mockStore) ServerRows(_ context.Context, date string) ([]storage.SnapshotRow, error) {
	return m.serverRowsByDate[date], nil
}

func (m *mockStore) AllianceAggregates(_ context.Context, _ string) ([]storage.AllianceAggregate, error) {
	return m.aggregates, nil
}

func (m *mockStore) AlliancePowerByDate(_ context.Context, _ string) (map[int64]int64, error) {
	return m.pastPower, nil
}

func (m *mockStore) LastPulledAt(_ context.Context) (string, error) {
	return m.pulledAt, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:       t.TempDir(),
		AllianceID:    3974286889,
		AllianceName:  "Discovery",
		AllianceTag:   "NCC",
		DeltaBaseline: config.DeltaBaselineZero,
	}
}

func readDoc(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("parsing %s: %v", name, err)
	}
}

func sampleRow(id int64, name string, power int64) storage.SnapshotRow {
	return storage.SnapshotRow{
		PlayerID:    id,
		Name:        name,
		Level:       38,
		Power:       power,
		Helps:       440,
		RSSContrib:  1_500_000_000,
		ISOContrib:  200_000,
		RankTitle:   "commander",
		JoinDate:    "2026-08-01T12:00:00",
		AllianceID:  3974286889,
		AllianceTag: "NCC",
	}
}

func TestWriteLatest(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{
		latestDate: "2026-08-28",
		rowsByDate: map[string][]storage.SnapshotRow{
			"2026-08-28": {
				sampleRow(1, "Kirk", 80_000_000),
				sampleRow(2, "Spock", 90_000_000),
			},
		},
		pulledAt: "2026-08-28T14:00:00Z",
	}

	if err := NewExporter(store, cfg).WriteLatest(context.Background()); err != nil {
		t.Fatalf("WriteLatest: %v", err)
	}

	var doc LatestDocument
	readDoc(t, cfg.DataDir, "latest.json", &doc)

	if doc.PulledAt != "2026-08-28T14:00:00Z" {
		t.Errorf("pulled_at = %q", doc.PulledAt)
	}
	if doc.AllianceURL != cfg.AllianceURL() {
		t.Errorf("alliance_url = %q, want %q", doc.AllianceURL, cfg.AllianceURL())
	}
	if len(doc.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(doc.Members))
	}

	m := doc.Members[0]
	if m.Name != "Kirk" || m.ID != "1" {
		t.Errorf("members[0] = %+v, want Kirk id 1", m)
	}
	if m.Power != "80.00M" {
		t.Errorf("power = %q, want 80.00M", m.Power)
	}
	if m.Rank != "Commander" {
		t.Errorf("rank = %q, want title-cased Commander", m.Rank)
	}
	if m.JoinDate != "08-01-2026" {
		t.Errorf("join_date = %q, want 08-01-2026", m.JoinDate)
	}

	if doc.Summary.TotalPower != "170.00M" {
		t.Errorf("total_power = %q, want 170.00M", doc.Summary.TotalPower)
	}
	if doc.Summary.MemberCount != "2" {
		t.Errorf("member_count = %q, want 2", doc.Summary.MemberCount)
	}
	if doc.Summary.AvgLevel != "38" {
		t.Errorf("avg_level = %q, want 38", doc.Summary.AvgLevel)
	}
}

func TestWriteLatest_EmptyStoreWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{}

	if err := NewExporter(store, cfg).WriteLatest(context.Background()); err != nil {
		t.Fatalf("WriteLatest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "latest.json")); !os.IsNotExist(err) {
		t.Errorf("latest.json should not exist for an empty store")
	}
}

func TestWriteHistory(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{
		distinctDates: []string{"2026-08-27", "2026-08-28"},
		rowsByDate: map[string][]storage.SnapshotRow{
			"2026-08-27": {sampleRow(1, "Kirk", 79_000_000)},
			"2026-08-28": {sampleRow(1, "Kirk", 80_000_000)},
		},
	}

	if err := NewExporter(store, cfg).WriteHistory(context.Background()); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	var history []HistoryDay
	readDoc(t, cfg.DataDir, "history.json", &history)

	if len(history) != 2 {
		t.Fatalf("history days = %d, want 2", len(history))
	}
	if history[0].Date != "2026-08-27" {
		t.Errorf("history[0].Date = %q", history[0].Date)
	}
	m, ok := history[1].Members["1"]
	if !ok {
		t.Fatalf("history[1] missing member 1: %+v", history[1].Members)
	}
	if m.Power != "80.00M" || m.Name != "Kirk" {
		t.Errorf("member = %+v", m)
	}
}

func TestWriteServerAlliances(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{
		latestServerDate: "2026-08-28",
		deltaDate:        "2026-08-21",
		aggregates: []storage.AllianceAggregate{
			{AllianceID: 1, AllianceTag: "NCC", MemberCount: 40, TotalPower: 3_000_000_000, AvgLevel: 35.6},
			{AllianceID: 2, AllianceTag: "KLI", MemberCount: 30, TotalPower: 2_000_000_000, AvgLevel: 33.2},
		},
		pastPower: map[int64]int64{1: 2_800_000_000},
	}

	if err := NewExporter(store, cfg).WriteServerAlliances(context.Background()); err != nil {
		t.Fatalf("WriteServerAlliances: %v", err)
	}

	var doc ServerAlliancesDocument
	readDoc(t, cfg.DataDir, "server_alliances.json", &doc)

	if doc.AsOfDate != "2026-08-28" || doc.DeltaBaseDate != "2026-08-21" {
		t.Errorf("dates = %q / %q", doc.AsOfDate, doc.DeltaBaseDate)
	}
	if doc.AllianceCount != 2 || len(doc.Alliances) != 2 {
		t.Fatalf("alliances = %+v", doc.Alliances)
	}

	first := doc.Alliances[0]
	if first.Rank != 1 || first.AllianceTag != "NCC" {
		t.Errorf("alliances[0] = %+v, want NCC at rank 1", first)
	}
	if first.PowerDelta7d == nil || *first.PowerDelta7d != 200_000_000 {
		t.Errorf("NCC delta = %v, want 200000000", first.PowerDelta7d)
	}
	// Zero baseline mode: absent alliance reads full power as the delta.
	second := doc.Alliances[1]
	if second.PowerDelta7d == nil || *second.PowerDelta7d != 2_000_000_000 {
		t.Errorf("KLI delta = %v, want full power", second.PowerDelta7d)
	}
}

func TestWriteServerAlliances_OmitBaseline(t *testing.T) {
	cfg := testConfig(t)
	cfg.DeltaBaseline = config.DeltaBaselineOmit
	store := &mockStore{
		latestServerDate: "2026-08-28",
		aggregates: []storage.AllianceAggregate{
			{AllianceID: 7, AllianceTag: "NEW", TotalPower: 500_000_000},
		},
	}

	if err := NewExporter(store, cfg).WriteServerAlliances(context.Background()); err != nil {
		t.Fatalf("WriteServerAlliances: %v", err)
	}

	var doc ServerAlliancesDocument
	readDoc(t, cfg.DataDir, "server_alliances.json", &doc)

	if doc.Alliances[0].PowerDelta7d != nil {
		t.Errorf("delta = %v, want omitted", doc.Alliances[0].PowerDelta7d)
	}
	// No delta base available: falls back to the as-of date.
	if doc.DeltaBaseDate != "2026-08-28" {
		t.Errorf("delta_base_date = %q, want as-of fallback", doc.DeltaBaseDate)
	}
}

func TestWriteServerPlayers(t *testing.T) {
	cfg := testConfig(t)

	curr := sampleRow(1, "Kirk", 85_000_000)
	moved := sampleRow(2, "Spock", 90_000_000)
	past1 := sampleRow(1, "Kirk", 80_000_000)
	past2 := sampleRow(2, "Spock", 92_000_000)
	past2.AllianceID = 20
	past2.AllianceTag = "KLI"

	store := &mockStore{
		latestServerDate: "2026-08-28",
		deltaDate:        "2026-08-21",
		serverRowsByDate: map[string][]storage.SnapshotRow{
			"2026-08-28": {moved, curr},
			"2026-08-21": {past1, past2},
		},
	}

	if err := NewExporter(store, cfg).WriteServerPlayers(context.Background()); err != nil {
		t.Fatalf("WriteServerPlayers: %v", err)
	}

	var doc ServerPlayersDocument
	readDoc(t, cfg.DataDir, "server_players.json", &doc)

	if doc.PlayerCount != 2 {
		t.Fatalf("player_count = %d", doc.PlayerCount)
	}

	spock := doc.Players[0]
	if spock.PowerDelta7d != -2_000_000 {
		t.Errorf("spock delta = %d, want -2000000", spock.PowerDelta7d)
	}
	if !spock.Moved || spock.PrevAllianceTag == nil || *spock.PrevAllianceTag != "KLI" {
		t.Errorf("spock movement = %+v, want moved from KLI", spock)
	}

	kirk := doc.Players[1]
	if kirk.PowerDelta7d != 5_000_000 || kirk.Moved {
		t.Errorf("kirk = %+v, want +5M and no move", kirk)
	}
	if kirk.PrevAllianceTag != nil {
		t.Errorf("kirk prev_alliance_tag = %v, want null", kirk.PrevAllianceTag)
	}
}

func TestToImportDays(t *testing.T) {
	history := []HistoryDay{
		{
			Date: "2026-08-27",
			Members: map[string]HistoryMember{
				"1":     {Name: "Kirk", Level: "38", Power: "80.00M", Helps: "440"},
				"junk!": {Name: "Bad"},
			},
		},
	}

	days := ToImportDays(history, 716, 3974286889, "NCC")

	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	if days[0].Date != "2026-08-27" {
		t.Errorf("date = %q", days[0].Date)
	}
	if len(days[0].Rows) != 1 {
		t.Fatalf("rows = %+v, want the non-numeric key skipped", days[0].Rows)
	}

	r := days[0].Rows[0]
	if r.PlayerID != 1 || r.Name != "Kirk" {
		t.Errorf("row = %+v", r)
	}
	if r.Power != 80_000_000 {
		t.Errorf("power = %d, want 80000000", r.Power)
	}
	if r.AllianceID != 3974286889 || r.AllianceTag != "NCC" || r.Server != 716 {
		t.Errorf("row identity = %+v", r)
	}
}

func TestFormatJoinDate(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"2026-08-01T12:00:00", "08-01-2026"},
		{"2026-08-01", "08-01-2026"},
		{"Aug 1, 2026", "Aug 1, 2026"},
	}
	for _, c := range cases {
		if got := formatJoinDate(c.in); got != c.want {
			t.Errorf("formatJoinDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

package notify

import (
	"strings"
	"testing"

	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

func TestBuildReportEmbed_Description(t *testing.T) {
	prev := &tracker.Summary{
		TotalPower: 2_900_000_000,
		TotalHelps: 4_900,
		TotalRSS:   9_500_000_000,
		TotalISO:   900_000_000,
	}
	data := ReportData{
		Date:         "2026-08-28",
		AllianceName: "Discovery",
		Summary: tracker.Summary{
			TotalPower:  3_000_000_000,
			TotalHelps:  5_000,
			TotalRSS:    10_000_000_000,
			TotalISO:    1_000_000_000,
			MemberCount: 42,
		},
		Prev: prev,
	}

	embed := BuildReportEmbed(data, "ncctracker.top")

	if embed.Title != "Discovery Daily Report — 2026-08-28" {
		t.Errorf("title = %q", embed.Title)
	}
	if embed.Color != ColorReport {
		t.Errorf("color = %#x, want %#x", embed.Color, ColorReport)
	}
	if !strings.Contains(embed.Description, "Total Power: 3B (+100M) | Members: 42") {
		t.Errorf("description line 1 wrong: %q", embed.Description)
	}
	if !strings.Contains(embed.Description, "Helps: 5K (+100) | RSS: 10B (+500M) | ISO: 1B (+100M)") {
		t.Errorf("description line 2 wrong: %q", embed.Description)
	}
}

func TestBuildReportEmbed_NoBaselineNoDeltas(t *testing.T) {
	data := ReportData{
		Date:         "2026-08-28",
		AllianceName: "Discovery",
		Summary:      tracker.Summary{TotalPower: 3_000_000_000, MemberCount: 42},
	}

	embed := BuildReportEmbed(data, "")
	if strings.Contains(embed.Description, "(") {
		t.Errorf("description should carry no deltas without a baseline: %q", embed.Description)
	}
}

func TestBuildReportEmbed_FieldOrder(t *testing.T) {
	data := ReportData{
		Date:         "2026-08-28",
		AllianceName: "Discovery",
		NewMembers:   []tracker.Member{{Name: "Uhura", Level: "31", Power: "50M", JoinDate: "Aug 25, 2026"}},
		Departed:     []tracker.DepartedMember{{Name: "Kirk", Power: "80M", LastSeen: "2026-08-27"}},
		Inactive:     []tracker.InactiveMember{{Name: "Scotty", Days: 4}},
		Gainers:      []tracker.Mover{{Name: "Spock", Delta: 5_000_000}},
		Losers:       []tracker.Mover{{Name: "Sulu", Delta: -2_000_000}},
		LowestHelps:  []tracker.Mover{{Name: "Chekov", Delta: 3}},
	}

	embed := BuildReportEmbed(data, "")

	want := []string{
		"New Members (7d)",
		"Members Who Left",
		"Inactive Alerts",
		"Power Gainers (7d)",
		"Power Losers (7d)",
		"Lowest Helps Gained",
	}
	if len(embed.Fields) != len(want) {
		t.Fatalf("fields = %d, want %d", len(embed.Fields), len(want))
	}
	for i, name := range want {
		if embed.Fields[i].Name != name {
			t.Errorf("fields[%d].Name = %q, want %q", i, embed.Fields[i].Name, name)
		}
	}

	if !embed.Fields[3].Inline || !embed.Fields[4].Inline {
		t.Errorf("power mover fields should be inline")
	}
	if embed.Fields[0].Inline {
		t.Errorf("new members field should not be inline")
	}
	if !strings.Contains(embed.Fields[3].Value, "+5M") {
		t.Errorf("gainers value = %q, want signed delta", embed.Fields[3].Value)
	}
	if !strings.Contains(embed.Fields[4].Value, "-2M") {
		t.Errorf("losers value = %q, want signed delta", embed.Fields[4].Value)
	}
}

func TestBuildReportEmbed_TrimsTrailingFieldsToBudget(t *testing.T) {
	// Six fields near the per-field cap exceed the whole-payload budget;
	// the lowest-priority (last) fields must be dropped.
	longName := strings.Repeat("x", 200)
	var members []tracker.Member
	var departed []tracker.DepartedMember
	var inactive []tracker.InactiveMember
	var movers []tracker.Mover
	for i := 0; i < 10; i++ {
		members = append(members, tracker.Member{Name: longName, Level: "30", Power: "50M", JoinDate: "Aug 25, 2026"})
		departed = append(departed, tracker.DepartedMember{Name: longName, Power: "50M", LastSeen: "2026-08-27"})
		inactive = append(inactive, tracker.InactiveMember{Name: longName, Days: 2})
		movers = append(movers, tracker.Mover{Name: longName, Delta: 1_000_000})
	}

	data := ReportData{
		Date:         "2026-08-28",
		AllianceName: "Discovery",
		NewMembers:   members,
		Departed:     departed,
		Inactive:     inactive,
		Gainers:      movers,
		Losers:       movers,
		LowestHelps:  movers,
	}

	embed := BuildReportEmbed(data, "ncctracker.top")

	if size := embedSize(embed); size > 5900 {
		t.Errorf("embed size = %d, want <= 5900", size)
	}
	if len(embed.Fields) == 0 {
		t.Fatalf("trimming removed every field")
	}
	// The highest-priority field survives.
	if embed.Fields[0].Name != "New Members (7d)" {
		t.Errorf("fields[0] = %q, want New Members (7d)", embed.Fields[0].Name)
	}
}

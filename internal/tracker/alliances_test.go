package tracker

import (
	"testing"

	"github.com/drewAdorno/stfc-stat-tracker/internal/config"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

func TestRankAlliances(t *testing.T) {
	current := []storage.AllianceAggregate{
		{AllianceID: 1, AllianceTag: "NCC", MemberCount: 40, TotalPower: 3_000_000_000, AvgLevel: 35.6, MaxLevel: 45},
		{AllianceID: 2, AllianceTag: "KLI", MemberCount: 30, TotalPower: 2_000_000_000, AvgLevel: 33.2, MaxLevel: 42},
	}
	past := map[int64]int64{
		1: 2_800_000_000,
		2: 2_100_000_000,
	}

	rollups := RankAlliances(current, past, config.DeltaBaselineZero)

	if len(rollups) != 2 {
		t.Fatalf("rollups = %+v, want 2", rollups)
	}
	if rollups[0].Rank != 1 || rollups[0].AllianceTag != "NCC" {
		t.Errorf("rollups[0] = %+v, want NCC at rank 1", rollups[0])
	}
	if rollups[0].PowerDelta7d != 200_000_000 || !rollups[0].HasDelta {
		t.Errorf("NCC delta = %d (has=%v), want +200000000", rollups[0].PowerDelta7d, rollups[0].HasDelta)
	}
	if rollups[1].PowerDelta7d != -100_000_000 {
		t.Errorf("KLI delta = %d, want -100000000", rollups[1].PowerDelta7d)
	}
	if rollups[0].AvgLevel != 36 {
		t.Errorf("AvgLevel = %d, want rounded 36", rollups[0].AvgLevel)
	}
}

func TestRankAlliances_AbsentBaseline(t *testing.T) {
	current := []storage.AllianceAggregate{
		{AllianceID: 7, AllianceTag: "NEW", TotalPower: 500_000_000},
	}

	zero := RankAlliances(current, nil, config.DeltaBaselineZero)
	if !zero[0].HasDelta || zero[0].PowerDelta7d != 500_000_000 {
		t.Errorf("zero mode = %+v, want full power as delta", zero[0])
	}

	omit := RankAlliances(current, nil, config.DeltaBaselineOmit)
	if omit[0].HasDelta {
		t.Errorf("omit mode = %+v, want no delta", omit[0])
	}
}

func TestPlayerMovements(t *testing.T) {
	current := []storage.SnapshotRow{
		{PlayerID: 1, Name: "Kirk", Power: 85_000_000, AllianceID: 10, AllianceTag: "NCC"},
		{PlayerID: 2, Name: "Spock", Power: 90_000_000, AllianceID: 10, AllianceTag: "NCC"},
		{PlayerID: 3, Name: "Chekov", Power: 40_000_000, AllianceID: 10, AllianceTag: "NCC"},
	}
	past := map[string]storage.SnapshotRow{
		"1": {PlayerID: 1, Power: 80_000_000, AllianceID: 10, AllianceTag: "NCC"},
		"2": {PlayerID: 2, Power: 92_000_000, AllianceID: 20, AllianceTag: "KLI"},
	}

	moves := PlayerMovements(current, past)

	if m := moves[1]; m.PowerDelta7d != 5_000_000 || m.Moved {
		t.Errorf("Kirk = %+v, want +5M and no move", m)
	}
	if m := moves[2]; m.PowerDelta7d != -2_000_000 || !m.Moved || m.PrevTag != "KLI" {
		t.Errorf("Spock = %+v, want -2M moved from KLI", m)
	}
	if m := moves[3]; m.PowerDelta7d != 0 || m.Moved {
		t.Errorf("Chekov = %+v, want zero movement without a baseline", m)
	}
}

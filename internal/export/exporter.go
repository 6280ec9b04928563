package export

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
	"github.com/drewAdorno/stfc-stat-tracker/internal/config"
	"github.com/drewAdorno/stfc-stat-tracker/internal/metrics"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

type Exporter struct {
	store storage.Storage
	cfg   *config.Config
	title cases.Caser
}

func NewExporter(store storage.Storage, cfg *config.Config) *Exporter {
	return &Exporter{
		store: store,
		cfg:   cfg,
		title: cases.Title(language.English, cases.NoLower),
	}
}

// WriteAll materializes every export document. A store without any snapshot
// data is not an error; affected documents are simply skipped.
func (e *Exporter) WriteAll(ctx context.Context) error {
	if err := e.WriteLatest(ctx); err != nil {
		return err
	}
	if err := e.WriteHistory(ctx); err != nil {
		return err
	}
	if err := e.WriteServerAlliances(ctx); err != nil {
		return err
	}
	return e.WriteServerPlayers(ctx)
}

func (e *Exporter) WriteLatest(ctx context.Context) error {
	date, err := e.store.LatestDate(ctx, e.cfg.AllianceID)
	if err != nil {
		return fmt.Errorf("finding latest date: %w", err)
	}
	if date == "" {
		return nil
	}

	rows, err := e.store.RowsForDate(ctx, date, e.cfg.AllianceID)
	if err != nil {
		return fmt.Errorf("loading rows for %s: %w", date, err)
	}

	pulledAt, err := e.store.LastPulledAt(ctx)
	if err != nil {
		return fmt.Errorf("loading pull timestamp: %w", err)
	}
	if pulledAt == "" {
		pulledAt = time.Now().Format(time.RFC3339)
	}

	members := make([]MemberDocument, 0, len(rows))
	for _, r := range rows {
		name := ""
		if r.AllianceID == e.cfg.AllianceID {
			name = e.cfg.AllianceName
		}
		members = append(members, MemberDocument{
			Name:            r.Name,
			Rank:            e.title.String(r.RankTitle),
			Level:           abbrev.Format(r.Level),
			Power:           abbrev.Format(r.Power),
			Helps:           abbrev.Format(r.Helps),
			RSSContrib:      abbrev.Format(r.RSSContrib),
			ISOContrib:      abbrev.Format(r.ISOContrib),
			JoinDate:        formatJoinDate(r.JoinDate),
			ID:              strconv.FormatInt(r.PlayerID, 10),
			PlayersKilled:   abbrev.Format(r.PlayersKilled),
			HostilesKilled:  abbrev.Format(r.HostilesKilled),
			ResourcesMined:  abbrev.Format(r.ResourcesMined),
			ResourcesRaided: abbrev.Format(r.ResourcesRaided),
			AllianceTag:     r.AllianceTag,
			AllianceName:    name,
			AllianceID:      r.AllianceID,
		})
	}

	doc := LatestDocument{
		PulledAt:     pulledAt,
		AllianceURL:  e.cfg.AllianceURL(),
		AllianceName: e.cfg.AllianceName,
		AllianceTag:  e.cfg.AllianceTag,
		Summary:      LatestSummary{Summary: summarizeRows(rows)},
		Members:      members,
	}

	return e.writeJSON(ctx, "latest.json", doc)
}

func (e *Exporter) WriteHistory(ctx context.Context) error {
	dates, err := e.store.DistinctDates(ctx, e.cfg.AllianceID)
	if err != nil {
		return fmt.Errorf("listing snapshot dates: %w", err)
	}

	history := make([]HistoryDay, 0, len(dates))
	for _, date := range dates {
		rows, err := e.store.RowsForDate(ctx, date, e.cfg.AllianceID)
		if err != nil {
			return fmt.Errorf("loading rows for %s: %w", date, err)
		}

		members := make(map[string]HistoryMember, len(rows))
		for _, r := range rows {
			members[strconv.FormatInt(r.PlayerID, 10)] = HistoryMember{
				Level:           abbrev.Format(r.Level),
				Power:           abbrev.Format(r.Power),
				Helps:           abbrev.Format(r.Helps),
				RSSContrib:      abbrev.Format(r.RSSContrib),
				ISOContrib:      abbrev.Format(r.ISOContrib),
				PlayersKilled:   abbrev.Format(r.PlayersKilled),
				HostilesKilled:  abbrev.Format(r.HostilesKilled),
				ResourcesMined:  abbrev.Format(r.ResourcesMined),
				ResourcesRaided: abbrev.Format(r.ResourcesRaided),
				Name:            r.Name,
			}
		}

		history = append(history, HistoryDay{
			Date:    date,
			Summary: summarizeRows(rows),
			Members: members,
		})
	}

	return e.writeJSON(ctx, "history.json", history)
}

func (e *Exporter) WriteServerAlliances(ctx context.Context) error {
	date, err := e.store.LatestServerDate(ctx)
	if err != nil {
		return fmt.Errorf("finding latest server date: %w", err)
	}
	if date == "" {
		return nil
	}

	deltaDate, err := e.store.DateNDaysBefore(ctx, date, 7)
	if err != nil {
		return fmt.Errorf("finding delta base date: %w", err)
	}

	aggs, err := e.store.AllianceAggregates(ctx, date)
	if err != nil {
		return fmt.Errorf("aggregating alliances: %w", err)
	}

	pastPower := map[int64]int64{}
	if deltaDate != "" {
		pastPower, err = e.store.AlliancePowerByDate(ctx, deltaDate)
		if err != nil {
			return fmt.Errorf("loading past alliance power: %w", err)
		}
	}

	rollups := tracker.RankAlliances(aggs, pastPower, e.cfg.DeltaBaseline)
	alliances := make([]AllianceDocument, 0, len(rollups))
	for _, r := range rollups {
		doc := AllianceDocument{
			AllianceID:  r.AllianceID,
			AllianceTag: r.AllianceTag,
			Rank:        r.Rank,
			MemberCount: r.MemberCount,
			TotalPower:  r.TotalPower,
			AvgLevel:    r.AvgLevel,
			MaxLevel:    r.MaxLevel,
			TotalPVP:    r.TotalPVP,
			TotalHK:     r.TotalHostiles,
			TotalMined:  r.TotalMined,
			TotalRaided: r.TotalRaided,
		}
		if r.HasDelta {
			delta := r.PowerDelta7d
			doc.PowerDelta7d = &delta
		}
		alliances = append(alliances, doc)
	}

	if deltaDate == "" {
		deltaDate = date
	}

	doc := ServerAlliancesDocument{
		PulledAt:      e.pulledAt(ctx),
		AsOfDate:      date,
		DeltaBaseDate: deltaDate,
		AllianceCount: len(alliances),
		Alliances:     alliances,
	}

	return e.writeJSON(ctx, "server_alliances.json", doc)
}

func (e *Exporter) WriteServerPlayers(ctx context.Context) error {
	date, err := e.store.LatestServerDate(ctx)
	if err != nil {
		return fmt.Errorf("finding latest server date: %w", err)
	}
	if date == "" {
		return nil
	}

	deltaDate, err := e.store.DateNDaysBefore(ctx, date, 7)
	if err != nil {
		return fmt.Errorf("finding delta base date: %w", err)
	}

	rows, err := e.store.ServerRows(ctx, date)
	if err != nil {
		return fmt.Errorf("loading server rows: %w", err)
	}

	past := map[string]storage.SnapshotRow{}
	if deltaDate != "" {
		pastRows, err := e.store.ServerRows(ctx, deltaDate)
		if err != nil {
			return fmt.Errorf("loading past server rows: %w", err)
		}
		for _, r := range pastRows {
			past[strconv.FormatInt(r.PlayerID, 10)] = r
		}
	}

	movements := tracker.PlayerMovements(rows, past)

	players := make([]PlayerDocument, 0, len(rows))
	for _, r := range rows {
		move := movements[r.PlayerID]
		doc := PlayerDocument{
			ID:              strconv.FormatInt(r.PlayerID, 10),
			Name:            r.Name,
			AllianceID:      r.AllianceID,
			AllianceTag:     r.AllianceTag,
			Level:           r.Level,
			Power:           r.Power,
			Helps:           r.Helps,
			RSSContrib:      r.RSSContrib,
			ISOContrib:      r.ISOContrib,
			PlayersKilled:   r.PlayersKilled,
			HostilesKilled:  r.HostilesKilled,
			ResourcesMined:  r.ResourcesMined,
			ResourcesRaided: r.ResourcesRaided,
			PowerDelta7d:    move.PowerDelta7d,
			Moved:           move.Moved,
		}
		if move.Moved {
			tag := move.PrevTag
			doc.PrevAllianceTag = &tag
		}
		players = append(players, doc)
	}

	doc := ServerPlayersDocument{
		PulledAt:    e.pulledAt(ctx),
		AsOfDate:    date,
		PlayerCount: len(players),
		Players:     players,
	}

	return e.writeJSON(ctx, "server_players.json", doc)
}

func (e *Exporter) pulledAt(ctx context.Context) string {
	pulledAt, err := e.store.LastPulledAt(ctx)
	if err != nil || pulledAt == "" {
		return time.Now().Format(time.RFC3339)
	}
	return pulledAt
}

func summarizeRows(rows []storage.SnapshotRow) Summary {
	var power, helps, rss, iso, levelSum int64
	for _, r := range rows {
		power += r.Power
		helps += r.Helps
		rss += r.RSSContrib
		iso += r.ISOContrib
		levelSum += r.Level
	}

	avgLevel := 0
	if len(rows) > 0 {
		avgLevel = int(math.Round(float64(levelSum) / float64(len(rows))))
	}

	return Summary{
		TotalPower:  abbrev.Format(power),
		MemberCount: strconv.Itoa(len(rows)),
		TotalHelps:  abbrev.Format(helps),
		TotalRSS:    abbrev.Format(rss),
		TotalISO:    abbrev.Format(iso),
		AvgLevel:    strconv.Itoa(avgLevel),
	}
}

// writeJSON marshals v and swaps it into place with a temp-file rename, so a
// dashboard reading mid-export never sees a torn document.
func (e *Exporter) writeJSON(_ context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		metrics.ExportWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	target := filepath.Join(e.cfg.DataDir, name)
	tmp, err := os.CreateTemp(e.cfg.DataDir, name+".tmp-*")
	if err != nil {
		metrics.ExportWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		metrics.ExportWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		metrics.ExportWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		metrics.ExportWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("replacing %s: %w", name, err)
	}

	metrics.ExportWrites.WithLabelValues(name, "ok").Inc()
	return nil
}

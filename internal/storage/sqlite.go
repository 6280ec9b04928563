package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// One writer at a time keeps upserts serialized; runs are short-lived
	// batch invocations, so a single connection is plenty.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertDaily(ctx context.Context, date string, rows []SnapshotRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO players (player_id, name, server, alliance_id, alliance_tag, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				name = excluded.name,
				server = excluded.server,
				alliance_id = excluded.alliance_id,
				alliance_tag = excluded.alliance_tag,
				last_seen = excluded.last_seen`,
			r.PlayerID, r.Name, r.Server, r.AllianceID, r.AllianceTag, date, date,
		); err != nil {
			return fmt.Errorf("failed to upsert player %d: %w", r.PlayerID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO daily_snapshots
				(player_id, date, level, power, helps, rss_contrib, iso_contrib,
				 players_killed, hostiles_killed, resources_mined, resources_raided,
				 rank_title, join_date, alliance_id, alliance_tag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id, date) DO UPDATE SET
				level = excluded.level,
				power = excluded.power,
				helps = excluded.helps,
				rss_contrib = excluded.rss_contrib,
				iso_contrib = excluded.iso_contrib,
				players_killed = excluded.players_killed,
				hostiles_killed = excluded.hostiles_killed,
				resources_mined = excluded.resources_mined,
				resources_raided = excluded.resources_raided,
				rank_title = excluded.rank_title,
				join_date = excluded.join_date,
				alliance_id = excluded.alliance_id,
				alliance_tag = excluded.alliance_tag`,
			r.PlayerID, date, r.Level, r.Power, r.Helps, r.RSSContrib, r.ISOContrib,
			r.PlayersKilled, r.HostilesKilled, r.ResourcesMined, r.ResourcesRaided,
			r.RankTitle, r.JoinDate, r.AllianceID, r.AllianceTag,
		); err != nil {
			return fmt.Errorf("failed to upsert snapshot for player %d: %w", r.PlayerID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ImportHistory(ctx context.Context, days []ImportDay) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, day := range days {
		for _, r := range day.Rows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO players (player_id, name, server, alliance_id, alliance_tag, first_seen, last_seen)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(player_id) DO UPDATE SET
					name = CASE WHEN excluded.last_seen > players.last_seen THEN excluded.name ELSE players.name END,
					first_seen = MIN(players.first_seen, excluded.first_seen),
					last_seen = MAX(players.last_seen, excluded.last_seen)`,
				r.PlayerID, r.Name, r.Server, r.AllianceID, r.AllianceTag, day.Date, day.Date,
			); err != nil {
				return fmt.Errorf("failed to backfill player %d: %w", r.PlayerID, err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO daily_snapshots
					(player_id, date, level, power, helps, rss_contrib, iso_contrib,
					 players_killed, hostiles_killed, resources_mined, resources_raided,
					 alliance_id, alliance_tag)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(player_id, date) DO UPDATE SET
					level = excluded.level,
					power = excluded.power,
					helps = excluded.helps,
					rss_contrib = excluded.rss_contrib,
					iso_contrib = excluded.iso_contrib,
					players_killed = excluded.players_killed,
					hostiles_killed = excluded.hostiles_killed,
					resources_mined = excluded.resources_mined,
					resources_raided = excluded.resources_raided`,
				r.PlayerID, day.Date, r.Level, r.Power, r.Helps, r.RSSContrib, r.ISOContrib,
				r.PlayersKilled, r.HostilesKilled, r.ResourcesMined, r.ResourcesRaided,
				r.AllianceID, r.AllianceTag,
			); err != nil {
				return fmt.Errorf("failed to backfill snapshot for player %d: %w", r.PlayerID, err)
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LogPull(ctx context.Context, server, totalPlayers int, source string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pull_log (pulled_at, server, total_players, source) VALUES (?, ?, ?, ?)",
		time.Now().Format(time.RFC3339), server, totalPlayers, source,
	)
	if err != nil {
		return fmt.Errorf("failed to log pull: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LastPulledAt(ctx context.Context) (string, error) {
	var pulledAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT pulled_at FROM pull_log ORDER BY id DESC LIMIT 1",
	).Scan(&pulledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return pulledAt, nil
}

func (s *SQLiteStore) LatestDate(ctx context.Context, allianceID int64) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(date) FROM daily_snapshots WHERE alliance_id = ?", allianceID,
	).Scan(&date)
	if err != nil {
		return "", err
	}
	return date.String, nil
}

func (s *SQLiteStore) LatestServerDate(ctx context.Context) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(date) FROM daily_snapshots",
	).Scan(&date)
	if err != nil {
		return "", err
	}
	return date.String, nil
}

func (s *SQLiteStore) LatestTwoDates(ctx context.Context, allianceID int64) (string, string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM daily_snapshots
		WHERE alliance_id = ?
		ORDER BY date DESC LIMIT 2`, allianceID)
	if err != nil {
		return "", "", err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return "", "", err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return "", "", err
	}

	if len(dates) < 2 {
		return "", "", nil
	}
	return dates[1], dates[0], nil
}

func (s *SQLiteStore) DistinctDates(ctx context.Context, allianceID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT date FROM daily_snapshots WHERE alliance_id = ? ORDER BY date",
		allianceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *SQLiteStore) DateNDaysBefore(ctx context.Context, anchor string, days int) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(date) FROM daily_snapshots
		WHERE date <= date(?, ?)`,
		anchor, fmt.Sprintf("-%d days", days),
	).Scan(&date)
	if err != nil {
		return "", err
	}
	return date.String, nil
}

const snapshotColumns = `
	ds.player_id, p.name, COALESCE(ds.level, 0), COALESCE(ds.power, 0),
	COALESCE(ds.helps, 0), COALESCE(ds.rss_contrib, 0), COALESCE(ds.iso_contrib, 0),
	COALESCE(ds.players_killed, 0), COALESCE(ds.hostiles_killed, 0),
	COALESCE(ds.resources_mined, 0), COALESCE(ds.resources_raided, 0),
	COALESCE(ds.rank_title, ''), COALESCE(ds.join_date, ''),
	COALESCE(ds.alliance_id, 0), COALESCE(ds.alliance_tag, '')`

func scanSnapshotRow(rows *sql.Rows) (SnapshotRow, error) {
	var r SnapshotRow
	err := rows.Scan(
		&r.PlayerID, &r.Name, &r.Level, &r.Power,
		&r.Helps, &r.RSSContrib, &r.ISOContrib,
		&r.PlayersKilled, &r.HostilesKilled,
		&r.ResourcesMined, &r.ResourcesRaided,
		&r.RankTitle, &r.JoinDate,
		&r.AllianceID, &r.AllianceTag,
	)
	return r, err
}

func (s *SQLiteStore) RowsForDate(ctx context.Context, date string, allianceID int64) ([]SnapshotRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM daily_snapshots ds
		JOIN players p ON p.player_id = ds.player_id
		WHERE ds.date = ? AND ds.alliance_id = ?
		ORDER BY ds.power DESC`, date, allianceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SnapshotRow
	for rows.Next() {
		r, err := scanSnapshotRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) MembersForDate(ctx context.Context, date string, allianceID int64) (map[string]SnapshotRow, error) {
	list, err := s.RowsForDate(ctx, date, allianceID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]SnapshotRow, len(list))
	for _, r := range list {
		result[fmt.Sprintf("%d", r.PlayerID)] = r
	}
	return result, nil
}

func (s *SQLiteStore) ServerRows(ctx context.Context, date string) ([]SnapshotRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM daily_snapshots ds
		JOIN players p ON p.player_id = ds.player_id
		WHERE ds.date = ?
		ORDER BY ds.power DESC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SnapshotRow
	for rows.Next() {
		r, err := scanSnapshotRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) AllianceAggregates(ctx context.Context, date string) ([]AllianceAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT alliance_id, COALESCE(alliance_tag, ''),
		       COUNT(*),
		       COALESCE(SUM(power), 0),
		       COALESCE(AVG(level), 0),
		       COALESCE(MAX(level), 0),
		       COALESCE(SUM(players_killed), 0),
		       COALESCE(SUM(hostiles_killed), 0),
		       COALESCE(SUM(resources_mined), 0),
		       COALESCE(SUM(resources_raided), 0)
		FROM daily_snapshots
		WHERE date = ? AND alliance_id IS NOT NULL AND alliance_id != 0
		GROUP BY alliance_id
		ORDER BY SUM(power) DESC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AllianceAggregate
	for rows.Next() {
		var a AllianceAggregate
		if err := rows.Scan(
			&a.AllianceID, &a.AllianceTag, &a.MemberCount, &a.TotalPower,
			&a.AvgLevel, &a.MaxLevel, &a.TotalPVP, &a.TotalHostiles,
			&a.TotalMined, &a.TotalRaided,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) AlliancePowerByDate(ctx context.Context, date string) (map[int64]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT alliance_id, COALESCE(SUM(power), 0)
		FROM daily_snapshots
		WHERE date = ? AND alliance_id IS NOT NULL AND alliance_id != 0
		GROUP BY alliance_id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]int64)
	for rows.Next() {
		var id, power int64
		if err := rows.Scan(&id, &power); err != nil {
			return nil, err
		}
		result[id] = power
	}
	return result, rows.Err()
}

func (s *SQLiteStore) SentEvents(ctx context.Context, window string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT event_key FROM sent_events WHERE window = ?", window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		result[key] = struct{}{}
	}
	return result, rows.Err()
}

// MarkSent records keys for the given comparison window. Rows from other
// windows are dropped in the same transaction: a new date pair starts a
// fresh dedup scope.
func (s *SQLiteStore) MarkSent(ctx context.Context, window string, keys []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM sent_events WHERE window != ?", window); err != nil {
		return fmt.Errorf("failed to reset dedup ledger: %w", err)
	}

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sent_events (window, event_key) VALUES (?, ?)
			ON CONFLICT(window, event_key) DO NOTHING`, window, key); err != nil {
			return fmt.Errorf("failed to mark event sent: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

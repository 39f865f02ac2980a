package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shutdowns-bot/internal/models"
	"shutdowns-bot/internal/store"
)

type DB struct {
	Pool *pgxpool.Pool
}

var _ store.Store = (*DB)(nil)

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate creates the schema if it doesn't exist.
func (db *DB) Migrate(ctx context.Context) error {
	sql := `
	CREATE TABLE IF NOT EXISTS subscribers (
		telegram_id   BIGINT PRIMARY KEY,
		group_number  INT NOT NULL DEFAULT 0,
		language      TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_subscribers_group ON subscribers(group_number);
	`
	_, err := db.Pool.Exec(ctx, sql)
	return err
}

// Get returns the subscriber, or false when the user never talked to the bot.
func (db *DB) Get(ctx context.Context, telegramID int64) (models.Subscriber, bool, error) {
	var s models.Subscriber
	err := db.Pool.QueryRow(ctx, `
		SELECT telegram_id, group_number, language, updated_at
		FROM subscribers WHERE telegram_id = $1
	`, telegramID).Scan(&s.TelegramID, &s.Group, &s.Language, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Subscriber{}, false, nil
	}
	if err != nil {
		return models.Subscriber{}, false, err
	}
	return s, true, nil
}

func (db *DB) SetGroup(ctx context.Context, telegramID int64, group int) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO subscribers (telegram_id, group_number)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET group_number = $2, updated_at = NOW()
	`, telegramID, group)
	return err
}

func (db *DB) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO subscribers (telegram_id, language)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET language = $2, updated_at = NOW()
	`, telegramID, lang)
	return err
}

func (db *DB) Delete(ctx context.Context, telegramID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM subscribers WHERE telegram_id = $1`, telegramID)
	return err
}

// All returns every subscriber ordered by Telegram id.
func (db *DB) All(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT telegram_id, group_number, language, updated_at
		FROM subscribers
		ORDER BY telegram_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.TelegramID, &s.Group, &s.Language, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// CountByGroup returns how many subscribers follow each group.
func (db *DB) CountByGroup(ctx context.Context) (map[int]int, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT group_number, COUNT(*) FROM subscribers
		WHERE group_number > 0
		GROUP BY group_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var group, n int
		if err := rows.Scan(&group, &n); err != nil {
			return nil, err
		}
		counts[group] = n
	}
	return counts, rows.Err()
}

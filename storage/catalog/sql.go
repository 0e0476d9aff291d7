package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/vodhouse/vodhouse/config"
	storageutil "github.com/vodhouse/vodhouse/storage/util"
)

type placeholderStyle int

const (
	placeholderQuestion placeholderStyle = iota
	placeholderDollar
)

type SQLStore struct {
	cfg           *config.SQLCatalogStrategy
	db            *sql.DB
	driverName    string
	videosTable   string
	progressTable string
	placeholder   placeholderStyle
}

func NewSQLStore(cfg *config.SQLCatalogStrategy) (*SQLStore, error) {
	store, err := newSQLStoreWithDB(cfg, nil)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(store.driverName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	store.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func newSQLStoreWithDB(cfg *config.SQLCatalogStrategy, db *sql.DB) (*SQLStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog sql config is nil")
	}

	prefix := "vodhouse"
	if cfg.TablePrefix != nil {
		prefix = *cfg.TablePrefix
	}

	driverName, err := resolveSQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	placeholder := placeholderQuestion
	if driverName == "pgx" {
		placeholder = placeholderDollar
	}

	return &SQLStore{
		cfg:           cfg,
		db:            db,
		driverName:    driverName,
		videosTable:   storageutil.DeriveTableName(prefix, "videos"),
		progressTable: storageutil.DeriveTableName(prefix, "progress"),
		placeholder:   placeholder,
	}, nil
}

func resolveSQLDriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func (cs *SQLStore) initSchema(ctx context.Context) error {
	for _, query := range []string{cs.videosSchemaQuery(), cs.progressSchemaQuery()} {
		if _, err := cs.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}

func (cs *SQLStore) videosSchemaQuery() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id VARCHAR(64) PRIMARY KEY,
title TEXT NOT NULL,
description TEXT,
url TEXT NOT NULL,
source VARCHAR(16) NOT NULL DEFAULT '',
thumbnail TEXT,
duration VARCHAR(32),
category VARCHAR(255),
created_at VARCHAR(64)
)`, cs.videosTable)
}

func (cs *SQLStore) progressSchemaQuery() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
viewer VARCHAR(255) NOT NULL,
video_id VARCHAR(64) NOT NULL,
position DOUBLE PRECISION NOT NULL,
status VARCHAR(64),
last_watched VARCHAR(64),
PRIMARY KEY (viewer, video_id)
)`, cs.progressTable)
}

func (cs *SQLStore) Insert(ctx context.Context, v *Video) error {
	_, err := cs.db.ExecContext(ctx, cs.insertVideoQuery(),
		v.ID, v.Title, v.Description, v.URL, string(v.Source), v.Thumbnail, v.Duration, v.Category, v.CreatedAt)
	return err
}

func (cs *SQLStore) Get(ctx context.Context, id string) (*Video, error) {
	row := cs.db.QueryRowContext(ctx, cs.selectVideoQuery(), id)

	v, err := scanVideoRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return v, nil
}

func (cs *SQLStore) List(ctx context.Context, category string) ([]Video, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if categoryFiltered(category) {
		rows, err = cs.db.QueryContext(ctx, cs.listVideosByCategoryQuery(), category)
	} else {
		rows, err = cs.db.QueryContext(ctx, cs.listVideosQuery())
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		v, err := scanVideoRow(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}

	return videos, rows.Err()
}

func (cs *SQLStore) Delete(ctx context.Context, id string) error {
	result, err := cs.db.ExecContext(ctx, cs.deleteVideoQuery(), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (cs *SQLStore) Upsert(ctx context.Context, viewer, videoID string, position float64, status string) error {
	if err := validatePosition(position); err != nil {
		return err
	}

	lastWatched := time.Now().UTC().Format(time.RFC3339)

	_, err := cs.db.ExecContext(ctx, cs.upsertProgressQuery(), viewer, videoID, position, status, lastWatched)
	return err
}

func (cs *SQLStore) ForViewer(ctx context.Context, viewer string) (map[string]Progress, error) {
	rows, err := cs.db.QueryContext(ctx, cs.progressForViewerQuery(), viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := map[string]Progress{}
	for rows.Next() {
		var p Progress
		var status, lastWatched sql.NullString
		if err := rows.Scan(&p.Viewer, &p.VideoID, &p.Position, &status, &lastWatched); err != nil {
			return nil, err
		}
		p.Status = status.String
		p.LastWatched = lastWatched.String
		progress[p.VideoID] = p
	}

	return progress, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideoRow(row rowScanner) (*Video, error) {
	var v Video
	var description, source, thumbnail, duration, category, createdAt sql.NullString

	if err := row.Scan(&v.ID, &v.Title, &description, &v.URL, &source, &thumbnail, &duration, &category, &createdAt); err != nil {
		return nil, err
	}

	v.Description = description.String
	v.Source = Source(source.String)
	v.Thumbnail = thumbnail.String
	v.Duration = duration.String
	v.Category = category.String
	v.CreatedAt = createdAt.String

	return &v, nil
}

const videoColumns = "id, title, description, url, source, thumbnail, duration, category, created_at"

func (cs *SQLStore) insertVideoQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		cs.videosTable, videoColumns, cs.placeholderList(9),
	)
}

func (cs *SQLStore) selectVideoQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", videoColumns, cs.videosTable, cs.placeholderFor(1))
}

func (cs *SQLStore) listVideosQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s", videoColumns, cs.videosTable)
}

func (cs *SQLStore) listVideosByCategoryQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE category = %s", videoColumns, cs.videosTable, cs.placeholderFor(1))
}

func (cs *SQLStore) deleteVideoQuery() string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = %s", cs.videosTable, cs.placeholderFor(1))
}

func (cs *SQLStore) upsertProgressQuery() string {
	insert := fmt.Sprintf(
		"INSERT INTO %s (viewer, video_id, position, status, last_watched) VALUES (%s)",
		cs.progressTable, cs.placeholderList(5),
	)

	if cs.driverName == "mysql" {
		return insert + " ON DUPLICATE KEY UPDATE position = VALUES(position), status = VALUES(status), last_watched = VALUES(last_watched)"
	}

	return insert + " ON CONFLICT (viewer, video_id) DO UPDATE SET position = excluded.position, status = excluded.status, last_watched = excluded.last_watched"
}

func (cs *SQLStore) progressForViewerQuery() string {
	return fmt.Sprintf(
		"SELECT viewer, video_id, position, status, last_watched FROM %s WHERE viewer = %s",
		cs.progressTable, cs.placeholderFor(1),
	)
}

func (cs *SQLStore) placeholderFor(index int) string {
	if cs.placeholder == placeholderDollar {
		return fmt.Sprintf("$%d", index)
	}

	return "?"
}

func (cs *SQLStore) placeholderList(count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = cs.placeholderFor(i + 1)
	}

	return strings.Join(parts, ", ")
}

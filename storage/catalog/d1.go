package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	cloudflare "github.com/cloudflare/cloudflare-go/v6"
	cfd1 "github.com/cloudflare/cloudflare-go/v6/d1"
	"github.com/cloudflare/cloudflare-go/v6/option"

	"github.com/vodhouse/vodhouse/config"
	storageutil "github.com/vodhouse/vodhouse/storage/util"
)

// D1Store implements Store on Cloudflare D1 via the HTTP API. It mirrors the
// schema of SQLStore to keep parity across backends; D1 speaks the sqlite
// dialect, so the conditional upsert carries over unchanged.
type D1Store struct {
	cfg           *config.D1CatalogStrategy
	client        *cloudflare.Client
	videosTable   string
	progressTable string
}

// NewD1Store builds a store and ensures the schema exists.
func NewD1Store(cfg *config.D1CatalogStrategy) (*D1Store, error) {
	return newD1StoreWithClient(cfg, nil)
}

// newD1StoreWithClient creates a D1 store with a custom HTTP client.
// Used by tests to point the Cloudflare client at a local stub.
func newD1StoreWithClient(cfg *config.D1CatalogStrategy, client *http.Client) (*D1Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog d1 config is nil")
	}

	prefix := "vodhouse"
	if cfg.TablePrefix != nil {
		prefix = *cfg.TablePrefix
	}

	store := &D1Store{
		cfg:           cfg,
		client:        buildD1Client(cfg, client),
		videosTable:   storageutil.DeriveTableName(prefix, "videos"),
		progressTable: storageutil.DeriveTableName(prefix, "progress"),
	}

	if err := store.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return store, nil
}

func buildD1Client(cfg *config.D1CatalogStrategy, httpClient *http.Client) *cloudflare.Client {
	opts := []option.RequestOption{option.WithAPIToken(strings.TrimSpace(cfg.APIToken))}

	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	if base := strings.TrimSpace(cfg.Endpoint); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}

	return cloudflare.NewClient(opts...)
}

// initSchema ensures both tables exist. This doubles as a health check,
// validating connectivity and authentication at startup.
func (cs *D1Store) initSchema(ctx context.Context) error {
	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id TEXT PRIMARY KEY,
title TEXT NOT NULL,
description TEXT,
url TEXT NOT NULL,
source TEXT NOT NULL DEFAULT '',
thumbnail TEXT,
duration TEXT,
category TEXT,
created_at TEXT
)`, cs.videosTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
viewer TEXT NOT NULL,
video_id TEXT NOT NULL,
position REAL NOT NULL,
status TEXT,
last_watched TEXT,
PRIMARY KEY (viewer, video_id)
)`, cs.progressTable),
	}

	for _, query := range queries {
		if _, err := cs.executeQuery(ctx, query, nil); err != nil {
			return fmt.Errorf("d1 initialization failed (check account_id, database_id, and api_token): %w", err)
		}
	}

	return nil
}

func (cs *D1Store) Insert(ctx context.Context, v *Video) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", cs.videosTable, videoColumns)

	_, err := cs.executeQuery(ctx, query, []any{
		v.ID, v.Title, v.Description, v.URL, string(v.Source), v.Thumbnail, v.Duration, v.Category, v.CreatedAt,
	})
	return err
}

func (cs *D1Store) Get(ctx context.Context, id string) (*Video, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", videoColumns, cs.videosTable)

	rows, err := cs.executeQuery(ctx, query, []any{id})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return videoFromD1Row(rows[0]), nil
}

func (cs *D1Store) List(ctx context.Context, category string) ([]Video, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", videoColumns, cs.videosTable)
	var params []any

	if categoryFiltered(category) {
		query += " WHERE category = ?"
		params = []any{category}
	}

	rows, err := cs.executeQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(rows))
	for _, row := range rows {
		videos = append(videos, *videoFromD1Row(row))
	}

	return videos, nil
}

func (cs *D1Store) Delete(ctx context.Context, id string) error {
	existsQuery := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", cs.videosTable)

	rows, err := cs.executeQuery(ctx, existsQuery, []any{id})
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return ErrNotFound
	}

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE id = ?", cs.videosTable)
	_, err = cs.executeQuery(ctx, deleteQuery, []any{id})
	return err
}

func (cs *D1Store) Upsert(ctx context.Context, viewer, videoID string, position float64, status string) error {
	if err := validatePosition(position); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (viewer, video_id, position, status, last_watched) VALUES (?, ?, ?, ?, ?) ON CONFLICT (viewer, video_id) DO UPDATE SET position = excluded.position, status = excluded.status, last_watched = excluded.last_watched",
		cs.progressTable,
	)

	lastWatched := time.Now().UTC().Format(time.RFC3339)

	_, err := cs.executeQuery(ctx, query, []any{viewer, videoID, position, status, lastWatched})
	return err
}

func (cs *D1Store) ForViewer(ctx context.Context, viewer string) (map[string]Progress, error) {
	query := fmt.Sprintf(
		"SELECT viewer, video_id, position, status, last_watched FROM %s WHERE viewer = ?",
		cs.progressTable,
	)

	rows, err := cs.executeQuery(ctx, query, []any{viewer})
	if err != nil {
		return nil, err
	}

	progress := make(map[string]Progress, len(rows))
	for _, row := range rows {
		p := Progress{
			Viewer:      d1String(row, "viewer"),
			VideoID:     d1String(row, "video_id"),
			Position:    d1Float(row, "position"),
			Status:      d1String(row, "status"),
			LastWatched: d1String(row, "last_watched"),
		}
		progress[p.VideoID] = p
	}

	return progress, nil
}

// executeQuery sends a SQL query to the D1 database and returns the result
// rows. Returns nil rows (no error) when the query produces no results.
func (cs *D1Store) executeQuery(ctx context.Context, sql string, params []any) ([]map[string]any, error) {
	body := cfd1.DatabaseQueryParamsBodyD1SingleQuery{Sql: cloudflare.F(sql)}
	if len(params) > 0 {
		body.Params = cloudflare.F(convertParams(params))
	}

	resp, err := cs.client.D1.Database.Query(ctx, cs.cfg.DatabaseID, cfd1.DatabaseQueryParams{
		AccountID: cloudflare.F(strings.TrimSpace(cs.cfg.AccountID)),
		Body:      body,
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Result) == 0 {
		return nil, nil
	}

	result := resp.Result[0]
	if !result.Success {
		return nil, fmt.Errorf("d1 query execution failed")
	}

	rows := make([]map[string]any, 0, len(result.Results))
	for _, r := range result.Results {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", r)
		}
		rows = append(rows, m)
	}

	return rows, nil
}

// convertParams converts query parameters to D1's string-based parameter
// format. Booleans become "1"/"0"; everything else uses Sprint.
func convertParams(params []any) []string {
	if len(params) == 0 {
		return nil
	}

	out := make([]string, 0, len(params))
	for _, p := range params {
		switch v := p.(type) {
		case bool:
			if v {
				out = append(out, "1")
			} else {
				out = append(out, "0")
			}
		default:
			out = append(out, fmt.Sprint(p))
		}
	}

	return out
}

func videoFromD1Row(row map[string]any) *Video {
	return &Video{
		ID:          d1String(row, "id"),
		Title:       d1String(row, "title"),
		Description: d1String(row, "description"),
		URL:         d1String(row, "url"),
		Source:      Source(d1String(row, "source")),
		Thumbnail:   d1String(row, "thumbnail"),
		Duration:    d1String(row, "duration"),
		Category:    d1String(row, "category"),
		CreatedAt:   d1String(row, "created_at"),
	}
}

func d1String(row map[string]any, column string) string {
	if s, ok := row[column].(string); ok {
		return s
	}

	return ""
}

func d1Float(row map[string]any, column string) float64 {
	switch v := row[column].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}

	return 0
}

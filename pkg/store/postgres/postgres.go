// Package postgres implements the Store contract on PostgreSQL. Each
// container maps to one table holding the entity JSON in a JSONB column,
// keyed by (partition_key, id) with a rotating etag column for optimistic
// concurrency. Connections go through database/sql with the pgx driver;
// schema is applied on startup from embedded migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql

	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// Config holds the PostgreSQL connection settings. The password comes from
// Tokens when set, supporting managed deployments that issue short-lived
// access tokens; Password is the local-development fallback.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Tokens, when non-nil, supplies the password at connect time.
	Tokens store.TokenProvider

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (c Config) dsn(password string) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, password, c.Database, sslMode,
	)
}

// Store is the PostgreSQL-backed document store.
type Store struct {
	db *sql.DB
}

// New opens the connection pool, pings it and applies pending migrations.
func New(ctx context.Context, cfg Config) (*Store, error) {
	password := cfg.Password
	if cfg.Tokens != nil {
		token, err := cfg.Tokens.Token(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire database credential: %w", err)
		}
		password = token
	}

	db, err := sql.Open("pgx", cfg.dsn(password))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db, cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// NewFromDB wraps an existing connection pool (useful for tests).
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

var containerNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,62}$`)

// tableFor maps a container name to its table. Container names use dashes;
// tables use underscores. Unknown shapes are rejected before reaching SQL.
func tableFor(container string) (string, error) {
	if !containerNamePattern.MatchString(container) {
		return "", fmt.Errorf("invalid container name %q", container)
	}
	return strings.ReplaceAll(container, "-", "_"), nil
}

func meta(start time.Time, charge float64) store.Metadata {
	latency := time.Since(start)
	return store.Metadata{
		RequestCharge: charge,
		Latency:       latency,
		LatencyMS:     latency.Milliseconds(),
	}
}

// classify maps driver errors onto the store error vocabulary. Connection
// faults, serialization failures and resource exhaustion are transient;
// everything else passes through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", // serialization_failure
			pgErr.Code == "40P01",              // deadlock_detected
			pgErr.Code == "53300",              // too_many_connections
			pgErr.Code == "57P03",              // cannot_connect_now
			strings.HasPrefix(pgErr.Code, "08"): // connection exception class
			return store.Transient(err)
		}
		return err
	}

	// Errors without a SQLSTATE are almost always network-level.
	return store.Transient(err)
}

// Read implements store.Store.
func (s *Store) Read(ctx context.Context, container, id, partitionKey string) (*store.Item, store.Metadata, error) {
	start := time.Now()
	table, err := tableFor(container)
	if err != nil {
		return nil, meta(start, 0), err
	}

	item := store.Item{ID: id, PartitionKey: partitionKey}
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT etag, created_at, data FROM %s WHERE partition_key = $1 AND id = $2`, table),
		partitionKey, id)
	if err := row.Scan(&item.ETag, &item.CreatedAt, &item.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, meta(start, 1), store.ErrNotFound
		}
		return nil, meta(start, 1), classify(err)
	}
	return &item, meta(start, 1), nil
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, container string, item store.Item) (*store.Item, store.Metadata, error) {
	start := time.Now()
	table, err := tableFor(container)
	if err != nil {
		return nil, meta(start, 0), err
	}

	item.ETag = uuid.New().String()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (partition_key, id, etag, created_at, data) VALUES ($1, $2, $3, $4, $5)`, table),
		item.PartitionKey, item.ID, item.ETag, item.CreatedAt, []byte(item.Data))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, meta(start, 1), store.ErrAlreadyExists
		}
		return nil, meta(start, 1), classify(err)
	}
	return &item, meta(start, 5), nil
}

// Replace implements store.Store. A non-empty etag conditions the update; a
// mismatch surfaces as ErrConflict, a missing row as ErrNotFound.
func (s *Store) Replace(ctx context.Context, container string, item store.Item, etag string) (*store.Item, store.Metadata, error) {
	start := time.Now()
	table, err := tableFor(container)
	if err != nil {
		return nil, meta(start, 0), err
	}

	newETag := uuid.New().String()

	query := fmt.Sprintf(`UPDATE %s SET etag = $1, data = $2 WHERE partition_key = $3 AND id = $4`, table)
	args := []any{newETag, []byte(item.Data), item.PartitionKey, item.ID}
	if etag != "" {
		query += " AND etag = $5"
		args = append(args, etag)
	}
	query += " RETURNING created_at"

	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, meta(start, 1), s.replaceMiss(ctx, table, item)
		}
		return nil, meta(start, 1), classify(err)
	}

	item.ETag = newETag
	return &item, meta(start, 5), nil
}

// replaceMiss distinguishes a conditioned update that lost the etag race
// from one whose target does not exist.
func (s *Store) replaceMiss(ctx context.Context, table string, item store.Item) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE partition_key = $1 AND id = $2)`, table),
		item.PartitionKey, item.ID).Scan(&exists)
	if err != nil {
		return classify(err)
	}
	if exists {
		return store.ErrConflict
	}
	return store.ErrNotFound
}

// Query implements store.Store with keyset pagination ordered by
// (created_at, id) descending.
func (s *Store) Query(ctx context.Context, container string, q store.Query) (*store.Page, store.Metadata, error) {
	start := time.Now()
	table, err := tableFor(container)
	if err != nil {
		return nil, meta(start, 0), err
	}

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.PartitionKey != "" {
		conds = append(conds, "partition_key = "+arg(q.PartitionKey))
	}
	if q.PartitionPrefix != "" {
		// Escape LIKE metacharacters so key segments match literally.
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q.PartitionPrefix)
		conds = append(conds, "partition_key LIKE "+arg(escaped+"%"))
	}
	if q.Token != "" {
		afterCreated, afterID, err := store.DecodeToken(q.Token)
		if err != nil {
			return nil, meta(start, 1), err
		}
		conds = append(conds, fmt.Sprintf("(created_at, id) < (%s, %s)", arg(afterCreated), arg(afterID)))
	}

	pageSize := store.ClampPageSize(q.PageSize)

	query := fmt.Sprintf(`SELECT partition_key, id, etag, created_at, data FROM %s`, table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// Fetch one extra row to decide whether a continuation token is due.
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %s", arg(pageSize+1))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, meta(start, 1), classify(err)
	}
	defer rows.Close()

	var matched []store.Item
	for rows.Next() {
		var item store.Item
		if err := rows.Scan(&item.PartitionKey, &item.ID, &item.ETag, &item.CreatedAt, &item.Data); err != nil {
			return nil, meta(start, 1), classify(err)
		}
		matched = append(matched, item)
	}
	if err := rows.Err(); err != nil {
		return nil, meta(start, 1), classify(err)
	}

	page := &store.Page{}
	if len(matched) > pageSize {
		page.Items = matched[:pageSize]
		last := page.Items[len(page.Items)-1]
		page.Token = store.EncodeToken(last.CreatedAt, last.ID)
	} else {
		page.Items = matched
	}
	return page, meta(start, float64(len(page.Items))+1), nil
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// ContainerExists implements store.Store by probing the table mapped to the
// container.
func (s *Store) ContainerExists(ctx context.Context, container string) error {
	table, err := tableFor(container)
	if err != nil {
		return err
	}
	var regclass sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, table).Scan(&regclass); err != nil {
		return classify(err)
	}
	if !regclass.Valid {
		return fmt.Errorf("container %q does not exist", container)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

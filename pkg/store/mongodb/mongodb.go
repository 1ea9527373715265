// Package mongodb implements the Store contract on MongoDB. Each container
// maps to one collection; documents carry the entity JSON verbatim in a
// binary field so values round-trip byte-for-byte, with a rotating etag
// field for optimistic concurrency.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// Config holds the MongoDB connection settings. The password comes from
// Tokens when set, supporting managed deployments that issue short-lived
// access tokens; Password is the local-development fallback.
type Config struct {
	URI      string
	Database string
	Username string
	Password string

	// Tokens, when non-nil, supplies the password at connect time.
	Tokens store.TokenProvider

	// Containers lists the collections to provision indexes for.
	Containers []string

	ConnectTimeout time.Duration
}

// Store is the MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// record is the persisted document shape. Data keeps the entity JSON as
// opaque bytes; the store never inspects it.
type record struct {
	PartitionKey string    `bson:"partition_key"`
	ID           string    `bson:"id"`
	ETag         string    `bson:"etag"`
	CreatedAt    time.Time `bson:"created_at"`
	Data         []byte    `bson:"data"`
}

// New connects, pings and provisions the per-collection indexes.
func New(ctx context.Context, cfg Config) (*Store, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" {
		password := cfg.Password
		if cfg.Tokens != nil {
			token, err := cfg.Tokens.Token(ctx, cfg.Database)
			if err != nil {
				return nil, fmt.Errorf("failed to acquire database credential: %w", err)
			}
			password = token
		}
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: password,
		})
	}
	if cfg.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Database)}
	for _, container := range cfg.Containers {
		if err := s.ensureIndexes(ctx, container); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to provision container %s: %w", container, err)
		}
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context, container string) error {
	_, err := s.db.Collection(container).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "partition_key", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}},
		},
	})
	return err
}

func meta(start time.Time, charge float64) store.Metadata {
	latency := time.Since(start)
	return store.Metadata{
		RequestCharge: charge,
		Latency:       latency,
		LatencyMS:     latency.Milliseconds(),
	}
}

// classify maps driver errors onto the store error vocabulary. Timeouts,
// retryable server errors and connectivity faults are transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if mongo.IsTimeout(err) {
		return store.Transient(err)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.HasErrorLabel("RetryableWriteError") || serverErr.HasErrorLabel("TransientTransactionError") {
			return store.Transient(err)
		}
		return err
	}
	// Errors without a server response are network-level.
	return store.Transient(err)
}

func toItem(r record) store.Item {
	return store.Item{
		ID:           r.ID,
		PartitionKey: r.PartitionKey,
		ETag:         r.ETag,
		CreatedAt:    r.CreatedAt,
		Data:         r.Data,
	}
}

// Read implements store.Store.
func (s *Store) Read(ctx context.Context, container, id, partitionKey string) (*store.Item, store.Metadata, error) {
	start := time.Now()

	var r record
	err := s.db.Collection(container).
		FindOne(ctx, bson.M{"partition_key": partitionKey, "id": id}).
		Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meta(start, 1), store.ErrNotFound
		}
		return nil, meta(start, 1), classify(err)
	}
	item := toItem(r)
	return &item, meta(start, 1), nil
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, container string, item store.Item) (*store.Item, store.Metadata, error) {
	start := time.Now()

	item.ETag = uuid.New().String()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	// BSON datetimes carry millisecond precision; truncate up front so the
	// stored value matches what continuation tokens will see.
	item.CreatedAt = item.CreatedAt.Truncate(time.Millisecond)

	_, err := s.db.Collection(container).InsertOne(ctx, record{
		PartitionKey: item.PartitionKey,
		ID:           item.ID,
		ETag:         item.ETag,
		CreatedAt:    item.CreatedAt,
		Data:         item.Data,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, meta(start, 1), store.ErrAlreadyExists
		}
		return nil, meta(start, 1), classify(err)
	}
	return &item, meta(start, 5), nil
}

// Replace implements store.Store. A non-empty etag conditions the update; a
// mismatch surfaces as ErrConflict, a missing document as ErrNotFound.
func (s *Store) Replace(ctx context.Context, container string, item store.Item, etag string) (*store.Item, store.Metadata, error) {
	start := time.Now()

	filter := bson.M{"partition_key": item.PartitionKey, "id": item.ID}
	if etag != "" {
		filter["etag"] = etag
	}

	newETag := uuid.New().String()
	var r record
	err := s.db.Collection(container).FindOneAndUpdate(ctx,
		filter,
		bson.M{"$set": bson.M{"etag": newETag, "data": []byte(item.Data)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meta(start, 1), s.replaceMiss(ctx, container, item)
		}
		return nil, meta(start, 1), classify(err)
	}

	item.ETag = r.ETag
	item.CreatedAt = r.CreatedAt
	return &item, meta(start, 5), nil
}

// replaceMiss distinguishes a conditioned update that lost the etag race
// from one whose target does not exist.
func (s *Store) replaceMiss(ctx context.Context, container string, item store.Item) error {
	err := s.db.Collection(container).
		FindOne(ctx, bson.M{"partition_key": item.PartitionKey, "id": item.ID}).
		Err()
	if err == nil {
		return store.ErrConflict
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return classify(err)
}

// Query implements store.Store with keyset pagination ordered by
// (created_at, id) descending.
func (s *Store) Query(ctx context.Context, container string, q store.Query) (*store.Page, store.Metadata, error) {
	start := time.Now()

	filter := bson.M{}
	if q.PartitionKey != "" {
		filter["partition_key"] = q.PartitionKey
	}
	if q.PartitionPrefix != "" {
		filter["partition_key"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q.PartitionPrefix)}
	}
	if q.Token != "" {
		afterCreated, afterID, err := store.DecodeToken(q.Token)
		if err != nil {
			return nil, meta(start, 1), err
		}
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": afterCreated}},
			bson.M{"created_at": afterCreated, "id": bson.M{"$lt": afterID}},
		}
	}

	pageSize := store.ClampPageSize(q.PageSize)
	// Fetch one extra document to decide whether a continuation token is due.
	cursor, err := s.db.Collection(container).Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}).
			SetLimit(int64(pageSize+1)))
	if err != nil {
		return nil, meta(start, 1), classify(err)
	}
	defer cursor.Close(ctx)

	var matched []store.Item
	for cursor.Next(ctx) {
		var r record
		if err := cursor.Decode(&r); err != nil {
			return nil, meta(start, 1), classify(err)
		}
		matched = append(matched, toItem(r))
	}
	if err := cursor.Err(); err != nil {
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
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return classify(err)
	}
	return nil
}

// ContainerExists implements store.Store by checking the collection list.
func (s *Store) ContainerExists(ctx context.Context, container string) error {
	names, err := s.db.ListCollectionNames(ctx, bson.M{"name": container})
	if err != nil {
		return classify(err)
	}
	if len(names) == 0 {
		return fmt.Errorf("container %q does not exist", container)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

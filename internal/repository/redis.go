package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"deskbook/internal/config"
	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const deskIndexKey = "desks:index"

// RedisDeskStore keeps each desk as a JSON value under desk:<id> and an
// id index in a sorted set, which gives the stable listing order the
// watermark cursor resumes from.
type RedisDeskStore struct {
	client *redis.Client
	logger *zerolog.Logger
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisDeskStore(client *redis.Client, logger *zerolog.Logger) *RedisDeskStore {
	return &RedisDeskStore{client: client, logger: logger}
}

func deskKey(id string) string {
	return fmt.Sprintf("desk:%s", id)
}

func (r *RedisDeskStore) List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	afterID, err := decodeCursor(pageToken)
	if err != nil {
		return nil, "", err
	}

	min := "-"
	if afterID != "" {
		min = "(" + afterID
	}

	ids, err := r.client.ZRangeByLex(ctx, deskIndexKey, &redis.ZRangeBy{
		Min:   min,
		Max:   "+",
		Count: int64(pageSize + 1),
	}).Result()
	if err != nil {
		return nil, "", r.unavailable("list index", err)
	}
	if len(ids) == 0 {
		return nil, "", nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = deskKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, "", r.unavailable("list mget", err)
	}

	var desks []models.Desk
	for _, val := range values {
		raw, ok := val.(string)
		if !ok {
			// index entry without a value; skip the orphan
			continue
		}
		var desk models.Desk
		if err := json.Unmarshal([]byte(raw), &desk); err != nil {
			return nil, "", r.unavailable("list unmarshal", err)
		}
		desks = append(desks, desk)
	}

	var next string
	if len(desks) > pageSize {
		desks = desks[:pageSize]
		next = encodeCursor(desks[len(desks)-1].ID)
	}
	return desks, next, nil
}

func (r *RedisDeskStore) Create(ctx context.Context, desk *models.Desk) error {
	if desk.ID == "" {
		desk.ID = uuid.NewString()
	}

	exists, err := r.client.Exists(ctx, deskKey(desk.ID)).Result()
	if err != nil {
		return r.unavailable("create exists", err)
	}
	if exists > 0 {
		return domain.NewValidationError("id", "already exists")
	}

	if err := r.write(ctx, *desk); err != nil {
		return err
	}
	return nil
}

func (r *RedisDeskStore) Read(ctx context.Context, id string) (*models.Desk, error) {
	val, err := r.client.Get(ctx, deskKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, r.unavailable("read", err)
	}

	var desk models.Desk
	if err := json.Unmarshal([]byte(val), &desk); err != nil {
		return nil, r.unavailable("read unmarshal", err)
	}
	return &desk, nil
}

func (r *RedisDeskStore) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	exists, err := r.client.Exists(ctx, deskKey(id)).Result()
	if err != nil {
		return nil, r.unavailable("update exists", err)
	}
	if exists == 0 {
		return nil, domain.ErrNotFound
	}

	desk.ID = id
	if err := r.write(ctx, desk); err != nil {
		return nil, err
	}
	return &desk, nil
}

func (r *RedisDeskStore) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, deskKey(id)).Result()
	if err != nil {
		return r.unavailable("delete", err)
	}
	if removed == 0 {
		return domain.ErrNotFound
	}

	if err := r.client.ZRem(ctx, deskIndexKey, id).Err(); err != nil {
		return r.unavailable("delete index", err)
	}
	return nil
}

func (r *RedisDeskStore) Close() error {
	return r.client.Close()
}

// write stores the record and its index entry together.
func (r *RedisDeskStore) write(ctx context.Context, desk models.Desk) error {
	data, err := json.Marshal(desk)
	if err != nil {
		return r.unavailable("marshal", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, deskKey(desk.ID), data, 0)
	pipe.ZAdd(ctx, deskIndexKey, redis.Z{Score: 0, Member: desk.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return r.unavailable("write", err)
	}
	return nil
}

func (r *RedisDeskStore) unavailable(op string, err error) error {
	r.logger.Error().Err(err).Str("op", op).Msg("redis desk store error")
	return domain.ErrBackendUnavailable
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

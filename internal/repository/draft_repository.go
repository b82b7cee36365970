package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/storage"
	redisapp "remember_galleries/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisDraftRepo struct {
	Client *redisapp.Client
}

func NewRedisDraftRepo(client *redisapp.Client) *RedisDraftRepo {
	return &RedisDraftRepo{Client: client}
}

func (r *RedisDraftRepo) SaveDraft(ctx context.Context, key string, draft models.Draft, exp time.Duration) error {
	const op = "repository.RedisDraftRepo.SaveDraft"

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.Client.Set(ctx, draftKey(key), payload, exp).Err()
}

func (r *RedisDraftRepo) GetDraft(ctx context.Context, key string) (models.Draft, error) {
	const op = "repository.RedisDraftRepo.GetDraft"

	val, err := r.Client.Get(ctx, draftKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Draft{}, fmt.Errorf("%s: %w", op, storage.ErrDraftNotFound)
	}
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	var draft models.Draft
	if err := json.Unmarshal(val, &draft); err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	return draft, nil
}

func (r *RedisDraftRepo) DeleteDraft(ctx context.Context, key string) error {
	return r.Client.Del(ctx, draftKey(key)).Err()
}

func draftKey(key string) string {
	return "draft:" + key
}

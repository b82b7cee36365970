package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/repository"
	"remember_galleries/internal/storage"

	"github.com/patrickmn/go-cache"
)

type resolved struct {
	post models.GalleryPost
	ids  []int64
}

// resolver разрешает список вложений галереи в пределах одного запроса.
// Кэш живет столько же, сколько resolver, и между запросами не разделяется.
type resolver struct {
	galleries repository.GalleryRepository
	posts     repository.PostRepository
	cache     *cache.Cache
}

func newResolver(galleries repository.GalleryRepository, posts repository.PostRepository) *resolver {
	return &resolver{
		galleries: galleries,
		posts:     posts,
		cache:     cache.New(cache.NoExpiration, 0),
	}
}

// resolve возвращает пост галереи и её вложения в сохранённом порядке,
// оставляя только привязанные к галерее ID и исключая ID самого поста.
// Галерея без поста разрешается в пустой список.
func (r *resolver) resolve(ctx context.Context, term models.GalleryTerm) (resolved, error) {
	const op = "service.resolver.resolve"

	key := strconv.FormatInt(term.ID, 10)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(resolved), nil
	}

	var res resolved
	if term.PostID != 0 {
		post, err := r.posts.PostByID(ctx, term.PostID)
		switch {
		case errors.Is(err, storage.ErrPostNotFound):
		case err != nil:
			return resolved{}, fmt.Errorf("%s: %w", op, err)
		default:
			res.post = post

			associated, err := r.galleries.ObjectsInTerm(ctx, term.ID)
			if err != nil {
				return resolved{}, fmt.Errorf("%s: %w", op, err)
			}

			res.ids = filterOrder(post.Order, associated, post.ID)
		}
	}
	if res.ids == nil {
		res.ids = []int64{}
	}

	r.cache.Set(key, res, cache.NoExpiration)

	return res, nil
}

func filterOrder(order, associated []int64, self int64) []int64 {
	allowed := make(map[int64]struct{}, len(associated))
	for _, id := range associated {
		allowed[id] = struct{}{}
	}

	ids := make([]int64, 0, len(order))
	for _, id := range order {
		if id == self {
			continue
		}
		if _, ok := allowed[id]; ok {
			ids = append(ids, id)
		}
	}

	return ids
}

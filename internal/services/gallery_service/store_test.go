package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/storage"
)

// memStore хранит галереи в памяти и реализует оба репозитория.
// Посты и вложения делят одну последовательность ID, как в Postgres.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	terms   map[int64]*models.GalleryTerm
	posts   map[int64]*models.GalleryPost
	objects map[int64]map[int64]struct{}
	writes  int
}

func newMemStore() *memStore {
	return &memStore{
		nextID:  100,
		terms:   make(map[int64]*models.GalleryTerm),
		posts:   make(map[int64]*models.GalleryPost),
		objects: make(map[int64]map[int64]struct{}),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) visible(t *models.GalleryTerm) bool {
	p, ok := m.posts[t.PostID]
	return !ok || p.Status != models.PostStatusTrash
}

func (m *memStore) CreateTerm(_ context.Context, name, slug string, postID int64) (models.GalleryTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	now := time.Now()
	t := &models.GalleryTerm{ID: m.id(), Name: name, Slug: slug, PostID: postID, CreatedAt: now, UpdatedAt: now}
	m.terms[t.ID] = t
	return *t, nil
}

func (m *memStore) TermByID(_ context.Context, id int64) (models.GalleryTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.terms[id]; ok {
		return *t, nil
	}
	return models.GalleryTerm{}, storage.ErrGalleryNotFound
}

func (m *memStore) TermByName(_ context.Context, name string) (models.GalleryTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.sortedTerms() {
		if strings.EqualFold(t.Name, name) && m.visible(t) {
			return *t, nil
		}
	}
	return models.GalleryTerm{}, storage.ErrGalleryNotFound
}

func (m *memStore) TermBySlug(_ context.Context, slug string) (models.GalleryTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.terms {
		if t.Slug == slug {
			return *t, nil
		}
	}
	return models.GalleryTerm{}, storage.ErrGalleryNotFound
}

func (m *memStore) RenameTerm(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	t, ok := m.terms[id]
	if !ok {
		return storage.ErrGalleryNotFound
	}
	t.Name = name
	return nil
}

func (m *memStore) SetTermPost(_ context.Context, termID, postID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	t, ok := m.terms[termID]
	if !ok {
		return storage.ErrGalleryNotFound
	}
	t.PostID = postID
	return nil
}

func (m *memStore) SearchTerms(_ context.Context, search string, limit int) ([]models.GalleryTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.GalleryTerm
	for _, t := range m.sortedTerms() {
		if !m.visible(t) || !strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) GetTerms(_ context.Context, page, perPage int) ([]models.GalleryTerm, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []models.GalleryTerm
	for _, t := range m.sortedTerms() {
		if m.visible(t) {
			all = append(all, *t)
		}
	}

	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memStore) AddTermObjects(_ context.Context, termID int64, objectIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	set, ok := m.objects[termID]
	if !ok {
		set = make(map[int64]struct{})
		m.objects[termID] = set
	}
	for _, id := range objectIDs {
		set[id] = struct{}{}
	}
	return nil
}

func (m *memStore) ObjectsInTerm(_ context.Context, termID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.objects[termID]))
	for id := range m.objects[termID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) UpdateTermCount(_ context.Context, termID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	t, ok := m.terms[termID]
	if !ok {
		return storage.ErrGalleryNotFound
	}
	t.Count = len(m.objects[termID])
	return nil
}

func (m *memStore) CreatePost(_ context.Context, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	p := &models.GalleryPost{ID: m.id(), Title: title, Status: models.PostStatusPublish, Order: []int64{}, Captions: models.Captions{}}
	m.posts[p.ID] = p
	return p.ID, nil
}

func (m *memStore) PostByID(_ context.Context, id int64) (models.GalleryPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return models.GalleryPost{}, storage.ErrPostNotFound
	}
	cp := *p
	cp.Order = append([]int64(nil), p.Order...)
	return cp, nil
}

func (m *memStore) UpdatePostTitle(_ context.Context, id int64, title string) error {
	return m.updatePost(id, func(p *models.GalleryPost) { p.Title = title })
}

func (m *memStore) UpdatePostMeta(_ context.Context, id int64, order []int64, captions models.Captions) error {
	return m.updatePost(id, func(p *models.GalleryPost) {
		p.Order = append([]int64(nil), order...)
		p.Captions = captions
	})
}

func (m *memStore) UpdatePostSettings(_ context.Context, id int64, settings models.Settings) error {
	return m.updatePost(id, func(p *models.GalleryPost) { p.Settings = settings })
}

func (m *memStore) UpdatePostStatus(_ context.Context, id int64, status string) error {
	return m.updatePost(id, func(p *models.GalleryPost) { p.Status = status })
}

func (m *memStore) updatePost(id int64, fn func(p *models.GalleryPost)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	p, ok := m.posts[id]
	if !ok {
		return storage.ErrPostNotFound
	}
	fn(p)
	return nil
}

func (m *memStore) sortedTerms() []*models.GalleryTerm {
	terms := make([]*models.GalleryTerm, 0, len(m.terms))
	for _, t := range m.terms {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	return terms
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

package editor

import (
	"context"
	"errors"
	"sync"

	"remember_galleries/internal/transport/http/dto"
)

var (
	ErrNotSearching   = errors.New("widget is not searching")
	ErrNotInResults   = errors.New("gallery is not in the current results")
	ErrWidgetReadonly = errors.New("widget is readonly")
)

// WidgetState is the lifecycle of the selection popup.
type WidgetState int

const (
	StateIdle WidgetState = iota
	StateSearching
	StateSelected
)

func (s WidgetState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// Searcher runs a gallery search.
type Searcher interface {
	SearchGalleries(ctx context.Context, term string) ([]dto.GallerySearchResult, error)
}

// Component is what a host UI needs from the selection widget.
type Component interface {
	Render() View
	OnSelect(fn func(dto.GallerySearchResult))
	OnCancel(fn func())
	State() WidgetState
}

// View is a snapshot of the widget for rendering.
type View struct {
	State       WidgetState
	Query       string
	Placeholder string
	Readonly    bool
	Results     []ResultView
	// CanLoad shows the Load button: a gallery with attachments is selected.
	CanLoad   bool
	LoadLabel string
}

type ResultView struct {
	ID    int64
	Name  string
	Count int
}

// Widget is a search box with a popup result list. Each keystroke starts a
// search; only the newest response is applied and only while searching.
type Widget struct {
	searcher Searcher
	msgs     Messages

	mu       sync.Mutex
	wg       sync.WaitGroup
	state    WidgetState
	readonly bool
	query    string
	seq      uint64
	results  []dto.GallerySearchResult
	selected *dto.GallerySearchResult
	cancel   context.CancelFunc
	lastErr  error

	onSelect func(dto.GallerySearchResult)
	onCancel func()
}

var _ Component = (*Widget)(nil)

func NewWidget(searcher Searcher, msgs Messages) *Widget {
	return &Widget{
		searcher: searcher,
		msgs:     msgs,
	}
}

func (w *Widget) OnSelect(fn func(dto.GallerySearchResult)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSelect = fn
}

func (w *Widget) OnCancel(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onCancel = fn
}

func (w *Widget) State() WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SetReadonly disables typing, used while browsing the library.
func (w *Widget) SetReadonly(readonly bool) {
	w.mu.Lock()
	w.readonly = readonly
	w.mu.Unlock()

	if readonly {
		w.Cancel()
	}
}

// Type handles a keystroke: it opens the popup and issues a search for
// query. An empty query lists the most recently changed galleries.
func (w *Widget) Type(ctx context.Context, query string) error {
	w.mu.Lock()
	if w.readonly {
		w.mu.Unlock()
		return ErrWidgetReadonly
	}

	if w.cancel != nil {
		w.cancel()
	}

	w.seq++
	seq := w.seq
	w.state = StateSearching
	w.query = query
	if w.selected != nil && w.selected.Name != query {
		w.selected = nil
	}

	reqCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer cancel()

		results, err := w.searcher.SearchGalleries(reqCtx, query)
		w.apply(seq, results, err)
	}()

	return nil
}

func (w *Widget) apply(seq uint64, results []dto.GallerySearchResult, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq || w.state != StateSearching {
		return
	}

	w.lastErr = err
	if err != nil {
		w.results = nil
		return
	}
	w.results = results
}

// Select picks a gallery from the latest results and closes the popup.
func (w *Widget) Select(id int64) (dto.GallerySearchResult, error) {
	w.mu.Lock()

	if w.state != StateSearching {
		w.mu.Unlock()
		return dto.GallerySearchResult{}, ErrNotSearching
	}

	var found *dto.GallerySearchResult
	for i := range w.results {
		if w.results[i].ID == id {
			item := w.results[i]
			found = &item
			break
		}
	}
	if found == nil {
		w.mu.Unlock()
		return dto.GallerySearchResult{}, ErrNotInResults
	}

	// ответы на уже отправленные поиски больше не нужны
	w.seq++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	w.state = StateSelected
	w.selected = found
	w.query = found.Name
	w.results = nil
	fn := w.onSelect
	w.mu.Unlock()

	if fn != nil {
		fn(*found)
	}

	return *found, nil
}

// Cancel closes the popup and drops in-flight searches.
func (w *Widget) Cancel() {
	w.mu.Lock()

	if w.state == StateIdle {
		w.mu.Unlock()
		return
	}

	w.seq++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.state = StateIdle
	w.results = nil
	fn := w.onCancel
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Selected returns the chosen gallery, if any.
func (w *Widget) Selected() (dto.GallerySearchResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.selected == nil {
		return dto.GallerySearchResult{}, false
	}
	return *w.selected, true
}

// Results returns a copy of the latest applied results.
func (w *Widget) Results() []dto.GallerySearchResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]dto.GallerySearchResult, len(w.results))
	copy(out, w.results)
	return out
}

// Err returns the error of the latest applied search.
func (w *Widget) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Wait blocks until all issued searches have returned.
func (w *Widget) Wait() {
	w.wg.Wait()
}

func (w *Widget) Render() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:       w.state,
		Query:       w.query,
		Readonly:    w.readonly,
		Placeholder: w.msgs.SelectGallery,
		LoadLabel:   w.msgs.Load,
	}
	if w.readonly {
		v.Placeholder = w.msgs.NewGallery
	}

	if w.state == StateSearching {
		v.Results = make([]ResultView, 0, len(w.results))
		for _, r := range w.results {
			v.Results = append(v.Results, ResultView{ID: r.ID, Name: r.Name, Count: r.Count})
		}
	}

	v.CanLoad = w.state == StateSelected && w.selected != nil && w.selected.Count > 0

	return v
}

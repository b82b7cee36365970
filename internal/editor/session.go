package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/transport/http/dto"
	"remember_galleries/internal/transport/http/dto/response"
)

var (
	ErrNameRequired = errors.New("gallery name is empty")
	ErrDeclined     = errors.New("overwrite declined")
)

// Prompter is the part of the host UI the session talks back to.
type Prompter interface {
	Confirm(message string) bool
	FocusName()
	Alert(message string)
}

// Backend is the API surface used by a session.
type Backend interface {
	SaveGallery(ctx context.Context, req dto.SaveGalleryRequest) (dto.SavedGalleryResponse, error)
	QueryAttachments(ctx context.Context, ids []int64) ([]dto.AttachmentResponse, error)
	GetDraft(ctx context.Context) (dto.DraftResponse, error)
	SaveDraft(ctx context.Context, req dto.DraftRequest) (dto.DraftResponse, error)
	DeleteDraft(ctx context.Context) error
}

// Item is an attachment staged in the session.
type Item struct {
	Attachment dto.AttachmentResponse
	Caption    string
}

// Session is the gallery under edit. Loading replaces the staged items and
// never saves; only Save writes to the service.
type Session struct {
	backend  Backend
	prompter Prompter
	msgs     Messages

	mu       sync.Mutex
	id       int64
	name     string
	items    []Item
	settings models.Settings
	loadSeq  uint64
}

func NewSession(backend Backend, prompter Prompter, msgs Messages) *Session {
	return &Session{
		backend:  backend,
		prompter: prompter,
		msgs:     msgs,
	}
}

func (s *Session) ID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// CanSave reports whether the save action is available.
func (s *Session) CanSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(s.name) != ""
}

func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// IDs returns the staged attachment ids in display order.
func (s *Session) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.items))
	for _, it := range s.items {
		ids = append(ids, it.Attachment.ID)
	}
	return ids
}

// SetItems replaces the staged items, e.g. after the user reorders them.
func (s *Session) SetItems(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadSeq++
	s.items = append([]Item(nil), items...)
}

func (s *Session) SetCaption(attachmentID int64, caption string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Attachment.ID == attachmentID {
			s.items[i].Caption = caption
			return true
		}
	}
	return false
}

func (s *Session) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Bind adopts a gallery picked in the widget. Items are left as they are
// until Load is called.
func (s *Session) Bind(g dto.GallerySearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = g.ID
	s.name = g.Name
}

// Load replaces the staged items with the given attachments. A load that
// finishes after a newer Load or SetItems is dropped.
func (s *Session) Load(ctx context.Context, ids []int64) error {
	const op = "editor.Session.Load"

	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	attachments, err := s.backend.QueryAttachments(ctx, ids)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	items := make([]Item, 0, len(attachments))
	for _, a := range attachments {
		items = append(items, Item{Attachment: a, Caption: a.Caption})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.loadSeq {
		return nil
	}
	s.items = items

	return nil
}

// Save sends the session to the service. On need-confirm the prompter is
// asked and, if it agrees, the save is repeated with confirmation.
func (s *Session) Save(ctx context.Context) (dto.SavedGalleryResponse, error) {
	const op = "editor.Session.Save"

	if !s.CanSave() {
		s.prompter.FocusName()
		return dto.SavedGalleryResponse{}, ErrNameRequired
	}

	req := s.saveRequest()

	saved, err := s.backend.SaveGallery(ctx, req)
	if IsCode(err, response.CodeNeedConfirm) {
		if !s.prompter.Confirm(s.msgs.AreYouSure) {
			return dto.SavedGalleryResponse{}, ErrDeclined
		}

		req.Confirmed = true
		saved, err = s.backend.SaveGallery(ctx, req)
	}

	if err != nil {
		var apiErr *APIError
		switch {
		case IsCode(err, response.CodeEmptyName):
			s.prompter.FocusName()
		case errors.As(err, &apiErr):
			s.prompter.Alert(s.msgs.ErrorText(apiErr.Code, apiErr.Message))
		default:
			s.prompter.Alert(s.msgs.Failed)
		}
		return dto.SavedGalleryResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.id = saved.ID
	s.name = saved.Name
	s.mu.Unlock()

	return saved, nil
}

func (s *Session) saveRequest() dto.SaveGalleryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]dto.GalleryImageInput, 0, len(s.items))
	for _, it := range s.items {
		img := dto.GalleryImageInput{ID: it.Attachment.ID}
		if it.Caption != "" {
			img.Caption = it.Caption
		}
		images = append(images, img)
	}

	return dto.SaveGalleryRequest{
		Images:   images,
		Name:     s.name,
		TermID:   s.id,
		Settings: settingsMap(s.settings),
	}
}

func settingsMap(st models.Settings) map[string]any {
	if st.IsZero() {
		return nil
	}

	m := make(map[string]any, 4)
	if st.Columns != nil {
		m["columns"] = *st.Columns
	}
	if st.Size != nil {
		m["size"] = *st.Size
	}
	if st.Random != nil {
		m["random"] = *st.Random
	}
	if st.Link != nil {
		m["link"] = *st.Link
	}
	return m
}

// Stash stores the session as a draft of the current editor session.
func (s *Session) Stash(ctx context.Context) error {
	const op = "editor.Session.Stash"

	s.mu.Lock()
	req := dto.DraftRequest{
		GalleryID: s.id,
		Name:      s.name,
		Items:     make([]dto.DraftItem, 0, len(s.items)),
		Settings:  s.settings,
	}
	for _, it := range s.items {
		req.Items = append(req.Items, dto.DraftItem{ID: it.Attachment.ID, Caption: it.Caption})
	}
	s.mu.Unlock()

	if _, err := s.backend.SaveDraft(ctx, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Restore brings back a stashed draft. Captions typed in the editor win
// over the attachment's own caption.
func (s *Session) Restore(ctx context.Context) error {
	const op = "editor.Session.Restore"

	draft, err := s.backend.GetDraft(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]int64, 0, len(draft.Items))
	captions := make(map[int64]string, len(draft.Items))
	for _, it := range draft.Items {
		ids = append(ids, it.ID)
		if it.Caption != "" {
			captions[it.ID] = it.Caption
		}
	}

	s.mu.Lock()
	s.id = draft.GalleryID
	s.name = draft.Name
	s.settings = draft.Settings
	s.mu.Unlock()

	if err := s.Load(ctx, ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	for i := range s.items {
		if c, ok := captions[s.items[i].Attachment.ID]; ok {
			s.items[i].Caption = c
		}
	}
	s.mu.Unlock()

	return nil
}

// Discard drops the stashed draft.
func (s *Session) Discard(ctx context.Context) error {
	const op = "editor.Session.Discard"

	if err := s.backend.DeleteDraft(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

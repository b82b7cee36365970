package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/lib/logger/sl"
	"remember_galleries/internal/metrics"
	"remember_galleries/internal/middleware"
	gallerysvc "remember_galleries/internal/services/gallery_service"
	shortcodesvc "remember_galleries/internal/services/shortcode_service"
	"remember_galleries/internal/storage"
	"remember_galleries/internal/transport/http/dto"
	"remember_galleries/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "remember_galleries/docs"
)

type GalleryService interface {
	SaveGallery(ctx context.Context, req dto.SaveGalleryRequest) (gallerysvc.SavedGallery, error)
	SearchGalleries(ctx context.Context, term string) ([]models.Gallery, error)
	ListGalleries(ctx context.Context, page, perPage int) ([]models.Gallery, int, error)
	GetGallery(ctx context.Context, id int64) (models.Gallery, error)
	TrashGallery(ctx context.Context, id int64) error
	RestoreGallery(ctx context.Context, id int64) error
}

type MediaService interface {
	QueryAttachments(ctx context.Context, req dto.QueryAttachmentsRequest) ([]dto.AttachmentResponse, error)
	UploadAttachment(ctx context.Context, input dto.AttachmentUploadInput) (dto.AttachmentResponse, error)
}

type ShortcodeService interface {
	ExpandContent(ctx context.Context, content string) (shortcodesvc.Expanded, error)
}

type DraftService interface {
	SaveDraft(ctx context.Context, owner, draftID string, draft models.Draft) (models.Draft, error)
	GetDraft(ctx context.Context, owner, draftID string) (models.Draft, error)
	DeleteDraft(ctx context.Context, owner, draftID string) error
}

const (
	// SessionName cookie-сессия редактора, в ней хранится ID черновика
	SessionName    = "rtg"
	sessionDraftID = "draft_id"
)

type Routers struct {
	log              *slog.Logger
	GalleryService   GalleryService
	MediaService     MediaService
	ShortcodeService ShortcodeService
	DraftService     DraftService
}

func NewRouter(
	log *slog.Logger,
	galleryService GalleryService,
	mediaService MediaService,
	shortcodeService ShortcodeService,
	draftService DraftService,
) *Routers {
	return &Routers{
		log:              log,
		GalleryService:   galleryService,
		MediaService:     mediaService,
		ShortcodeService: shortcodeService,
		DraftService:     draftService,
	}
}

// SearchGalleries godoc
// @Summary Поиск галерей
// @Description Возвращает до 10 галерей, имя которых содержит строку поиска, вместе со списками вложений. Пустая строка возвращает последние изменённые галереи.
// @Tags galleries
// @Accept json
// @Produce json
// @Param request body dto.SearchGalleriesRequest true "Строка поиска"
// @Success 200 {object} response.Response{data=[]dto.GallerySearchResult}
// @Failure 400 {object} response.Response{data=response.ErrorData}
// @Failure 429 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/galleries/search [post]
func (r *Routers) SearchGalleries(c echo.Context) error {
	const op = "http.routers.SearchGalleries"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.SearchGalleriesRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	metrics.GallerySearchesTotal.Inc()

	galleries, err := r.GalleryService.SearchGalleries(c.Request().Context(), req.Term)
	if err != nil {
		log.Error("search failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	results := make([]dto.GallerySearchResult, 0, len(galleries))
	for _, g := range galleries {
		results = append(results, dto.NewGallerySearchResult(g))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(results))
}

// SaveGallery godoc
// @Summary Сохранение галереи
// @Description Создает галерею, обновляет существующую по term_id или, при confirmed=true, перезаписывает одноимённую галерею.
// @Tags galleries
// @Accept json
// @Produce json
// @Param request body dto.SaveGalleryRequest true "Изображения, имя и настройки"
// @Success 200 {object} response.Response{data=dto.SavedGalleryResponse}
// @Failure 400 {object} response.Response{data=response.ErrorData} "invalid-input или empty-name"
// @Failure 404 {object} response.Response{data=response.ErrorData} "Галерея term_id не найдена"
// @Failure 409 {object} response.Response{data=response.ErrorData} "need-confirm, в name имя конфликтующей галереи"
// @Failure 500 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/galleries/save [post]
func (r *Routers) SaveGallery(c echo.Context) error {
	const op = "http.routers.SaveGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.SaveGalleryRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		metrics.GallerySavesTotal.WithLabelValues("invalid_input").Inc()
		return c.JSON(http.StatusBadRequest, response.ErrInvalidInput)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		metrics.GallerySavesTotal.WithLabelValues("invalid_input").Inc()
		return c.JSON(http.StatusBadRequest, response.ErrInvalidInput)
	}

	saved, err := r.GalleryService.SaveGallery(c.Request().Context(), req)
	if err != nil {
		var confirmErr *gallerysvc.ConfirmError

		switch {
		case errors.Is(err, gallerysvc.ErrInvalidInput):
			metrics.GallerySavesTotal.WithLabelValues("invalid_input").Inc()
			return c.JSON(http.StatusBadRequest, response.ErrInvalidInput)
		case errors.Is(err, gallerysvc.ErrEmptyName):
			metrics.GallerySavesTotal.WithLabelValues("empty_name").Inc()
			return c.JSON(http.StatusBadRequest, response.ErrEmptyName)
		case errors.As(err, &confirmErr):
			metrics.GallerySavesTotal.WithLabelValues("need_confirm").Inc()
			return c.JSON(http.StatusConflict, response.NeedConfirmResponse(confirmErr.Name))
		case errors.Is(err, storage.ErrGalleryNotFound):
			metrics.GallerySavesTotal.WithLabelValues("not_found").Inc()
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}

		log.Error("failed to save gallery", sl.Err(err))
		metrics.GallerySavesTotal.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse(response.CodeInternal, "Could not save gallery"))
	}

	metrics.GallerySavesTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SavedGalleryResponse{
		ID:   saved.ID,
		Name: saved.Name,
	}))
}

// ListGalleries godoc
// @Summary Список галерей
// @Description Постраничный список галерей, не лежащих в корзине. ids содержит превью из первых 10 вложений.
// @Tags galleries
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param per_page query int false "Размер страницы" default(20)
// @Success 200 {object} response.Response{data=dto.GalleryListResponse}
// @Failure 500 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/galleries [get]
func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	log := r.log.With(
		slog.String("op", op),
	)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	galleries, total, err := r.GalleryService.ListGalleries(c.Request().Context(), page, perPage)
	if err != nil {
		log.Error("failed to list galleries", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	resp := dto.GalleryListResponse{
		Galleries:  make([]dto.GalleryResponse, 0, len(galleries)),
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	}
	for _, g := range galleries {
		resp.Galleries = append(resp.Galleries, dto.NewGalleryResponse(g))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// GetGallery godoc
// @Summary Галерея по ID
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 400 {object} response.Response{data=response.ErrorData}
// @Failure 404 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	gallery, err := r.GalleryService.GetGallery(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}
		log.Error("failed to get gallery", slog.Int64("id", id), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewGalleryResponse(gallery)))
}

// TrashGallery godoc
// @Summary Переместить галерею в корзину
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/trash [post]
func (r *Routers) TrashGallery(c echo.Context) error {
	return r.changeStatus(c, "http.routers.TrashGallery", r.GalleryService.TrashGallery)
}

// RestoreGallery godoc
// @Summary Восстановить галерею из корзины
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response{data=response.ErrorData}
// @Failure 409 {object} response.Response{data=response.ErrorData} "Имя занято другой галереей"
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/restore [post]
func (r *Routers) RestoreGallery(c echo.Context) error {
	return r.changeStatus(c, "http.routers.RestoreGallery", r.GalleryService.RestoreGallery)
}

func (r *Routers) changeStatus(c echo.Context, op string, change func(ctx context.Context, id int64) error) error {
	log := r.log.With(
		slog.String("op", op),
	)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := change(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrGalleryNotFound), errors.Is(err, storage.ErrPostNotFound):
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		case errors.Is(err, gallerysvc.ErrNameTaken):
			return c.JSON(http.StatusConflict, response.ErrNameTaken)
		}
		log.Error("failed to change gallery status", slog.Int64("id", id), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]int64{"id": id}))
}

// QueryAttachments godoc
// @Summary Записи вложений по ID
// @Description Возвращает записи вложений в порядке запроса. Нули, повторы и неизвестные ID пропускаются.
// @Tags attachments
// @Accept json
// @Produce json
// @Param request body dto.QueryAttachmentsRequest true "ID вложений"
// @Success 200 {object} response.Response{data=[]dto.AttachmentResponse}
// @Failure 400 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/attachments/query [post]
func (r *Routers) QueryAttachments(c echo.Context) error {
	const op = "http.routers.QueryAttachments"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.QueryAttachmentsRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	attachments, err := r.MediaService.QueryAttachments(c.Request().Context(), req)
	if err != nil {
		log.Error("failed to query attachments", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(attachments))
}

// UploadAttachment godoc
// @Summary Загрузка изображения в медиатеку
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение (JPEG, PNG, GIF, WebP)"
// @Param title formData string false "Заголовок"
// @Param caption formData string false "Подпись"
// @Param alt formData string false "Альтернативный текст"
// @Param width formData integer false "Ширина в пикселях"
// @Param height formData integer false "Высота в пикселях"
// @Success 201 {object} response.Response{data=dto.AttachmentResponse}
// @Failure 400 {object} response.Response{data=response.ErrorData}
// @Failure 413 {object} response.Response{data=response.ErrorData}
// @Failure 415 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/attachments [post]
func (r *Routers) UploadAttachment(c echo.Context) error {
	const op = "http.routers.UploadAttachment"

	log := r.log.With(
		slog.String("op", op),
	)

	var input dto.AttachmentUploadInput
	if err := c.Bind(&input); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("file is required", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse(response.CodeInvalidRequest, "File is required"))
	}
	input.File = file

	if err := c.Validate(input); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse(response.CodeInvalidRequest, err.Error()))
	}

	attachment, err := r.MediaService.UploadAttachment(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		case errors.Is(err, storage.ErrInvalidFileType):
			return c.JSON(http.StatusUnsupportedMediaType, response.ErrInvalidFileType)
		case models.IsAttachmentValidationError(err):
			log.Warn("attachment rejected", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrorResponse(response.CodeInvalidRequest, "Invalid attachment"))
		}
		log.Error("upload failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(attachment))
}

// ExpandShortcodes godoc
// @Summary Раскрытие шорткодов [gallery slug="..."]
// @Description Подставляет ids сохранённых галерей вместо slug и возвращает содержимое каждой найденной галереи.
// @Tags shortcodes
// @Accept json
// @Produce json
// @Param request body dto.ExpandShortcodesRequest true "Текст с шорткодами"
// @Success 200 {object} response.Response{data=dto.ExpandShortcodesResponse}
// @Failure 400 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/shortcodes/expand [post]
func (r *Routers) ExpandShortcodes(c echo.Context) error {
	const op = "http.routers.ExpandShortcodes"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ExpandShortcodesRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	expanded, err := r.ShortcodeService.ExpandContent(c.Request().Context(), req.Content)
	if err != nil {
		log.Error("failed to expand shortcodes", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.ExpandShortcodesResponse{
		Content: expanded.Content,
		Slugs:   expanded.Slugs,
	}))
}

// GetDraft godoc
// @Summary Черновик текущей сессии редактирования
// @Tags drafts
// @Produce json
// @Success 200 {object} response.Response{data=dto.DraftResponse}
// @Failure 404 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/drafts [get]
func (r *Routers) GetDraft(c echo.Context) error {
	const op = "http.routers.GetDraft"

	log := r.log.With(
		slog.String("op", op),
	)

	owner := ownerFromContext(c)

	draftID, ok := sessionDraft(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrDraftNotFound)
	}

	draft, err := r.DraftService.GetDraft(c.Request().Context(), owner, draftID)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrDraftNotFound)
		}
		log.Error("failed to get draft", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewDraftResponse(draft)))
}

// SaveDraft godoc
// @Summary Сохранить черновик сессии редактирования
// @Description ID черновика хранится в cookie-сессии и создается при первом сохранении.
// @Tags drafts
// @Accept json
// @Produce json
// @Param request body dto.DraftRequest true "Состояние сессии"
// @Success 200 {object} response.Response{data=dto.DraftResponse}
// @Failure 400 {object} response.Response{data=response.ErrorData}
// @Security ApiKeyAuth
// @Router /api/v1/drafts [put]
func (r *Routers) SaveDraft(c echo.Context) error {
	const op = "http.routers.SaveDraft"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.DraftRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse(response.CodeInvalidRequest, err.Error()))
	}

	draftID, ok := sessionDraft(c)
	if !ok {
		draftID = uuid.NewString()

		sess, err := session.Get(SessionName, c)
		if err != nil {
			log.Error("failed to get session", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}
		sess.Values[sessionDraftID] = draftID
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Error("failed to save session", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}
	}

	draft, err := r.DraftService.SaveDraft(c.Request().Context(), ownerFromContext(c), draftID, req.ToDomain())
	if err != nil {
		log.Error("failed to save draft", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewDraftResponse(draft)))
}

// DeleteDraft godoc
// @Summary Удалить черновик сессии редактирования
// @Tags drafts
// @Produce json
// @Success 200 {object} response.Response
// @Security ApiKeyAuth
// @Router /api/v1/drafts [delete]
func (r *Routers) DeleteDraft(c echo.Context) error {
	const op = "http.routers.DeleteDraft"

	log := r.log.With(
		slog.String("op", op),
	)

	draftID, ok := sessionDraft(c)
	if ok {
		if err := r.DraftService.DeleteDraft(c.Request().Context(), ownerFromContext(c), draftID); err != nil {
			log.Error("failed to delete draft", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func ownerFromContext(c echo.Context) string {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		return claims.Subject
	}
	return ""
}

func sessionDraft(c echo.Context) (string, bool) {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return "", false
	}

	id, ok := sess.Values[sessionDraftID].(string)
	return id, ok && id != ""
}

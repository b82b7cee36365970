package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var termColumns = []string{
	"t.id",
	"t.name",
	"t.slug",
	"COALESCE(t.post_id, 0)",
	"t.count",
	"t.created_at",
	"t.updated_at",
}

// selectVisibleTerms выбирает галереи, пост которых не лежит в корзине
func (r *GalleryRepo) selectVisibleTerms() squirrel.SelectBuilder {
	return r.sb.Select(termColumns...).
		From("gallery_terms t").
		LeftJoin("gallery_posts p ON p.id = t.post_id").
		Where(squirrel.Or{
			squirrel.Eq{"p.status": nil},
			squirrel.NotEq{"p.status": models.PostStatusTrash},
		})
}

func scanTerm(row pgx.Row) (models.GalleryTerm, error) {
	var term models.GalleryTerm
	err := row.Scan(
		&term.ID,
		&term.Name,
		&term.Slug,
		&term.PostID,
		&term.Count,
		&term.CreatedAt,
		&term.UpdatedAt,
	)
	return term, err
}

// CreateTerm создает термин галереи, связанный с постом метаданных
func (r *GalleryRepo) CreateTerm(ctx context.Context, name, slug string, postID int64) (models.GalleryTerm, error) {
	const op = "repository.GalleryRepo.CreateTerm"

	query, args, err := r.sb.Insert("gallery_terms").
		Columns("name", "slug", "post_id").
		Values(name, slug, postID).
		Suffix("RETURNING id, name, slug, COALESCE(post_id, 0), count, created_at, updated_at").
		ToSql()
	if err != nil {
		return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, err)
	}

	term, err := scanTerm(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, err)
	}

	return term, nil
}

// TermByID возвращает галерею по ID, включая галереи в корзине
func (r *GalleryRepo) TermByID(ctx context.Context, id int64) (models.GalleryTerm, error) {
	const op = "repository.GalleryRepo.TermByID"

	query, args, err := r.sb.Select(termColumns...).
		From("gallery_terms t").
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, err)
	}

	return r.getTerm(ctx, op, query, args)
}

// TermByName ищет не удалённую галерею по имени без учета регистра
func (r *GalleryRepo) TermByName(ctx context.Context, name string) (models.GalleryTerm, error) {
	const op = "repository.GalleryRepo.TermByName"

	query, args, err := r.selectVisibleTerms().
		Where("lower(t.name) = lower(?)", name).
		OrderBy("t.id").
		Limit(1).
		ToSql()
	if err != nil {
		return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, err)
	}

	return r.getTerm(ctx, op, query, args)
}

// TermBySlug ищет галерею по slug, используемому в шорткоде
func (r *GalleryRepo) TermBySlug(ctx context.Context, slug string) (models.GalleryTerm, error) {
	const op = "repository.GalleryRepo.TermBySlug"

	query, args, err := r.sb.Select(termColumns...).
		From("gallery_terms t").
		Where(squirrel.Eq{"t.slug": slug}).
		ToSql()
	if err != nil {
		return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, err)
	}

	return r.getTerm(ctx, op, query, args)
}

func (r *GalleryRepo) getTerm(ctx context.Context, op, query string, args []interface{}) (models.GalleryTerm, error) {
	term, err := scanTerm(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.GalleryTerm{}, fmt.Errorf("%s: %w", op, err)
	}

	return term, nil
}

// RenameTerm меняет название галереи; slug остается прежним
func (r *GalleryRepo) RenameTerm(ctx context.Context, id int64, name string) error {
	const op = "repository.GalleryRepo.RenameTerm"

	query, args, err := r.sb.Update("gallery_terms").
		Set("name", name).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.execAffecting(ctx, op, query, args)
}

// SetTermPost связывает галерею с постом метаданных
func (r *GalleryRepo) SetTermPost(ctx context.Context, termID, postID int64) error {
	const op = "repository.GalleryRepo.SetTermPost"

	query, args, err := r.sb.Update("gallery_terms").
		Set("post_id", postID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": termID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.execAffecting(ctx, op, query, args)
}

func (r *GalleryRepo) execAffecting(ctx context.Context, op, query string, args []interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// SearchTerms ищет галереи по подстроке имени. Пустой запрос возвращает
// последние изменённые галереи.
func (r *GalleryRepo) SearchTerms(ctx context.Context, search string, limit int) ([]models.GalleryTerm, error) {
	const op = "repository.GalleryRepo.SearchTerms"

	if limit < 1 {
		limit = 10
	}

	queryBuilder := r.selectVisibleTerms()

	if search = strings.TrimSpace(search); search != "" {
		queryBuilder = queryBuilder.
			Where("t.name ILIKE ?", "%"+escapeLike(search)+"%").
			OrderBy("t.name ASC", "t.id ASC")
	} else {
		queryBuilder = queryBuilder.OrderBy("t.updated_at DESC", "t.id DESC")
	}

	query, args, err := queryBuilder.Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.queryTerms(ctx, op, query, args)
}

// GetTerms возвращает страницу галерей для административного списка
func (r *GalleryRepo) GetTerms(ctx context.Context, page, perPage int) ([]models.GalleryTerm, int, error) {
	const op = "repository.GalleryRepo.GetTerms"

	// Проверка и корректировка параметров пагинации
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	totalCount, err := r.getTotalCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.selectVisibleTerms().
		OrderBy("t.created_at DESC", "t.id DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	terms, err := r.queryTerms(ctx, op, query, args)
	if err != nil {
		return nil, 0, err
	}

	return terms, totalCount, nil
}

// Вспомогательная функция для получения общего количества видимых галерей
func (r *GalleryRepo) getTotalCount(ctx context.Context) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("gallery_terms t").
		LeftJoin("gallery_posts p ON p.id = t.post_id").
		Where(squirrel.Or{
			squirrel.Eq{"p.status": nil},
			squirrel.NotEq{"p.status": models.PostStatusTrash},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error build query: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("error execute query: %w (SQL: %s)", err, query)
	}

	return count, nil
}

func (r *GalleryRepo) queryTerms(ctx context.Context, op, query string, args []interface{}) ([]models.GalleryTerm, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	terms := make([]models.GalleryTerm, 0)
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return terms, nil
}

// AddTermObjects привязывает объекты к галерее. Существующие связи не
// меняются и не удаляются.
func (r *GalleryRepo) AddTermObjects(ctx context.Context, termID int64, objectIDs []int64) error {
	const op = "repository.GalleryRepo.AddTermObjects"

	if len(objectIDs) == 0 {
		return nil
	}

	builder := r.sb.Insert("gallery_attachments").
		Columns("term_id", "attachment_id")
	for _, id := range objectIDs {
		builder = builder.Values(termID, id)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (term_id, attachment_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ObjectsInTerm возвращает все объекты, когда-либо привязанные к галерее
func (r *GalleryRepo) ObjectsInTerm(ctx context.Context, termID int64) ([]int64, error) {
	const op = "repository.GalleryRepo.ObjectsInTerm"

	query, args, err := r.sb.Select("attachment_id").
		From("gallery_attachments").
		Where(squirrel.Eq{"term_id": termID}).
		OrderBy("attachment_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// UpdateTermCount пересчитывает число привязанных объектов галереи
func (r *GalleryRepo) UpdateTermCount(ctx context.Context, termID int64) error {
	const op = "repository.GalleryRepo.UpdateTermCount"

	query, args, err := r.sb.Update("gallery_terms").
		Set("count", squirrel.Expr("(SELECT COUNT(*) FROM gallery_attachments WHERE term_id = ?)", termID)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": termID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.execAffecting(ctx, op, query, args)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

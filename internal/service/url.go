package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	db "github.com/mlin93/snaplink/db/sqlc"
	"github.com/mlin93/snaplink/internal/model"
	"github.com/mlin93/snaplink/internal/util"
)

const maxGenerateRetries = 5

// URLService 负责短链接的创建、查询、更新、删除以及所有权校验。
// 短码唯一性的最终保证是 urls.short_code 上的唯一索引，
// 预先的存在性检查只是快速短路，插入时的唯一约束冲突才是权威信号。
type URLService struct {
	store db.Store
}

func NewURLService(store db.Store) *URLService {
	return &URLService{store: store}
}

// ListParams 是面向所有者的分页查询参数
type ListParams struct {
	Page        int
	PageSize    int
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      string
}

// Create 创建一条短链接记录。
// 提供自定义短码时绝不会静默替换：短码被占用直接返回 ErrCodeAlreadyTaken。
func (s *URLService) Create(ctx context.Context, userID int64, req model.CreateURLRequest) (db.Url, error) {
	if err := validateDestination(req.OriginalURL); err != nil {
		return db.Url{}, err
	}

	if req.CustomCode != "" {
		return s.createWithCustomCode(ctx, userID, req)
	}
	return s.createWithGeneratedCode(ctx, userID, req)
}

func (s *URLService) createWithCustomCode(ctx context.Context, userID int64, req model.CreateURLRequest) (db.Url, error) {
	if err := util.ValidateShortCode(req.CustomCode); err != nil {
		return db.Url{}, err
	}

	// 先查一次是为了尽早失败，真正的防线在唯一索引
	available, err := s.store.IsShortCodeAvailable(ctx, req.CustomCode)
	if err != nil {
		return db.Url{}, util.ErrDatabase
	}
	if !available {
		return db.Url{}, util.ErrCodeAlreadyTaken
	}

	created, err := s.insert(ctx, userID, req.CustomCode, req)
	if err != nil {
		if isUniqueViolation(err) {
			// 并发窗口内被抢注
			return db.Url{}, util.ErrCodeAlreadyTaken
		}
		return db.Url{}, util.ErrDatabase
	}
	return created, nil
}

func (s *URLService) createWithGeneratedCode(ctx context.Context, userID int64, req model.CreateURLRequest) (db.Url, error) {
	length := util.DefaultShortCodeLength

	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		code, err := util.GenerateShortCode(length)
		if err != nil {
			return db.Url{}, util.ErrCodeSpaceExhausted
		}

		available, err := s.store.IsShortCodeAvailable(ctx, code)
		if err != nil {
			return db.Url{}, util.ErrDatabase
		}
		if !available {
			// 最后一次碰撞时加长一位再试，降低再次碰撞的概率
			if attempt == maxGenerateRetries-1 {
				length++
			}
			continue
		}

		created, err := s.insert(ctx, userID, code, req)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return db.Url{}, util.ErrDatabase
		}
		return created, nil
	}

	// 字母表/长度对当前负载来说太小了，属于运营信号
	log.Error().Int("retries", maxGenerateRetries).Msg("short code space exhausted")
	return db.Url{}, util.ErrCodeSpaceExhausted
}

func (s *URLService) insert(ctx context.Context, userID int64, code string, req model.CreateURLRequest) (db.Url, error) {
	params := db.CreateUrlParams{
		ID:          uuid.New(),
		ShortCode:   code,
		OriginalUrl: req.OriginalURL,
		UserID:      userID,
	}
	if req.Title != nil {
		params.Title = sql.NullString{String: *req.Title, Valid: true}
	}
	return s.store.CreateUrl(ctx, params)
}

// GetByCode 按短码查询记录，找不到返回 ErrNotFoundInDB
func (s *URLService) GetByCode(ctx context.Context, code string) (db.Url, error) {
	u, err := s.store.GetUrlByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Url{}, util.ErrNotFoundInDB
		}
		return db.Url{}, util.ErrDatabase
	}
	return u, nil
}

// Resolve 查询重定向目标。停用的记录返回 ErrURLDisabled，与未找到区分开，
// 点击计数由调用方在成功路径上触发。
func (s *URLService) Resolve(ctx context.Context, code string) (db.Url, error) {
	u, err := s.GetByCode(ctx, code)
	if err != nil {
		return db.Url{}, err
	}
	if !u.IsActive {
		return db.Url{}, util.ErrURLDisabled
	}
	return u, nil
}

// List 返回指定用户的短链接分页，附带过滤条件与总数
func (s *URLService) List(ctx context.Context, userID int64, params ListParams) ([]db.Url, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	isActive := sql.NullBool{}
	if params.IsActive != nil {
		isActive = sql.NullBool{Bool: *params.IsActive, Valid: true}
	}
	createdFrom := sql.NullTime{}
	if params.CreatedFrom != nil {
		createdFrom = sql.NullTime{Time: *params.CreatedFrom, Valid: true}
	}
	createdTo := sql.NullTime{}
	if params.CreatedTo != nil {
		createdTo = sql.NullTime{Time: *params.CreatedTo, Valid: true}
	}
	search := sql.NullString{}
	if params.Search != "" {
		search = sql.NullString{String: params.Search, Valid: true}
	}

	urls, err := s.store.ListUrlsByUser(ctx, db.ListUrlsByUserParams{
		UserID:      userID,
		Limit:       int32(params.PageSize),
		Offset:      int32((params.Page - 1) * params.PageSize),
		IsActive:    isActive,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
		Search:      search,
	})
	if err != nil {
		return nil, 0, util.ErrDatabase
	}

	total, err := s.store.CountUrlsByUser(ctx, db.CountUrlsByUserParams{
		UserID:      userID,
		IsActive:    isActive,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
		Search:      search,
	})
	if err != nil {
		return nil, 0, util.ErrDatabase
	}

	return urls, total, nil
}

// Update 只允许所有者修改 original_url/title/is_active，
// short_code 和 user_id 不在可变字段内。
func (s *URLService) Update(ctx context.Context, code string, userID int64, req model.UpdateURLRequest) (db.Url, error) {
	existing, err := s.GetByCode(ctx, code)
	if err != nil {
		return db.Url{}, err
	}
	if existing.UserID != userID {
		return db.Url{}, util.ErrForbidden
	}

	if req.OriginalURL != nil {
		if err := validateDestination(*req.OriginalURL); err != nil {
			return db.Url{}, err
		}
	}

	params := db.UpdateUrlParams{ShortCode: code}
	if req.OriginalURL != nil {
		params.OriginalUrl = sql.NullString{String: *req.OriginalURL, Valid: true}
	}
	if req.Title != nil {
		params.Title = sql.NullString{String: *req.Title, Valid: true}
	}
	if req.IsActive != nil {
		params.IsActive = sql.NullBool{Bool: *req.IsActive, Valid: true}
	}

	updated, err := s.store.UpdateUrl(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Url{}, util.ErrNotFoundInDB
		}
		return db.Url{}, util.ErrDatabase
	}
	return updated, nil
}

// Delete 硬删除记录，被删除的短码立即可以被重新使用
func (s *URLService) Delete(ctx context.Context, code string, userID int64) error {
	existing, err := s.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return util.ErrForbidden
	}

	rows, err := s.store.DeleteUrl(ctx, code)
	if err != nil {
		return util.ErrDatabase
	}
	if rows == 0 {
		return util.ErrNotFoundInDB
	}
	return nil
}

// Stats 返回所有者可见的点击统计
func (s *URLService) Stats(ctx context.Context, code string, userID int64) (db.Url, error) {
	u, err := s.GetByCode(ctx, code)
	if err != nil {
		return db.Url{}, err
	}
	if u.UserID != userID {
		return db.Url{}, util.ErrForbidden
	}
	return u, nil
}

func validateDestination(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return util.ErrInvalidDestination
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return util.ErrInvalidDestination
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return false
}

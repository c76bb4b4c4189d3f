package testutil

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	db "github.com/mlin93/snaplink/db/sqlc"
)

// FakeStore 是 db.Store 的内存实现，行为对齐 Postgres 语义：
// short_code 唯一冲突返回 pq unique_violation，点击累加是原子的。
type FakeStore struct {
	mu         sync.Mutex
	urls       map[string]db.Url
	users      map[int64]db.User
	nextUserID int64

	// 可选钩子，用于在单个用例里覆盖默认行为
	CreateUrlFn            func(ctx context.Context, arg db.CreateUrlParams) (db.Url, error)
	IsShortCodeAvailableFn func(ctx context.Context, shortCode string) (bool, error)
}

var _ db.Store = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{
		urls:       make(map[string]db.Url),
		users:      make(map[int64]db.User),
		nextUserID: 1,
	}
}

func UniqueViolation() error {
	return &pq.Error{Code: "23505", Constraint: "urls_short_code_key"}
}

func (f *FakeStore) CreateUrl(ctx context.Context, arg db.CreateUrlParams) (db.Url, error) {
	if f.CreateUrlFn != nil {
		return f.CreateUrlFn(ctx, arg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.urls[arg.ShortCode]; exists {
		return db.Url{}, UniqueViolation()
	}

	now := time.Now()
	u := db.Url{
		ID:          arg.ID,
		ShortCode:   arg.ShortCode,
		OriginalUrl: arg.OriginalUrl,
		UserID:      arg.UserID,
		Title:       arg.Title,
		IsActive:    true,
		Clicks:      0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.urls[arg.ShortCode] = u
	return u, nil
}

func (f *FakeStore) GetUrlByShortCode(ctx context.Context, shortCode string) (db.Url, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.urls[shortCode]
	if !ok {
		return db.Url{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *FakeStore) IsShortCodeAvailable(ctx context.Context, shortCode string) (bool, error) {
	if f.IsShortCodeAvailableFn != nil {
		return f.IsShortCodeAvailableFn(ctx, shortCode)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	_, exists := f.urls[shortCode]
	return !exists, nil
}

func matches(u db.Url, isActive sql.NullBool, from, to sql.NullTime, search sql.NullString) bool {
	if isActive.Valid && u.IsActive != isActive.Bool {
		return false
	}
	if from.Valid && u.CreatedAt.Before(from.Time) {
		return false
	}
	if to.Valid && u.CreatedAt.After(to.Time) {
		return false
	}
	if search.Valid {
		needle := strings.ToLower(search.String)
		title := ""
		if u.Title.Valid {
			title = strings.ToLower(u.Title.String)
		}
		if !strings.Contains(title, needle) && !strings.Contains(strings.ToLower(u.OriginalUrl), needle) {
			return false
		}
	}
	return true
}

func (f *FakeStore) ListUrlsByUser(ctx context.Context, arg db.ListUrlsByUserParams) ([]db.Url, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := []db.Url{}
	for _, u := range f.urls {
		if u.UserID != arg.UserID {
			continue
		}
		if matches(u, arg.IsActive, arg.CreatedFrom, arg.CreatedTo, arg.Search) {
			items = append(items, u)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	offset := int(arg.Offset)
	if offset >= len(items) {
		return []db.Url{}, nil
	}
	end := offset + int(arg.Limit)
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (f *FakeStore) CountUrlsByUser(ctx context.Context, arg db.CountUrlsByUserParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, u := range f.urls {
		if u.UserID != arg.UserID {
			continue
		}
		if matches(u, arg.IsActive, arg.CreatedFrom, arg.CreatedTo, arg.Search) {
			count++
		}
	}
	return count, nil
}

func (f *FakeStore) UpdateUrl(ctx context.Context, arg db.UpdateUrlParams) (db.Url, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.urls[arg.ShortCode]
	if !ok {
		return db.Url{}, sql.ErrNoRows
	}
	if arg.OriginalUrl.Valid {
		u.OriginalUrl = arg.OriginalUrl.String
	}
	if arg.Title.Valid {
		u.Title = arg.Title
	}
	if arg.IsActive.Valid {
		u.IsActive = arg.IsActive.Bool
	}
	u.UpdatedAt = time.Now()
	f.urls[arg.ShortCode] = u
	return u, nil
}

func (f *FakeStore) DeleteUrl(ctx context.Context, shortCode string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.urls[shortCode]; !ok {
		return 0, nil
	}
	delete(f.urls, shortCode)
	return 1, nil
}

func (f *FakeStore) AddUrlClick(ctx context.Context, arg db.AddUrlClickParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addClickLocked(arg)
}

func (f *FakeStore) addClickLocked(arg db.AddUrlClickParams) error {
	u, ok := f.urls[arg.ShortCode]
	if !ok {
		// UPDATE 不命中任何行不算错误
		return nil
	}
	u.Clicks += arg.AddCount
	u.LastClickedAt = sql.NullTime{Time: time.Now(), Valid: true}
	f.urls[arg.ShortCode] = u
	return nil
}

func (f *FakeStore) AddUrlClicks(ctx context.Context, clicks map[string]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for code, count := range clicks {
		if count == 0 {
			continue
		}
		if err := f.addClickLocked(db.AddUrlClickParams{ShortCode: code, AddCount: count}); err != nil {
			return err
		}
	}
	return nil
}

func (f *FakeStore) CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == arg.Username {
			return db.User{}, &pq.Error{Code: "23505", Constraint: "users_username_key"}
		}
		if u.Email == arg.Email {
			return db.User{}, &pq.Error{Code: "23505", Constraint: "users_email_key"}
		}
	}

	u := db.User{
		ID:           f.nextUserID,
		Username:     arg.Username,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    time.Now(),
	}
	f.nextUserID++
	f.users[u.ID] = u
	return u, nil
}

func (f *FakeStore) GetUserByID(ctx context.Context, id int64) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return db.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *FakeStore) GetUserByUsername(ctx context.Context, username string) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return db.User{}, sql.ErrNoRows
}

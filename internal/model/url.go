package model

import (
	"time"

	db "github.com/mlin93/snaplink/db/sqlc"
)

type CreateURLRequest struct {
	OriginalURL string  `json:"original_url" binding:"required,url"`
	CustomCode  string  `json:"custom_code,omitempty" binding:"omitempty,min=3,max=50"`
	Title       *string `json:"title,omitempty" binding:"omitempty,max=255"`
}

type UpdateURLRequest struct {
	OriginalURL *string `json:"original_url,omitempty" binding:"omitempty,url"`
	Title       *string `json:"title,omitempty" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type URLResponse struct {
	ID            string     `json:"id"`
	ShortCode     string     `json:"short_code"`
	OriginalURL   string     `json:"original_url"`
	Title         *string    `json:"title,omitempty"`
	IsActive      bool       `json:"is_active"`
	Clicks        int64      `json:"clicks"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type URLListResponse struct {
	Urls       []URLResponse `json:"urls"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

type URLStatsResponse struct {
	ShortCode     string     `json:"short_code"`
	OriginalURL   string     `json:"original_url"`
	Clicks        int64      `json:"clicks"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewURLResponse 将数据库记录转换为对外的响应结构
func NewURLResponse(url db.Url) URLResponse {
	rsp := URLResponse{
		ID:          url.ID.String(),
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalUrl,
		IsActive:    url.IsActive,
		Clicks:      url.Clicks,
		CreatedAt:   url.CreatedAt,
		UpdatedAt:   url.UpdatedAt,
	}
	if url.Title.Valid {
		rsp.Title = &url.Title.String
	}
	if url.LastClickedAt.Valid {
		t := url.LastClickedAt.Time
		rsp.LastClickedAt = &t
	}
	return rsp
}

func NewURLStatsResponse(url db.Url) URLStatsResponse {
	rsp := URLStatsResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalUrl,
		Clicks:      url.Clicks,
		IsActive:    url.IsActive,
		CreatedAt:   url.CreatedAt,
	}
	if url.LastClickedAt.Valid {
		t := url.LastClickedAt.Time
		rsp.LastClickedAt = &t
	}
	return rsp
}

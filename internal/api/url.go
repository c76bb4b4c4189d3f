package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mlin93/snaplink/internal/model"
	"github.com/mlin93/snaplink/internal/service"
	"github.com/mlin93/snaplink/internal/util"
)

// POST /api/urls 短链接生成
func (server *Server) CreateURL(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("未认证的请求")))
		return
	}

	var req model.CreateURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errResponse(err))
		return
	}

	createdUrl, err := server.urlService.Create(ctx, user.ID, req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	// 写缓存放到后台协程，避免阻塞主请求
	go func() {
		if err := server.setUrlInCache(context.Background(), &createdUrl); err != nil {
			log.Warn().Err(err).Str("short_code", createdUrl.ShortCode).Msg("failed to set cache after db insert")
		}
	}()

	ctx.JSON(http.StatusCreated, model.NewURLResponse(createdUrl))
}

// GET /:code 公开重定向入口
func (server *Server) RedirectURL(ctx *gin.Context) {
	shortCode := ctx.Param("code")

	// 先检查 Redis 缓存
	cachedUrl, err := server.getUrlFromCache(ctx, shortCode)
	if err == nil {
		if !cachedUrl.IsActive {
			ctx.JSON(http.StatusGone, errResponse(util.ErrURLDisabled))
			return
		}
		// 缓存命中，异步记录点击后直接重定向
		server.recordClick(cachedUrl.ShortCode)
		ctx.Redirect(http.StatusFound, cachedUrl.OriginalUrl)
		return
	}
	if err != redis.Nil {
		// 真正的 Redis 故障只降级为数据库查询
		log.Warn().Err(err).Msg("redis error on resolve, falling back to db")
	}

	resolvedUrl, err := server.urlService.Resolve(ctx, shortCode)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	server.recordClick(resolvedUrl.ShortCode)
	go func() {
		if cacheErr := server.setUrlInCache(context.Background(), &resolvedUrl); cacheErr != nil {
			log.Warn().Err(cacheErr).Str("short_code", resolvedUrl.ShortCode).Msg("failed to backfill cache")
		}
	}()
	ctx.Redirect(http.StatusFound, resolvedUrl.OriginalUrl)
}

// GET /api/urls/:code
func (server *Server) GetURL(ctx *gin.Context) {
	url, err := server.urlService.GetByCode(ctx, ctx.Param("code"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, model.NewURLResponse(url))
}

// GET /api/urls/:code/stats 所有者可见的点击统计
func (server *Server) GetURLStats(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("未认证的请求")))
		return
	}

	url, err := server.urlService.Stats(ctx, ctx.Param("code"), user.ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, model.NewURLStatsResponse(url))
}

// GET /api/urls 当前用户的短链接分页列表
func (server *Server) ListURLs(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("未认证的请求")))
		return
	}

	params, err := parseListParams(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errResponse(err))
		return
	}

	urls, total, err := server.urlService.List(ctx, user.ID, params)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	responses := make([]model.URLResponse, 0, len(urls))
	for _, u := range urls {
		responses = append(responses, model.NewURLResponse(u))
	}

	totalPages := int64(0)
	if total > 0 {
		totalPages = (total + int64(params.PageSize) - 1) / int64(params.PageSize)
	}

	ctx.JSON(http.StatusOK, model.URLListResponse{
		Urls:       responses,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// PATCH /api/urls/:code
func (server *Server) UpdateURL(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("未认证的请求")))
		return
	}

	var req model.UpdateURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errResponse(err))
		return
	}

	shortCode := ctx.Param("code")
	updatedUrl, err := server.urlService.Update(ctx, shortCode, user.ID, req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	// 缓存里可能还留着旧的目标地址或启用状态
	server.invalidateUrlCache(ctx, shortCode)

	ctx.JSON(http.StatusOK, model.NewURLResponse(updatedUrl))
}

// DELETE /api/urls/:code
func (server *Server) DeleteURL(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("未认证的请求")))
		return
	}

	shortCode := ctx.Param("code")
	if err := server.urlService.Delete(ctx, shortCode, user.ID); err != nil {
		abortWithError(ctx, err)
		return
	}

	server.invalidateUrlCache(ctx, shortCode)

	ctx.Status(http.StatusNoContent)
}

func parseListParams(ctx *gin.Context) (service.ListParams, error) {
	params := service.ListParams{Page: 1, PageSize: 20, Search: ctx.Query("q")}

	if raw := ctx.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, errors.New("invalid page parameter")
		}
		params.Page = page
	}
	if raw := ctx.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > 100 {
			return params, errors.New("invalid page_size parameter, must be 1-100")
		}
		params.PageSize = size
	}
	if raw := ctx.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return params, errors.New("invalid is_active parameter")
		}
		params.IsActive = &active
	}
	if raw := ctx.Query("created_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, errors.New("invalid created_from parameter, expected RFC3339")
		}
		params.CreatedFrom = &t
	}
	if raw := ctx.Query("created_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, errors.New("invalid created_to parameter, expected RFC3339")
		}
		params.CreatedTo = &t
	}

	return params, nil
}

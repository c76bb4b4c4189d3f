package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	db "github.com/mlin93/snaplink/db/sqlc"
)

var shortcodePrefix = "snaplink:shortcode:"

// setUrlInCache 把记录以 JSON 写入 Redis Hash，字段名是短码
func (server *Server) setUrlInCache(ctx context.Context, urlData *db.Url) error {
	if urlData == nil || urlData.ShortCode == "" {
		return fmt.Errorf("invalid url data provided")
	}

	payloadBytes, err := json.Marshal(urlData)
	if err != nil {
		return fmt.Errorf("failed to marshal url data: %w", err)
	}

	err = server.rdb.HSet(ctx, shortcodePrefix, urlData.ShortCode, payloadBytes).Err()
	if err != nil {
		return fmt.Errorf("failed to execute HSet on redis: %w", err)
	}

	return nil
}

// getUrlFromCache 从 Redis Hash 中读取记录，未命中返回 redis.Nil
func (server *Server) getUrlFromCache(ctx context.Context, shortCode string) (*db.Url, error) {
	payloadBytes, err := server.rdb.HGet(ctx, shortcodePrefix, shortCode).Bytes()
	if err == redis.Nil {
		// 缓存未命中是正常情况
		return nil, redis.Nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute HGet from redis: %w", err)
	}

	var cachedUrl db.Url
	if err := json.Unmarshal(payloadBytes, &cachedUrl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached url data: %w", err)
	}

	return &cachedUrl, nil
}

// invalidateUrlCache 在更新或删除后移除缓存条目
func (server *Server) invalidateUrlCache(ctx context.Context, shortCode string) {
	server.rdb.HDel(ctx, shortcodePrefix, shortCode)
}

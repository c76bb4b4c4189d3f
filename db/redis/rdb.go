package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ctx = context.Background()

func NewRedisClient(opt *redis.Options) *redis.Client {
	rdb := redis.NewClient(opt)

	pong, err := rdb.Ping(ctx).Result()

	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to redis")
	}

	log.Info().Str("pong", pong).Msg("已连接Redis")
	return rdb
}

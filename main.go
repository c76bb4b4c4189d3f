package main

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisclient "github.com/mlin93/snaplink/db/redis"
	db "github.com/mlin93/snaplink/db/sqlc"
	"github.com/mlin93/snaplink/internal/api"
	"github.com/mlin93/snaplink/internal/auth"
	"github.com/mlin93/snaplink/internal/logger"
	"github.com/mlin93/snaplink/internal/mcpserver"
	"github.com/mlin93/snaplink/internal/service"
	"github.com/mlin93/snaplink/internal/util"
)

func main() {
	logger.Init()

	config, err := util.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	auth.Init(config.AccessTokenSecret, config.RefreshTokenSecret,
		config.AccessTokenDuration, config.RefreshTokenDuration)

	conn, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	if err := conn.Ping(); err != nil {
		log.Fatal().Err(err).Msg("cannot ping db")
	}
	log.Info().Msg("已连接数据库")

	opt, err := redis.ParseURL(config.RedisAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redis address")
	}
	rdb := redisclient.NewRedisClient(opt)

	store := db.NewStore(conn)
	server := api.NewServer(config, store, rdb)

	go server.ClickProcessor()

	if config.MCPServerAddress != "" {
		mcpSrv := mcpserver.New(service.NewURLService(store), config.MCPServiceUserID)
		go func() {
			log.Info().Str("address", config.MCPServerAddress).Msg("starting mcp server")
			if err := mcpserver.NewHTTPServer(mcpSrv).Start(config.MCPServerAddress); err != nil {
				log.Error().Err(err).Msg("mcp server stopped")
			}
		}()
	}

	log.Info().Str("address", config.ServerAddress).Msg("starting http server")
	if err := server.Start(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

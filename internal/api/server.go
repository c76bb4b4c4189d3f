package api

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	db "github.com/mlin93/snaplink/db/sqlc"
	"github.com/mlin93/snaplink/internal/service"
	"github.com/mlin93/snaplink/internal/util"
)

type Server struct {
	config util.Config

	store db.Store

	urlService *service.URLService

	router *gin.Engine

	rdb *redis.Client

	clickChan chan string
}

func NewServer(config util.Config, store db.Store, rdb *redis.Client) *Server {
	size := config.ClickChannelSize
	if size <= 0 {
		size = 10240
	}

	server := &Server{
		config:     config,
		store:      store,
		urlService: service.NewURLService(store),
		rdb:        rdb,
		clickChan:  make(chan string, size),
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/:code", server.RedirectURL)

	api := router.Group("/api")
	api.POST("/users", server.RegisterUser)
	api.POST("/users/login", server.Login)
	api.POST("/tokens/refresh", server.RefreshToken)

	urls := api.Group("/urls")
	urls.Use(server.AuthMiddleware())
	urls.POST("", server.CreateURL)
	urls.GET("", server.ListURLs)
	urls.GET("/:code", server.GetURL)
	urls.GET("/:code/stats", server.GetURLStats)
	urls.PATCH("/:code", server.UpdateURL)
	urls.DELETE("/:code", server.DeleteURL)

	server.router = router
	return server
}

func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

// Router 暴露给 httptest 使用
func (server *Server) Router() http.Handler {
	return server.router
}

func errResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// statusFromError 把服务层错误映射到 HTTP 状态码
func statusFromError(err error) int {
	var customErr *util.CustomError
	if !errors.As(err, &customErr) {
		return http.StatusInternalServerError
	}
	switch customErr.Code {
	case util.ErrInvalidDestination.Code, util.ErrInvalidCodeFormat.Code:
		return http.StatusBadRequest
	case util.ErrCodeAlreadyTaken.Code:
		return http.StatusConflict
	case util.ErrNotFoundInDB.Code:
		return http.StatusNotFound
	case util.ErrURLDisabled.Code:
		return http.StatusGone
	case util.ErrForbidden.Code:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	ctx.JSON(statusFromError(err), errResponse(err))
}

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	db "github.com/mlin93/snaplink/db/sqlc"
	"github.com/mlin93/snaplink/internal/auth"
	"github.com/mlin93/snaplink/internal/util"
)

// LoginRequest 定义了登录请求的结构
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterUserRequest 定义了用户注册时需要的请求体
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse 返回给客户端的用户信息，隐藏了敏感数据
type UserResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(user db.User) UserResponse {
	return UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// RegisterUser 处理用户注册
func (server *Server) RegisterUser(ctx *gin.Context) {
	var req RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errResponse(err))
		return
	}

	hashedPassword, err := util.HashPassword(req.Password)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errResponse(errors.New("处理密码时出错")))
		return
	}

	user, err := server.store.CreateUser(ctx, db.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			ctx.JSON(http.StatusConflict, errResponse(errors.New("用户名或邮箱已被注册")))
			return
		}
		ctx.JSON(http.StatusInternalServerError, errResponse(errors.New("创建用户失败")))
		return
	}

	ctx.JSON(http.StatusCreated, newUserResponse(user))
}

// Login 处理用户登录，返回 Access Token 和 Refresh Token
func (server *Server) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errResponse(err))
		return
	}

	user, err := server.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("用户名或密码错误")))
			return
		}
		ctx.JSON(http.StatusInternalServerError, errResponse(err))
		return
	}

	if err := util.CheckPassword(req.Password, user.PasswordHash); err != nil {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("用户名或密码错误")))
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errResponse(errors.New("生成访问令牌失败")))
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(user.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errResponse(errors.New("生成刷新令牌失败")))
		return
	}

	ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshTokenRequest 定义了刷新令牌接口的请求体
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken 用有效的 Refresh Token 换取新的 Access Token
func (server *Server) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errResponse(err))
		return
	}

	claims, err := auth.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("无效的刷新令牌")))
		return
	}

	// 确认用户依然存在
	user, err := server.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errResponse(errors.New("用户不存在")))
		return
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errResponse(errors.New("生成访问令牌失败")))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access_token": newAccessToken})
}

package handles

import (
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/fragrancepalette/backend/server/common"
	"github.com/fragrancepalette/backend/server/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type AuthHandler struct {
	db     *db.DB
	secret string
}

func NewAuthHandler(database *db.DB, secret string) *AuthHandler {
	return &AuthHandler{db: database, secret: secret}
}

type credentialsReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type userResp struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type authResp struct {
	Token string   `json:"token"`
	User  userResp `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorStrResp(c, "Email and password are required", 400)
		return
	}
	if _, err := h.db.GetUserByEmail(req.Email); err == nil {
		common.ErrorStrResp(c, "User already exists", 400)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		common.ErrorResp(c, err, "Internal server error", 500)
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		common.ErrorResp(c, err, "Internal server error", 500)
		return
	}
	user := &model.User{Email: req.Email, Password: string(hashed)}
	if err := h.db.CreateUser(user); err != nil {
		common.ErrorResp(c, err, "Internal server error", 500)
		return
	}
	token, err := middlewares.SignToken(h.secret, user.ID)
	if err != nil {
		common.ErrorResp(c, err, "Internal server error", 500)
		return
	}
	common.CreatedResp(c, authResp{Token: token, User: userResp{ID: user.ID, Email: user.Email}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorStrResp(c, "Email and password are required", 400)
		return
	}
	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorStrResp(c, "Invalid credentials", 400)
			return
		}
		common.ErrorResp(c, err, "Internal server error", 500)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		common.ErrorStrResp(c, "Invalid credentials", 401)
		return
	}
	token, err := middlewares.SignToken(h.secret, user.ID)
	if err != nil {
		common.ErrorResp(c, err, "Internal server error", 500)
		return
	}
	common.SuccessResp(c, authResp{Token: token, User: userResp{ID: user.ID, Email: user.Email}})
}

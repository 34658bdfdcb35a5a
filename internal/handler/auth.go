package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/service"
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Auth     *service.AuthService
	Sessions *service.SessionAuthority
	Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService, sessions *service.SessionAuthority, log *zap.Logger) *AuthHandler {
	if auth == nil || sessions == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Cfg: cfg, Auth: auth, Sessions: sessions, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=user seller"`
}

type loginReq struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type userResp struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// Register creates the account and signs the caller in via the token cookie.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, tok, err := h.Auth.Register(ctx, service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.Role(req.Role),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}

	setSessionCookie(c, h.Cfg, tok.Token)
	return c.JSON(http.StatusCreated, userResp{Message: "User registered successfully", User: user.Public()})
}

// Login accepts a username or an email as identifier.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, tok, err := h.Auth.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}

	setSessionCookie(c, h.Cfg, tok.Token)
	return c.JSON(http.StatusOK, userResp{Message: "Login successful", User: user.Public()})
}

// Me returns the identity carried by the token.  No store read.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return writeError(c, h.Log, service.ErrMissingToken)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Current user fetched successfully", "user": id})
}

// Logout revokes the exact token that authenticated the request and clears
// the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Sessions.Logout(ctx, middleware.TokenFrom(c)); err != nil {
		return writeError(c, h.Log, err)
	}
	clearSessionCookie(c, h.Cfg)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

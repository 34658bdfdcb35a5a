package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/service"
)

// ProfileHandler serves /users/me and its addresses.  All routes sit behind
// the session middleware.
type ProfileHandler struct {
	Profiles *service.ProfileService
	Log      *zap.Logger
}

func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger) *ProfileHandler {
	if profiles == nil {
		panic("nil ProfileService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{Profiles: profiles, Log: log}
}

type updateUserReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username" validate:"omitempty,min=3"`
}

type addAddressReq struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required,zip6"`
	Country   string `json:"country" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

type updateAddressReq struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip" validate:"omitempty,zip6"`
	Country   string `json:"country"`
	IsDefault *bool  `json:"isDefault"`
}

func (h *ProfileHandler) userID(c echo.Context) (string, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return "", service.ErrMissingToken
	}
	return id.ID, nil
}

// GetUser reads the stored profile, which may be fresher than the token.
func (h *ProfileHandler) GetUser(c echo.Context) error {
	uid, err := h.userID(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Profiles.GetProfile(ctx, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, userResp{Message: "User details fetched successfully", User: u.Public()})
}

// UpdateUser patches name and username.  The session token keeps the old
// values until it is reissued at the next login.
func (h *ProfileHandler) UpdateUser(c echo.Context) error {
	uid, err := h.userID(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	var req updateUserReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Profiles.UpdateProfile(ctx, uid, service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, userResp{Message: "User updated successfully", User: u.Public()})
}

func (h *ProfileHandler) AddAddress(c echo.Context) error {
	uid, err := h.userID(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	var req addAddressReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	addrs, err := h.Profiles.AddAddress(ctx, uid, service.AddressInput{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Country: req.Country,
	}, req.IsDefault)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Address added successfully", "addresses": addrs})
}

func (h *ProfileHandler) UpdateAddress(c echo.Context) error {
	uid, err := h.userID(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	var req updateAddressReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	addrs, err := h.Profiles.UpdateAddress(ctx, uid, c.Param("addressId"), service.AddressPatch{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Address updated successfully", "addresses": addrs})
}

// DeleteAddress succeeds for unknown ids too.
func (h *ProfileHandler) DeleteAddress(c echo.Context) error {
	uid, err := h.userID(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Profiles.DeleteAddress(ctx, uid, c.Param("addressId")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Address deleted successfully"})
}

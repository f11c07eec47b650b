// Package auth serves /api/auth: register, login and profile update.
package auth

import (
	"context"
	"errors"
	"net/http"

	"second-chance/internal/api"
	"second-chance/internal/logging"
	"second-chance/internal/model"
	"second-chance/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	msgEmailExists    = "Email id already exists"
	msgUserNotFound   = "User not found"
	msgInvalidPass    = "Invalid password"
	msgInternalError  = "Internal server error"
	msgInvalidRequest = "invalid request body"
	msgPasswordLength = "password must be at most 72 bytes"
)

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Update(ctx context.Context, email, name string) (string, error)
}

func internalError(c echo.Context, log logging.Logger, op string, err error) error {
	log.Error(c.Request().Context(), op+" failed", "error", err)
	return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: msgInternalError})
}

// RegisterHandler creates an account
// @Summary     Register
// @Description Creates an account and returns a token. Only email, password and name are read from the body.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.RegisterRequest true "new account"
// @Success     201  {object} api.RegisterResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/register [post]
func RegisterHandler(svc AccountService, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msgInvalidRequest})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		}

		res, err := svc.Register(c.Request().Context(), service.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		})
		if err != nil {
			if errors.Is(err, model.ErrDuplicateEmail) {
				log.Warn(c.Request().Context(), "register with existing email")
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msgEmailExists})
			}
			if errors.Is(err, model.ErrValidation) {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msgPasswordLength})
			}
			return internalError(c, log, "register", err)
		}
		return c.JSON(http.StatusCreated, api.RegisterResponse{Token: res.Token, Email: res.Email})
	}
}

// LoginHandler checks credentials and returns a token
// @Summary     Login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "credentials"
// @Success     200  {object} api.LoginResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/login [post]
func LoginHandler(svc AccountService, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msgInvalidRequest})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		}

		res, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, model.ErrNotFound):
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Error: msgUserNotFound})
		case errors.Is(err, model.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: msgInvalidPass})
		case err != nil:
			return internalError(c, log, "login", err)
		}
		return c.JSON(http.StatusOK, api.LoginResponse{Token: res.Token, Name: res.Name, Email: res.Email})
	}
}

// UpdateHandler changes the account's display name
// @Summary     Update profile
// @Description Sets the name of the account identified by email (body field or email header) and returns a fresh token.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body  body     api.UpdateAccountRequest true  "profile"
// @Param       email header   string                   false "account email when not in the body"
// @Success     200   {object} api.UpdateAccountResponse
// @Failure     400   {object} api.ErrorResponse
// @Failure     401   {object} api.ErrorResponse
// @Failure     404   {object} api.ErrorResponse
// @Failure     500   {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /auth/update [put]
func UpdateHandler(svc AccountService, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UpdateAccountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msgInvalidRequest})
		}
		if req.Email == "" {
			req.Email = c.Request().Header.Get("email")
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		}

		token, err := svc.Update(c.Request().Context(), req.Email, req.Name)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Error: msgUserNotFound})
			}
			return internalError(c, log, "update account", err)
		}
		return c.JSON(http.StatusOK, api.UpdateAccountResponse{Token: token})
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	"github.com/ziotom78/instrumentdb/pkg/auth"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// LoginHandler exchanges credentials for a bearer token.
func LoginHandler(registry *auth.Registry, issuer *auth.Issuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		request := LoginRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&request); err != nil {
			return apierr.BadRequest("unparsable request body", err)
		}

		if !registry.Verify(request.Username, request.Password) {
			return apierr.Unauthorized("wrong username or password", nil)
		}
		token, err := issuer.Issue(request.Username)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, LoginResponse{Token: token})
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountFacade is the account API the handlers expose over HTTP.
type AccountFacade interface {
	AuthenticateUser(ctx context.Context, email, password string) core.AuthResult
	DeleteUserAccount(ctx context.Context, user *core.UserHandle) core.AuthResult
	DeleteAccountWithCredentials(ctx context.Context, email, password string) core.AuthResult
}

// CredentialsRequest is the JSON body of credential-based endpoints
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountHandler struct {
	accounts AccountFacade
	logger   *zap.Logger
}

func NewAccountHandler(accounts AccountFacade, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Login godoc
//
//	@Summary	Authenticate with email and password
//	@Tags		Account
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CredentialsRequest	true	"Credentials"
//	@Success	200		{object}	core.AuthResult
//	@Failure	400		{object}	core.AuthResult
//	@Router		/api/v1/auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}
	respond(c, h.accounts.AuthenticateUser(c.Request.Context(), req.Email, req.Password))
}

// DeleteAccount godoc
//
//	@Summary	Delete the account owning the bearer ID token
//	@Tags		Account
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	core.AuthResult
//	@Failure	400	{object}	core.AuthResult
//	@Failure	401	{object}	core.AuthResult
//	@Router		/api/v1/account [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	user := &core.UserHandle{IDToken: c.GetString(middleware.ContextKeyIDToken)}
	respond(c, h.accounts.DeleteUserAccount(c.Request.Context(), user))
}

// DeleteAccountWithCredentials godoc
//
//	@Summary	Authenticate and delete the account in one step
//	@Tags		Account
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CredentialsRequest	true	"Credentials"
//	@Success	200		{object}	core.AuthResult
//	@Failure	400		{object}	core.AuthResult
//	@Router		/api/v1/account/delete [post]
func (h *AccountHandler) DeleteAccountWithCredentials(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}
	respond(c, h.accounts.DeleteAccountWithCredentials(c.Request.Context(), req.Email, req.Password))
}

func (h *AccountHandler) bindCredentials(c *gin.Context) (*CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, core.AuthResult{
			Success: false,
			Message: "Invalid request body",
		})
		return nil, false
	}
	return &req, true
}

// respond writes the result with 200 on success and 400 otherwise.
func respond(c *gin.Context, result core.AuthResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/auth"
	"wallet-server/metrics"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !auth.ValidEmail(req.Email) {
		h.rejectAuth(c, "login", apierr.InvalidRequest("invalid email"))
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		h.rejectAuth(c, "login", apierr.InvalidRequest("password too short"))
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.rejectAuth(c, "login", apierr.Internal(err))
		return
	}
	// unknown email and wrong password look the same to the caller
	if user == nil {
		h.rejectAuth(c, "login", apierr.InvalidCredentials())
		return
	}
	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		h.rejectAuth(c, "login", apierr.Internal(err))
		return
	}
	if !ok {
		h.rejectAuth(c, "login", apierr.InvalidCredentials())
		return
	}

	pair, err := h.issuer.IssuePair(user.ID, user.Email)
	if err != nil {
		h.rejectAuth(c, "login", apierr.Internal(err))
		return
	}
	metrics.RecordAuth("login", "ok")
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		h.rejectAuth(c, "refresh", apierr.InvalidRequest("missing refresh_token"))
		return
	}

	claims, err := h.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		h.rejectAuth(c, "refresh", apierr.InvalidToken("invalid or expired refresh token"))
		return
	}

	if h.revoker != nil {
		fresh, err := h.revoker.Revoke(c.Request.Context(), claims.ID, remaining(claims))
		if err != nil {
			h.rejectAuth(c, "refresh", apierr.Internal(err))
			return
		}
		if !fresh {
			h.rejectAuth(c, "refresh", apierr.InvalidToken("refresh token already used"))
			return
		}
	}

	pair, err := h.issuer.IssuePair(claims.UID, claims.Subject)
	if err != nil {
		h.rejectAuth(c, "refresh", apierr.Internal(err))
		return
	}
	metrics.RecordAuth("refresh", "ok")
	c.JSON(http.StatusOK, pair)
}

// Logout revokes the given refresh token when a revocation store is
// configured. It always answers 204 so it reveals nothing about the token.
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	if h.revoker != nil {
		if claims, err := h.issuer.VerifyRefresh(req.RefreshToken); err == nil {
			if _, err := h.revoker.Revoke(c.Request.Context(), claims.ID, remaining(claims)); err != nil {
				h.log.WithError(err).Warn("revoke refresh token")
			}
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) rejectAuth(c *gin.Context, kind string, e *apierr.Error) {
	metrics.RecordAuth(kind, e.Code)
	apierr.Abort(c, e)
}

func remaining(claims *auth.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}

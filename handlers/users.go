package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/auth"
	"wallet-server/models"
	"wallet-server/repository"
)

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// userResponse is the only shape a user leaves the server in.
type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !auth.ValidEmail(req.Email) {
		apierr.Abort(c, apierr.InvalidRequest("invalid email"))
		return
	}

	ctx := c.Request.Context()
	if existing, err := h.store.GetUserByUsername(ctx, req.Username); err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	} else if existing != nil {
		apierr.Abort(c, apierr.Conflict("username already exists"))
		return
	}
	if existing, err := h.store.GetUserByEmail(ctx, req.Email); err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	} else if existing != nil {
		apierr.Abort(c, apierr.Conflict("email already exists"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	user, err := h.store.CreateUser(ctx, req.Username, req.Email, hash)
	if err != nil {
		// lost a race with a concurrent create
		apierr.Abort(c, classify(err, "username or email already exists"))
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	user, err := h.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if user == nil {
		apierr.Abort(c, apierr.NotFound("user not found"))
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetUserByID(ctx, id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if user == nil {
		apierr.Abort(c, apierr.NotFound("user not found"))
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
		if !auth.ValidEmail(email) {
			apierr.Abort(c, apierr.InvalidRequest("invalid email"))
			return
		}
		other, err := h.store.GetUserByEmail(ctx, *req.Email)
		if err != nil {
			apierr.Abort(c, apierr.Internal(err))
			return
		}
		if other != nil && other.ID != id {
			apierr.Abort(c, apierr.Conflict("email already exists"))
			return
		}
	}
	if req.Username != nil {
		if *req.Username == "" {
			apierr.Abort(c, apierr.InvalidRequest("username must not be empty"))
			return
		}
		other, err := h.store.GetUserByUsername(ctx, *req.Username)
		if err != nil {
			apierr.Abort(c, apierr.Internal(err))
			return
		}
		if other != nil && other.ID != id {
			apierr.Abort(c, apierr.Conflict("username already exists"))
			return
		}
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			apierr.Abort(c, apierr.Internal(err))
			return
		}
		if _, err := h.store.UpdateUserPassword(ctx, id, hash); err != nil {
			apierr.Abort(c, apierr.Internal(err))
			return
		}
	}

	user, err = h.store.UpdateUser(ctx, id, repository.UserPatch{Username: req.Username, Email: req.Email})
	if err != nil {
		apierr.Abort(c, classify(err, "username or email already exists"))
		return
	}
	if user == nil {
		apierr.Abort(c, apierr.NotFound("user not found"))
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	n, err := h.store.DeleteUser(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	if n == 0 {
		apierr.Abort(c, apierr.NotFound("user not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

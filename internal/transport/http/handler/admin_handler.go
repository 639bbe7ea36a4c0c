package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deforest-api/internal/core/cache"
	"deforest-api/internal/domain"
	"deforest-api/internal/service"
	"deforest-api/internal/transport/http/middleware"
	resp "deforest-api/internal/transport/http/response"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

type AdminHandler struct {
	svc   *service.AdminService
	cache *cache.Cache // nil when Redis is not configured
	log   *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, c *cache.Cache, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, cache: c, log: log}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers()
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Error fetching users"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("").
		With("users", users).
		With("total", len(users)))
}

// DELETE /api/admin/users/:userId
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	targetID := c.Param("userId")

	err := h.svc.DeleteUser(claims.UID, targetID)
	switch {
	case errors.Is(err, domain.ErrSelfDelete):
		c.JSON(http.StatusBadRequest, resp.Fail("Cannot delete your own account"))
	case errors.Is(err, domain.ErrAdminProtected):
		c.JSON(http.StatusForbidden, resp.Fail("Cannot delete admin accounts"))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, resp.Fail("User not found"))
	case err != nil:
		h.log.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Error deleting user"))
	default:
		h.cache.Invalidate(c.Request.Context(), statsCacheKey)
		c.JSON(http.StatusOK, resp.OK("User deleted successfully"))
	}
}

// PATCH /api/admin/users/:userId/promote
func (h *AdminHandler) PromoteUser(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	targetID := c.Param("userId")

	u, err := h.svc.PromoteUser(claims.UID, targetID)
	switch {
	case errors.Is(err, domain.ErrAlreadyAdmin):
		c.JSON(http.StatusBadRequest, resp.Fail("User already has the admin role"))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, resp.Fail("User not found"))
	case err != nil:
		h.log.Error("promote user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Error promoting user"))
	default:
		h.cache.Invalidate(c.Request.Context(), statsCacheKey)
		c.JSON(http.StatusOK, resp.OK("User promoted to admin").With("user", u.Public()))
	}
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := cache.GetOrLoadJSON(h.cache, c.Request.Context(), statsCacheKey, statsCacheTTL,
		func(context.Context) (*service.Stats, error) { return h.svc.Stats() })
	if err != nil {
		h.log.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Error fetching admin statistics"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("").With("stats", stats))
}

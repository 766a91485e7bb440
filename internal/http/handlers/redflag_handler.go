package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketbay/marketbay-backend/internal/dto"
	"github.com/marketbay/marketbay-backend/internal/http/handlers/common"
	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/repository"
	"github.com/marketbay/marketbay-backend/internal/service"
)

// RedFlagHandler обслуживает триаж красных флагов (админская зона).
type RedFlagHandler struct {
	svc *service.RedFlagService
}

func NewRedFlagHandler(s *service.RedFlagService) *RedFlagHandler {
	return &RedFlagHandler{svc: s}
}

// RaiseFlag POST /api/admin/red-flags
func (h *RedFlagHandler) RaiseFlag(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.RaiseRedFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	flag, err := h.svc.RaiseFlag(c.Request.Context(), service.RaiseFlagInput{
		Type:            req.Type,
		Severity:        req.Severity,
		FlaggedUserID:   req.FlaggedUserID,
		FlaggedUserRole: req.FlaggedUserRole,
		RelatedUserID:   req.RelatedUserID,
		RelatedUserRole: req.RelatedUserRole,
		TriggerSource:   models.RedFlagSourceAdmin,
		ReporterID:      &adminID,
		OrderID:         req.OrderID,
		PaymentID:       req.PaymentID,
		Title:           req.Title,
		Description:     req.Description,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, flag)
}

// GetFlag GET /api/admin/red-flags/:id
func (h *RedFlagHandler) GetFlag(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	flag, err := h.svc.GetFlag(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

// ListFlags GET /api/admin/red-flags
func (h *RedFlagHandler) ListFlags(c *gin.Context) {
	filter := repository.RedFlagFilter{
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
		Type:     c.Query("type"),
	}
	filter.Limit, filter.Offset = common.GetPagination(c)

	if raw := c.Query("flagged_user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "flagged_user_id должен быть валидным UUID")
			return
		}
		filter.FlaggedUserID = &id
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "assigned_to должен быть валидным UUID")
			return
		}
		filter.AssignedTo = &id
	}

	flags, err := h.svc.ListFlags(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, flags)
}

// AssignFlag POST /api/admin/red-flags/:id/assign
func (h *RedFlagHandler) AssignFlag(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	flag, err := h.svc.AssignFlag(c.Request.Context(), id, adminID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

// UpdateStatus PATCH /api/admin/red-flags/:id/status
func (h *RedFlagHandler) UpdateStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateRedFlagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	flag, err := h.svc.UpdateFlagStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

// BulkUpdateStatus PATCH /api/admin/red-flags/bulk-status
func (h *RedFlagHandler) BulkUpdateStatus(c *gin.Context) {
	var req dto.BulkUpdateRedFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.svc.BulkUpdateStatus(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveFlag POST /api/admin/red-flags/:id/resolve
func (h *RedFlagHandler) ResolveFlag(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveRedFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	flag, err := h.svc.ResolveFlag(c.Request.Context(), id, adminID, req.Status, req.Action, req.Details)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

// AddNote POST /api/admin/red-flags/:id/notes
func (h *RedFlagHandler) AddNote(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RedFlagNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	note, err := h.svc.AddNote(c.Request.Context(), id, adminID, req.Note)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListNotes GET /api/admin/red-flags/:id/notes
func (h *RedFlagHandler) ListNotes(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	notes, err := h.svc.ListNotes(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// GetStats GET /api/admin/red-flags/stats
func (h *RedFlagHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetFlagStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

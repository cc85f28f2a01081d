package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openvault/openvault/internal/pkg/errcode"
	"github.com/openvault/openvault/internal/pkg/response"
	"github.com/openvault/openvault/internal/service"
)

// BeaconHandler ingests the per-page reading telemetry posted by the
// document viewer while a page is open.
type BeaconHandler struct {
	sessions   *service.SessionService
	engagement *service.EngagementService
}

func NewBeaconHandler(sessions *service.SessionService, engagement *service.EngagementService) *BeaconHandler {
	return &BeaconHandler{sessions: sessions, engagement: engagement}
}

type beaconRequest struct {
	LinkID          string `json:"link_id"`
	DocumentID      string `json:"document_id"`
	PageNumber      int    `json:"page_number"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (h *BeaconHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req beaconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.LinkID == "" || req.DocumentID == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "link_id and document_id are required")
		return
	}

	entry, err := h.sessions.Validate(ctx, req.LinkID, sessionCookie(c, req.LinkID))
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.engagement.RecordPageView(ctx, entry.ID, req.DocumentID, req.PageNumber, req.DurationSeconds); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

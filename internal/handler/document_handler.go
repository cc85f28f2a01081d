package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/openvault/openvault/internal/filestore"
	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/errcode"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
	"github.com/openvault/openvault/internal/pkg/response"
	"github.com/openvault/openvault/internal/service"
)

const pdfMimeType = "application/pdf"

// DocumentHandler is the only path through which document bytes leave the
// system. Both gateways re-check availability, session and the agreement
// gate on every request; a cookie alone proves nothing about the link still
// being usable.
type DocumentHandler struct {
	links      *service.LinkService
	sessions   *service.SessionService
	nda        *service.NdaService
	scope      *service.ScopeService
	rooms      *service.RoomService
	engagement *service.EngagementService
	stamper    *service.WatermarkStamper
	store      filestore.Store
}

type DocumentHandlerDeps struct {
	Links      *service.LinkService
	Sessions   *service.SessionService
	Nda        *service.NdaService
	Scope      *service.ScopeService
	Rooms      *service.RoomService
	Engagement *service.EngagementService
	Stamper    *service.WatermarkStamper
	Store      filestore.Store
}

func NewDocumentHandler(deps DocumentHandlerDeps) *DocumentHandler {
	return &DocumentHandler{
		links:      deps.Links,
		sessions:   deps.Sessions,
		nda:        deps.Nda,
		scope:      deps.Scope,
		rooms:      deps.Rooms,
		engagement: deps.Engagement,
		stamper:    deps.Stamper,
		store:      deps.Store,
	}
}

// authorize runs the shared gate sequence for both delivery endpoints and
// returns the link, the session row and the requested document. An unknown
// link id reports unauthorized rather than not-found.
func (h *DocumentHandler) authorize(c *gin.Context) (*model.SharedLink, *model.LinkAccessLog, *model.Document, bool) {
	ctx := c.Request.Context()

	linkID := c.Query("link_id")
	if linkID == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "link_id is required")
		return nil, nil, nil, false
	}

	link, err := h.links.ByID(ctx, linkID)
	if err != nil {
		if appErr.IsNotFound(err) {
			handleError(c, appErr.ErrUnauthorized)
		} else {
			handleError(c, err)
		}
		return nil, nil, nil, false
	}
	if availability := service.EvaluateAvailability(link, false, time.Now()); !availability.Allowed {
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, availability.Message)
		return nil, nil, nil, false
	}

	entry, err := h.sessions.Validate(ctx, link.ID, sessionCookie(c, link.ID))
	if err != nil {
		handleError(c, err)
		return nil, nil, nil, false
	}

	pending, _, err := h.nda.Pending(ctx, link, entry.ViewerEmail)
	if err != nil {
		handleError(c, err)
		return nil, nil, nil, false
	}
	if pending {
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "NDA acceptance required.")
		return nil, nil, nil, false
	}

	docs, err := h.scope.AccessibleDocuments(ctx, link)
	if err != nil {
		handleError(c, err)
		return nil, nil, nil, false
	}
	docID := c.Param("doc_id")
	for _, doc := range docs {
		if doc.ID == docID {
			return link, entry, doc, true
		}
	}
	// Out-of-scope and nonexistent documents are indistinguishable.
	handleError(c, appErr.ErrForbidden)
	return nil, nil, nil, false
}

func (h *DocumentHandler) load(c *gin.Context, doc *model.Document) ([]byte, bool) {
	rc, err := h.store.Open(c.Request.Context(), doc.StoragePath)
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("open document blob failed",
			zap.String("document_id", doc.ID), zap.Error(err))
		handleError(c, appErr.ErrNotFound)
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		handleError(c, fmt.Errorf("read document blob: %w", err))
		return nil, false
	}
	return data, true
}

// Stream delivers a document for in-browser viewing. PDFs get the short
// viewer-identity watermark baked in; other types pass through untouched.
func (h *DocumentHandler) Stream(c *gin.Context) {
	link, entry, doc, ok := h.authorize(c)
	if !ok {
		return
	}
	data, ok := h.load(c, doc)
	if !ok {
		return
	}

	if doc.MimeType == pdfMimeType {
		ipAddress, _ := clientMeta(c)
		identity := service.StreamWatermarkText(viewerIdentity(c, link.ID, entry.ViewerEmail), ipAddress, time.Now())
		stamped, err := h.stamper.Stamp(data, identity)
		if err != nil {
			handleError(c, err)
			return
		}
		data = stamped
	}

	c.Header("Cache-Control", "no-store, max-age=0")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", sanitizeFilename(doc.Filename)))
	c.Data(http.StatusOK, doc.MimeType, data)
}

// Download delivers a document as an attachment. It is refused outright when
// the link was created without download permission, and PDFs carry the full
// identity line including room and timestamp.
func (h *DocumentHandler) Download(c *gin.Context) {
	link, entry, doc, ok := h.authorize(c)
	if !ok {
		return
	}
	if !link.AllowDownload {
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "Downloads are disabled for this link.")
		return
	}
	data, ok := h.load(c, doc)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	ipAddress, userAgent := clientMeta(c)
	if doc.MimeType == pdfMimeType {
		roomName := h.rooms.Name(ctx, link.RoomID)
		identity := service.DownloadWatermarkText(viewerIdentity(c, link.ID, entry.ViewerEmail), ipAddress, time.Now(), roomName, doc.Filename)
		stamped, err := h.stamper.Stamp(data, identity)
		if err != nil {
			handleError(c, err)
			return
		}
		data = stamped
	}

	if err := h.engagement.RecordDownload(ctx, link.ID, doc.ID, entry.ViewerEmail, entry.SessionTokenHash, ipAddress, userAgent); err != nil {
		handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store, max-age=0")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(doc.Filename)))
	c.Data(http.StatusOK, doc.MimeType, data)
}

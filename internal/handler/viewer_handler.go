package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/openvault/openvault/internal/mail"
	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/errcode"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
	"github.com/openvault/openvault/internal/pkg/response"
	"github.com/openvault/openvault/internal/pkg/token"
	"github.com/openvault/openvault/internal/ratelimit"
	"github.com/openvault/openvault/internal/service"
)

const magicLinkRateKeyPrefix = "magic-link:"

// ViewerHandler serves the unauthenticated half of the product: everything a
// link recipient touches between pasting the slug into a browser and reading
// documents.
type ViewerHandler struct {
	links    *service.LinkService
	magic    *service.MagicLinkService
	sessions *service.SessionService
	nda      *service.NdaService
	scope    *service.ScopeService
	audit    *service.AuditService
	notify   *service.NotifyService
	limiter  ratelimit.Limiter
	sender   mail.Sender

	baseURL         string
	secureCookies   bool
	magicLinkMax    int
	magicLinkWindow time.Duration
}

type ViewerHandlerDeps struct {
	Links    *service.LinkService
	Magic    *service.MagicLinkService
	Sessions *service.SessionService
	Nda      *service.NdaService
	Scope    *service.ScopeService
	Audit    *service.AuditService
	Notify   *service.NotifyService
	Limiter  ratelimit.Limiter
	Sender   mail.Sender

	BaseURL         string
	SecureCookies   bool
	MagicLinkMax    int
	MagicLinkWindow time.Duration
}

func NewViewerHandler(deps ViewerHandlerDeps) *ViewerHandler {
	return &ViewerHandler{
		links:           deps.Links,
		magic:           deps.Magic,
		sessions:        deps.Sessions,
		nda:             deps.Nda,
		scope:           deps.Scope,
		audit:           deps.Audit,
		notify:          deps.Notify,
		limiter:         deps.Limiter,
		sender:          deps.Sender,
		baseURL:         deps.BaseURL,
		secureCookies:   deps.SecureCookies,
		magicLinkMax:    deps.MagicLinkMax,
		magicLinkWindow: deps.MagicLinkWindow,
	}
}

type linkInfo struct {
	Name          string `json:"name"`
	Scope         string `json:"scope"`
	RequireEmail  bool   `json:"require_email"`
	RequireNda    bool   `json:"require_nda"`
	AllowDownload bool   `json:"allow_download"`
}

type probeResponse struct {
	Link          linkInfo `json:"link"`
	Available     bool     `json:"available"`
	Reason        string   `json:"reason,omitempty"`
	Message       string   `json:"message,omitempty"`
	Authenticated bool     `json:"authenticated"`
	NdaPending    bool     `json:"nda_pending"`
}

// Probe describes the landing-page state for a slug: whether the link is
// usable, whether the caller already holds a valid session, and whether the
// agreement gate still blocks. An unknown slug is a plain 404 with no hint of
// whether it ever existed.
func (h *ViewerHandler) Probe(c *gin.Context) {
	ctx := c.Request.Context()
	link, err := h.links.BySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}

	result := probeResponse{
		Link: linkInfo{
			Name:          link.Name,
			Scope:         link.Scope,
			RequireEmail:  link.RequireEmail,
			RequireNda:    link.RequireNDA,
			AllowDownload: link.AllowDownload,
		},
	}

	availability := service.EvaluateAvailability(link, true, time.Now())
	result.Available = availability.Allowed
	result.Reason = availability.Code
	result.Message = availability.Message

	if presented := sessionCookie(c, link.ID); presented != "" {
		entry, err := h.sessions.Validate(ctx, link.ID, presented)
		if err == nil {
			result.Authenticated = true
			pending, _, err := h.nda.Pending(ctx, link, entry.ViewerEmail)
			if err != nil {
				handleError(c, err)
				return
			}
			result.NdaPending = pending
		}
	}
	response.Success(c, result)
}

type requestLinkRequest struct {
	Email string `json:"email"`
}

// RequestLink issues a magic link and mails it to the viewer. The response is
// the same whether or not the mail could be matched to anything, except for
// throttling and link availability, which are surfaced.
func (h *ViewerHandler) RequestLink(c *gin.Context) {
	ctx := c.Request.Context()

	var req requestLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	viewerEmail := service.NormalizeEmail(req.Email)
	if !validEmail(viewerEmail) {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "a valid email address is required")
		return
	}

	link, err := h.links.BySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if availability := service.EvaluateAvailability(link, true, time.Now()); !availability.Allowed {
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, availability.Message)
		return
	}

	allowed, err := h.limiter.Allow(ctx, magicLinkRateKeyPrefix+viewerEmail, h.magicLinkMax, h.magicLinkWindow)
	if err != nil {
		handleError(c, err)
		return
	}
	if !allowed {
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, "Too many requests. Please try again later.")
		return
	}

	raw, err := h.magic.Issue(ctx, link, viewerEmail)
	if err != nil {
		handleError(c, err)
		return
	}

	authURL := fmt.Sprintf("%s/api/v1/v/%s/auth?token=%s&email=%s",
		h.baseURL, url.PathEscape(link.Slug), url.QueryEscape(raw), url.QueryEscape(viewerEmail))
	linkLabel := link.Name
	if linkLabel == "" {
		linkLabel = "a shared document link"
	}
	subject := "Your secure access link"
	html := fmt.Sprintf(
		"<p>You requested access to %s.</p><p><a href=%q>Open documents</a></p><p>This link is valid for 15 minutes and can be used once.</p>",
		linkLabel, authURL)
	text := fmt.Sprintf("You requested access to %s.\n\n%s\n\nThis link is valid for 15 minutes and can be used once.\n", linkLabel, authURL)
	if err := h.sender.Send(viewerEmail, subject, html, text); err != nil {
		logutil.GetLogger(ctx).Error("send magic link failed", zap.String("link_id", link.ID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "could not send email")
		return
	}

	if err := h.audit.Write(ctx, service.AuditInput{
		RoomID:     link.RoomID,
		ActorType:  model.ActorTypeViewer,
		Action:     model.AuditMagicLinkRequested,
		TargetType: "shared_link",
		TargetID:   &link.ID,
		Metadata: map[string]interface{}{
			"viewer_email": viewerEmail,
			"slug":         link.Slug,
		},
	}); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Check your email for a secure sign-in link."})
}

type authResponse struct {
	Authenticated bool   `json:"authenticated"`
	NdaPending    bool   `json:"nda_pending"`
	FirstOpen     bool   `json:"first_open"`
	Message       string `json:"message,omitempty"`
}

// AuthCallback consumes a magic-link token, opens a viewer session and sets
// the scoped cookies. Every token failure collapses into one 401; the caller
// learns nothing about whether the token was wrong, expired or already spent.
func (h *ViewerHandler) AuthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	link, err := h.links.BySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if availability := service.EvaluateAvailability(link, true, time.Now()); !availability.Allowed {
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, availability.Message)
		return
	}

	viewerEmail := service.NormalizeEmail(c.Query("email"))
	ok, err := h.magic.Consume(ctx, link.ID, viewerEmail, c.Query("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !ok {
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized,
			"This sign-in link is invalid, expired, or already used.")
		return
	}

	ipAddress, userAgent := clientMeta(c)
	created, err := h.sessions.Create(ctx, link, viewerEmail, ipAddress, userAgent)
	if err != nil {
		handleError(c, err)
		return
	}
	setViewerCookies(c, link.ID, created.Token, viewerEmail, h.secureCookies)

	if err := h.links.RecordView(ctx, link.ID); err != nil {
		handleError(c, err)
		return
	}

	if created.IsFirstOpen {
		if err := h.notify.FirstOpen(ctx, link, viewerEmail); err != nil {
			// The session is already established; notification failures
			// must not bounce the viewer.
			logutil.GetLogger(ctx).Warn("first-open notification failed",
				zap.String("link_id", link.ID), zap.Error(err))
		}
	}

	pending, _, err := h.nda.Pending(ctx, link, viewerEmail)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, authResponse{
		Authenticated: true,
		NdaPending:    pending,
		FirstOpen:     created.IsFirstOpen,
	})
}

type ndaResponse struct {
	Title        string `json:"title"`
	Version      int    `json:"version"`
	Body         string `json:"body"`
	BodyHTML     string `json:"body_html"`
	TemplateHash string `json:"template_hash"`
	Pending      bool   `json:"pending"`
}

// ShowNda returns the room's active agreement template for an authenticated
// viewer.
func (h *ViewerHandler) ShowNda(c *gin.Context) {
	ctx := c.Request.Context()

	link, err := h.links.BySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if availability := service.EvaluateAvailability(link, false, time.Now()); !availability.Allowed {
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, availability.Message)
		return
	}

	entry, err := h.sessions.Validate(ctx, link.ID, sessionCookie(c, link.ID))
	if err != nil {
		handleError(c, err)
		return
	}

	pending, template, err := h.nda.Pending(ctx, link, entry.ViewerEmail)
	if err != nil {
		handleError(c, err)
		return
	}
	if template == nil {
		handleError(c, appErr.ErrNotFound)
		return
	}
	bodyHTML, err := h.nda.RenderBody(template)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, ndaResponse{
		Title:        template.Title,
		Version:      template.Version,
		Body:         template.Body,
		BodyHTML:     bodyHTML,
		TemplateHash: template.TemplateHash,
		Pending:      pending,
	})
}

// AcceptNda records acceptance of the current active template for the
// session's viewer. Accepting an already-satisfied gate is a no-op.
func (h *ViewerHandler) AcceptNda(c *gin.Context) {
	ctx := c.Request.Context()

	link, err := h.links.BySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if availability := service.EvaluateAvailability(link, false, time.Now()); !availability.Allowed {
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, availability.Message)
		return
	}

	entry, err := h.sessions.Validate(ctx, link.ID, sessionCookie(c, link.ID))
	if err != nil {
		handleError(c, err)
		return
	}

	ipAddress, userAgent := clientMeta(c)
	accepted, template, err := h.nda.Accept(ctx, link, entry.ViewerEmail, ipAddress, userAgent)
	if err != nil {
		handleError(c, err)
		return
	}

	if accepted {
		if err := h.audit.Write(ctx, service.AuditInput{
			RoomID:     link.RoomID,
			ActorType:  model.ActorTypeViewer,
			Action:     model.AuditNdaAccepted,
			TargetType: "nda_template",
			TargetID:   &template.ID,
			Metadata: map[string]interface{}{
				"viewer_email":  entry.ViewerEmail,
				"link_id":       link.ID,
				"template_hash": template.TemplateHash,
			},
		}); err != nil {
			handleError(c, err)
			return
		}
	}
	// Refresh the identity cookie so the watermark identity survives as long
	// as the session does.
	maxAge := int(service.SessionTTL / time.Second)
	c.SetCookie(service.IdentityCookieName(link.ID), token.EncodeEmail(entry.ViewerEmail), maxAge, "/", "", h.secureCookies, true)
	response.Success(c, gin.H{"accepted": true, "nda_pending": false})
}

type documentInfo struct {
	ID       string  `json:"id"`
	FolderID *string `json:"folder_id"`
	Filename string  `json:"filename"`
	MimeType string  `json:"mime_type"`
	Ctime    int64   `json:"ctime"`
}

// Documents lists what the link's scope grants to an authenticated viewer who
// has cleared the agreement gate. Storage paths never leave the server.
func (h *ViewerHandler) Documents(c *gin.Context) {
	ctx := c.Request.Context()

	link, err := h.links.BySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if availability := service.EvaluateAvailability(link, false, time.Now()); !availability.Allowed {
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, availability.Message)
		return
	}

	entry, err := h.sessions.Validate(ctx, link.ID, sessionCookie(c, link.ID))
	if err != nil {
		handleError(c, err)
		return
	}

	pending, _, err := h.nda.Pending(ctx, link, entry.ViewerEmail)
	if err != nil {
		handleError(c, err)
		return
	}
	if pending {
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "NDA acceptance required.")
		return
	}

	docs, err := h.scope.AccessibleDocuments(ctx, link)
	if err != nil {
		handleError(c, err)
		return
	}
	infos := make([]documentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, documentInfo{
			ID:       doc.ID,
			FolderID: doc.FolderID,
			Filename: doc.Filename,
			MimeType: doc.MimeType,
			Ctime:    doc.Ctime,
		})
	}
	response.Success(c, gin.H{"link_id": link.ID, "documents": infos})
}

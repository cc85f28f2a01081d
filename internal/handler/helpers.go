package handler

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/openvault/openvault/internal/pkg/errcode"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
	"github.com/openvault/openvault/internal/pkg/response"
	"github.com/openvault/openvault/internal/pkg/token"
	"github.com/openvault/openvault/internal/service"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// filenames go into Content-Disposition; anything outside this set is
// replaced before the header is written.
var filenameSafe = regexp.MustCompile(`[^a-zA-Z0-9._() -]+`)

func handleError(c *gin.Context, err error) {
	if err != nil {
		requestID, _ := c.Get("request_id")
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	switch {
	case err == nil:
		return
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, appErr.ErrLinkUnavailable):
		response.Error(c, http.StatusGone, errcode.ErrLinkUnavailable, "link unavailable")
	case errors.Is(err, appErr.ErrDocumentCorrupt):
		response.Error(c, http.StatusUnprocessableEntity, errcode.ErrDocumentCorrupt, "document could not be processed")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func sanitizeFilename(name string) string {
	cleaned := filenameSafe.ReplaceAllString(name, "_")
	if cleaned == "" {
		return "document"
	}
	return cleaned
}

func clientMeta(c *gin.Context) (string, string) {
	return c.ClientIP(), c.Request.UserAgent()
}

func sessionCookie(c *gin.Context, linkID string) string {
	value, err := c.Cookie(service.SessionCookieName(linkID))
	if err != nil {
		return ""
	}
	return value
}

func identityEmail(c *gin.Context, linkID string) string {
	value, err := c.Cookie(service.IdentityCookieName(linkID))
	if err != nil {
		return ""
	}
	return token.DecodeEmail(value)
}

// viewerIdentity picks the email stamped into watermarks: the identity cookie
// when present and decodable, otherwise the email recorded on the session row.
func viewerIdentity(c *gin.Context, linkID, sessionEmail string) string {
	if email := identityEmail(c, linkID); email != "" {
		return email
	}
	return sessionEmail
}

func setViewerCookies(c *gin.Context, linkID, sessionToken, viewerEmail string, secure bool) {
	maxAge := int(service.SessionTTL / time.Second)
	c.SetCookie(service.SessionCookieName(linkID), sessionToken, maxAge, "/", "", secure, true)
	c.SetCookie(service.IdentityCookieName(linkID), token.EncodeEmail(viewerEmail), maxAge, "/", "", secure, true)
}

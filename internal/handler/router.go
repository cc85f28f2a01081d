package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Viewer    *ViewerHandler
	Documents *DocumentHandler
	Beacon    *BeaconHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/v/:slug", deps.Viewer.Probe)
	api.POST("/v/:slug/request-link", deps.Viewer.RequestLink)
	api.GET("/v/:slug/auth", deps.Viewer.AuthCallback)
	api.GET("/v/:slug/nda", deps.Viewer.ShowNda)
	api.POST("/v/:slug/nda/accept", deps.Viewer.AcceptNda)
	api.GET("/v/:slug/documents", deps.Viewer.Documents)

	api.GET("/stream/:doc_id", deps.Documents.Stream)
	api.GET("/download/:doc_id", deps.Documents.Download)

	api.POST("/analytics/beacon", deps.Beacon.Record)
}

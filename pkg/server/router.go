package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"winenow.app/WineNowNote/pkg/auth"
)

type Servers struct {
	Auth      *AuthServer
	Wines     *WineServer
	Notes     *NoteServer
	Templates *TemplateServer
	Dashboard *DashboardServer
}

// NewRouter wires every handler onto a gin engine. Everything under
// /api requires a bearer token except registration, login and refresh.
func NewRouter(servers Servers, authManager *auth.Manager, mediaDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Static("/media", mediaDir)

	api := router.Group("/api")

	api.POST("/auth/register", servers.Auth.Register)
	api.POST("/auth/login", servers.Auth.Login)
	api.POST("/auth/refresh", servers.Auth.Refresh)

	authed := api.Group("", authManager.RequireUser())

	authed.GET("/auth/me", servers.Auth.Me)
	authed.PATCH("/auth/me", servers.Auth.UpdateMe)

	authed.GET("/wines", servers.Wines.ListWines)
	authed.POST("/wines", servers.Wines.AddWine)
	authed.GET("/wines/external-search", servers.Wines.ExternalSearch)
	authed.GET("/wines/:id", servers.Wines.GetWine)

	authed.GET("/tasting-notes", servers.Notes.ListNotes)
	authed.POST("/tasting-notes", servers.Notes.CreateNote)
	authed.GET("/tasting-notes/statistics", servers.Dashboard.Statistics)
	authed.GET("/tasting-notes/calendar", servers.Dashboard.Calendar)
	authed.GET("/tasting-notes/top-wines", servers.Dashboard.TopWines)
	authed.GET("/tasting-notes/:id", servers.Notes.GetNote)
	authed.PATCH("/tasting-notes/:id", servers.Notes.UpdateNote)
	authed.DELETE("/tasting-notes/:id", servers.Notes.DeleteNote)
	authed.POST("/tasting-notes/:id/upload_photo", servers.Notes.UploadPhoto)
	authed.DELETE("/tasting-notes/:id/delete_photo", servers.Notes.DeletePhoto)

	authed.GET("/templates", servers.Templates.ListTemplates)
	authed.POST("/templates", servers.Templates.CreateTemplate)
	authed.GET("/templates/:id", servers.Templates.GetTemplate)
	authed.PATCH("/templates/:id", servers.Templates.UpdateTemplate)
	authed.DELETE("/templates/:id", servers.Templates.DeleteTemplate)
	authed.POST("/templates/:id/set_default", servers.Templates.SetDefault)

	return router
}

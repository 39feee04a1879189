package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api. Every route requires auth;
// writes also pass through limit.
func RegisterRoutes(router gin.IRouter, orgs *OrganizationHandler, feed *EventsHandler, auth, limit gin.HandlerFunc) {
	api := router.Group("/api", auth)

	organizations := api.Group("/organizations")
	{
		organizations.GET("", orgs.ListOrganizations)
		organizations.GET("/roots", orgs.ListRoots)
		organizations.GET("/:id", orgs.GetOrganization)
		organizations.GET("/:id/hierarchy", orgs.GetHierarchy)
		organizations.GET("/:id/children", orgs.GetChildren)
		organizations.GET("/:id/ancestors", orgs.GetAncestors)
		organizations.POST("/:id/children", limit, orgs.CreateChild)
		organizations.POST("/:id/logo", limit, orgs.UploadLogo)
		organizations.DELETE("/:id", limit, orgs.DeleteOrganization)
	}

	api.GET("/admin/hierarchy/stats", orgs.Stats)

	if feed != nil {
		api.GET("/hierarchy/events", feed.Subscribe)
	}
}

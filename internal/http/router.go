// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackshack/internal/http/handlers"
	"stackshack/internal/http/middleware"
	"stackshack/internal/modules/order"
	"stackshack/internal/modules/user"
)

type RouterDeps struct {
	Orders    *order.Service
	Users     *user.Service
	Shelters  handlers.ShelterStore
	Donations handlers.DonationLister
	WS        http.Handler
	JWTSecret string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/ws", gin.WrapH(deps.WS))

	auth := middleware.Auth(deps.JWTSecret)

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	api := r.Group("/api", auth)

	api.POST("/orders", orderHandler.Place)
	api.POST("/orders/cod", orderHandler.PlaceCOD)
	api.POST("/orders/verify", orderHandler.Verify)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/user", orderHandler.ListMine)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders/:id/status", orderHandler.UpdateStatus)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)
	api.POST("/orders/:id/claim", orderHandler.Claim)
	api.POST("/orders/:id/shelter", orderHandler.AssignShelter)

	profileHandler := handlers.NewProfileHandler(deps.Users)
	api.GET("/profile/preferences", profileHandler.Get)
	api.PUT("/profile/preferences", profileHandler.Update)

	shelterHandler := handlers.NewShelterHandler(deps.Shelters, deps.Donations)
	api.GET("/shelters", shelterHandler.List)
	api.POST("/shelters", shelterHandler.Create)
	api.GET("/donations", shelterHandler.Donations)

	return r
}

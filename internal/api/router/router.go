package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/media-editor/internal/api/handlers/media"
	"github.com/aliskhannn/media-editor/internal/api/handlers/preset"
	"github.com/aliskhannn/media-editor/internal/api/handlers/variant"
	"github.com/aliskhannn/media-editor/internal/middleware"
)

// Handlers groups the HTTP handlers of the API.
type Handlers struct {
	Media    *media.Handler
	Variants *variant.Handler
	Presets  *preset.Handler
}

func Setup(h Handlers, allowedOrigins []string) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORS(allowedOrigins))
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.GET("/media", h.Media.List)                  // listing assets
	api.POST("/media", h.Media.Upload)               // uploading a physical asset
	api.POST("/media/virtual", h.Media.CreateVirtual) // saving as a new image
	api.GET("/media/:id", h.Media.Get)
	api.GET("/media/:id/file", h.Media.File)
	api.PUT("/media/:id/details", h.Media.UpdateDetails)
	api.GET("/media/:id/events", h.Media.Events)

	api.GET("/media/:id/variants", h.Variants.List)
	api.POST("/media/:id/variants", h.Variants.Create)
	api.PUT("/variants/:id", h.Variants.Update)

	api.GET("/presets", h.Presets.List)
	api.PUT("/presets/order", h.Presets.Reorder)

	return r
}

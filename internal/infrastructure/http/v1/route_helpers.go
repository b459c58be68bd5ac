package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler is implemented by the DW and PZ handlers.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	AddItem(c *gin.Context)
	UpdateItem(c *gin.Context)
}

// RegisterDocumentRoutes registers the shared document routes under path and the item
// PATCH route under itemPath.
func RegisterDocumentRoutes(rg *gin.RouterGroup, path, itemPath string, h DocumentRouteHandler) (docs, items *gin.RouterGroup) {
	docs = rg.Group(path)
	{
		docs.GET("", h.List)
		docs.POST("", h.Create)
		docs.GET("/:id", h.Get)
		docs.DELETE("/:id", h.Delete)
		docs.POST("/:id/items", h.AddItem)
	}
	items = rg.Group(itemPath)
	items.PATCH("/:id", h.UpdateItem)
	return docs, items
}

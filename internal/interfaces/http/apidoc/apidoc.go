// Package apidoc serves the OpenAPI description of the API and the Swagger
// UI that renders it.
package apidoc

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SpecPath is where the OpenAPI document is served
const SpecPath = "/openapi.yaml"

//go:embed openapi.yaml
var spec []byte

// Spec returns the OpenAPI document
func Spec() []byte {
	return spec
}

// Register mounts the document and the UI under /swagger behind guard
func Register(engine *gin.Engine, guard gin.HandlerFunc) {
	docs := engine.Group("", guard)
	docs.GET(SpecPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", spec)
	})
	docs.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(SpecPath)))
}

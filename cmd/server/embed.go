//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the frontend bundled into the binary. dir is ignored.
func setupStaticFiles(router *gin.Engine, _ string, log *slog.Logger) {
	log.Info("serving embedded frontend assets")

	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		panic(err)
	}

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if strings.HasPrefix(urlPath, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}

		name := strings.TrimPrefix(path.Clean(urlPath), "/")
		if name == "" {
			name = "index.html"
		}

		content, err := fs.ReadFile(distFS, name)
		if err != nil {
			// unknown paths fall back to the SPA entry point
			name = "index.html"
			content, err = fs.ReadFile(distFS, name)
			if err != nil {
				c.String(http.StatusNotFound, "404 page not found")
				return
			}
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		c.Data(http.StatusOK, contentType, content)
	})
}

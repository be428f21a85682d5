//go:build !embed
// +build !embed

package main

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the frontend from the local filesystem (development mode)
func setupStaticFiles(router *gin.Engine, dir string, log *slog.Logger) {
	log.Info("serving frontend assets from disk", slog.String("dir", dir))

	router.Static("/static", filepath.Join(dir, "static"))
	router.StaticFile("/", filepath.Join(dir, "index.html"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "static", "favicon.ico"))

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
}

// Package api provides the REST API server for midi-mcp-server
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tubone24/midi-mcp-server/pkg/compiler"
	"github.com/tubone24/midi-mcp-server/pkg/smf"
)

// @title MIDI Compiler API
// @version 1.0
// @description API for compiling beat-based JSON compositions into Standard MIDI Files
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/compile", handleCompile)
		v1.POST("/inspect", handleInspect)
		v1.GET("/durations", listDurations)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midi-mcp-server",
	})
}

// listDurations godoc
// @Summary List supported note durations
// @Description Returns the symbolic duration set and the tick span of each at the fixed resolution
// @Tags info
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/durations [get]
func listDurations(c *gin.Context) {
	symbols := []string{"1", "2", "4", "8", "16", "32", "64"}
	ticks := make(map[string]int, len(symbols))
	for _, s := range symbols {
		ticks[s] = compiler.DurationTicks(s)
	}
	c.JSON(http.StatusOK, gin.H{
		"ppqn":      compiler.PPQN,
		"durations": symbols,
		"ticks":     ticks,
	})
}

// handleCompile godoc
// @Summary Compile a composition to a MIDI file
// @Description Accepts a JSON composition body and returns the encoded .mid file
// @Tags compile
// @Accept json
// @Produce audio/midi
// @Param name query string false "Output filename (default: composition.mid)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/compile [post]
func handleCompile(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	comp, err := compiler.ParseJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := compiler.New().CompileBytes(comp)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	name := c.DefaultQuery("name", "composition.mid")
	if !strings.HasSuffix(name, ".mid") {
		name += ".mid"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, "audio/midi", data)
}

// handleInspect godoc
// @Summary Summarize an uploaded MIDI file
// @Description Parses uploaded SMF bytes and returns a structural summary
// @Tags inspect
// @Accept application/octet-stream
// @Produce json
// @Success 200 {object} smf.Summary
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func handleInspect(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	summary, err := smf.Summarize(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func statusForError(err error) int {
	var malformed *compiler.MalformedInputError
	var unsupported *compiler.UnsupportedValueError
	if errors.As(err, &malformed) || errors.As(err, &unsupported) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Package api provides the REST API server for midi2abc
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/james-see/midi2abc/pkg/converter"
	"github.com/james-see/midi2abc/pkg/key"
)

// ABCContentType is the media type of ABC responses
const ABCContentType = "text/vnd.abc; charset=utf-8"

// maxUpload bounds the size of an uploaded MIDI file
const maxUpload = 8 << 20

var logger = zap.NewNop()

// SetLogger installs the logger for request and conversion logs
func SetLogger(l *zap.Logger) {
	logger = l.Named("api")
}

// @title midi2abc API
// @version 1.0
// @description API for transcribing Standard MIDI Files into ABC notation
// @host localhost:8080
// @BasePath /api/v1

// NewRouter builds the gin engine with every route installed
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/midi2abc", handleMIDIToABC)
		v1.POST("/inspect", handleInspect)
		v1.GET("/formats", listFormats)
		v1.GET("/keys", listKeys)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	logger.Info("listening", zap.Int("port", port))
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
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
		"service": "midi2abc",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the input and output formats and the conversions between them
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{string(converter.FormatMIDI), string(converter.FormatABC)},
		"conversions": converter.GetSupportedConversions(),
	})
}

type keyInfo struct {
	Name   string `json:"name"`
	ABC    string `json:"abc"`
	Mode   string `json:"mode"`
	Sharps int    `json:"sharps"`
}

// listKeys godoc
// @Summary List keys
// @Description Returns the keys considered by key estimation, in search order
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]keyInfo
// @Router /api/v1/keys [get]
func listKeys(c *gin.Context) {
	cands := key.Candidates()
	keys := make([]keyInfo, len(cands))
	for i, k := range cands {
		keys[i] = keyInfo{Name: k.Name(), ABC: k.ABC(), Mode: k.Mode.String(), Sharps: k.Sharps()}
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// handleMIDIToABC godoc
// @Summary Convert MIDI to ABC
// @Description Upload a MIDI file and receive an ABC tune
// @Tags convert
// @Accept multipart/form-data
// @Produce text/vnd.abc
// @Param file formData file true "MIDI file to convert"
// @Param key query string false "Key name or signed sharps count (default: estimated)"
// @Param meter query string false "Meter such as 6/8 (default: from file, else 3/4)"
// @Param length query string false "Unit note length (default: 1/16)"
// @Param aux query int false "Unit note length denominator, overrides length"
// @Param bpl query int false "Bars per line (default: 4)"
// @Param title query string false "T: field (default: first track name)"
// @Param source query string false "S: field"
// @Param index query int false "X: field (default: 1)"
// @Param anacrusis query int false "Number of pickup notes"
// @Param channels query string false "Channel range such as 0-15 or 9"
// @Param nt query bool false "Disable triplets and broken rhythms"
// @Param nbb query bool false "Disable beam breaks"
// @Param s8 query bool false "Slur eighth note pairs"
// @Param s16 query bool false "Slur sixteenth note runs"
// @Param st query bool false "Slur triplets"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/midi2abc [post]
func handleMIDIToABC(c *gin.Context) {
	var vals converter.OptionValues
	if err := c.ShouldBindQuery(&vals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts, err := vals.Options()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := converter.New(opts).MIDIToABC(data)
	if err != nil {
		logger.Warn("conversion failed", zap.String("file", filename), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputName(filename)))
	c.Data(http.StatusOK, ABCContentType, result)
}

// handleInspect godoc
// @Summary Inspect a MIDI file
// @Description Upload a MIDI file and receive a summary of its tracks, tempo, meter and key
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to inspect"
// @Success 200 {object} converter.Summary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func handleInspect(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	sum, err := converter.Inspect(data)
	if err != nil {
		logger.Warn("inspection failed", zap.String("file", filename), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// readUpload answers the request itself when it reports false
func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	if len(data) > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func outputName(upload string) string {
	base := filepath.Base(upload)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "converted"
	}
	return name + ".abc"
}

package server

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/parser"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/textstats"
)

// APIResponse is the envelope of every JSON reply.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GradeBody is the POST /v1/grade payload. Path, when set, keys the
// stored result and supplies the artifact's story bible. Metrics are
// computed from Text when omitted.
type GradeBody struct {
	Path        string         `json:"path"`
	Text        string         `json:"text" binding:"required"`
	Inspiration string         `json:"inspiration"`
	Target      int            `json:"target"`
	Metrics     *grade.Metrics `json:"metrics"`
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(code, APIResponse{Success: false, Error: msg})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data: gin.H{
			"status": "ok",
			"uptime": time.Since(s.started).Round(time.Second).String(),
		},
	})
}

// handleStatus reports the latest progress message of the process-wide
// status store.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: status.Default.Current()})
}

func (s *Server) handleGrade(c *gin.Context) {
	var body GradeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		fail(c, http.StatusBadRequest, "invalid request: text is empty")
		return
	}

	if body.Metrics == nil {
		m := textstats.Analyze(body.Text)
		body.Metrics = &m
	}

	ctx := c.Request.Context()
	req := orchestrator.GradeRequest{
		Artifact: grade.NarrativeArtifact{
			Text:        body.Text,
			Metrics:     body.Metrics,
			Inspiration: body.Inspiration,
			Target:      body.Target,
		},
	}

	if body.Path != "" && s.store != nil {
		data, err := s.store.Load(ctx, body.Path)
		if err != nil {
			log.Printf("[Server] Could not load project data for %s: %v", body.Path, err)
		} else {
			req.StoryBible = data.StoryBible
		}
	}

	result, err := s.grader.Grade(ctx, req)
	if err != nil {
		log.Printf("[Server] Grading failed: %v", err)
		fail(c, errorStatus(err), err.Error())
		return
	}

	if body.Path != "" && s.store != nil {
		if err := s.store.SaveResult(ctx, body.Path, result, nil); err != nil {
			log.Printf("[Server] Save failed for %s: %v", body.Path, err)
		}
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: result})
}

// diagnosticRequest binds the body shared by the diagnostic routes.
func (s *Server) diagnosticRequest(c *gin.Context) (Diagnostician, orchestrator.GradeRequest, bool) {
	d, ok := s.grader.(Diagnostician)
	if !ok {
		fail(c, http.StatusNotImplemented, "diagnostics are not supported by this grader")
		return nil, orchestrator.GradeRequest{}, false
	}

	var body GradeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return nil, orchestrator.GradeRequest{}, false
	}
	if strings.TrimSpace(body.Text) == "" {
		fail(c, http.StatusBadRequest, "invalid request: text is empty")
		return nil, orchestrator.GradeRequest{}, false
	}
	return d, orchestrator.GradeRequest{Artifact: grade.NarrativeArtifact{Text: body.Text}}, true
}

func (s *Server) handleQuickScan(c *gin.Context) {
	d, req, ok := s.diagnosticRequest(c)
	if !ok {
		return
	}
	scan, err := d.QuickScan(c.Request.Context(), req)
	if err != nil {
		log.Printf("[Server] Quick scan failed: %v", err)
		fail(c, errorStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: scan})
}

func (s *Server) handleMeta(c *gin.Context) {
	d, req, ok := s.diagnosticRequest(c)
	if !ok {
		return
	}
	analysis, err := d.MetaAnalysis(c.Request.Context(), req)
	if err != nil {
		log.Printf("[Server] Meta analysis failed: %v", err)
		fail(c, errorStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: analysis})
}

func (s *Server) handleGetResult(c *gin.Context) {
	if s.store == nil {
		fail(c, http.StatusServiceUnavailable, "no result store configured")
		return
	}
	path := c.Query("path")
	if path == "" {
		fail(c, http.StatusBadRequest, "path query parameter is required")
		return
	}

	data, err := s.store.Load(c.Request.Context(), path)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if data.LastResult == nil {
		fail(c, http.StatusNotFound, "no result stored for "+path)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// handlePurge deletes every stored document. It is destructive and only
// runs with ?confirm=true.
func (s *Server) handlePurge(c *gin.Context) {
	if s.store == nil {
		fail(c, http.StatusServiceUnavailable, "no result store configured")
		return
	}
	if c.Query("confirm") != "true" {
		fail(c, http.StatusBadRequest, "purge is destructive; repeat with ?confirm=true")
		return
	}

	n, err := s.store.Purge(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"removed": n}})
}

// errorStatus maps grading errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, provider.ErrCancelled):
		return http.StatusRequestTimeout
	case errors.Is(err, provider.ErrMissingCredential),
		errors.Is(err, provider.ErrInvalidConfig),
		errors.Is(err, orchestrator.ErrInvalidConfig):
		return http.StatusInternalServerError
	case errors.Is(err, provider.ErrTransport),
		errors.Is(err, provider.ErrEmptyResponse),
		errors.Is(err, parser.ErrMalformedResponse),
		errors.Is(err, orchestrator.ErrGradingFailed),
		errors.Is(err, orchestrator.ErrAllCoresFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

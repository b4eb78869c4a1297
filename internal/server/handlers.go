package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
)

// AnalyzeResponse is the success payload of POST /analyze-pitch-deck
type AnalyzeResponse struct {
	Success            bool                       `json:"success"`
	RequestID          string                     `json:"request_id"`
	MatchedFeedback    []model.FeedbackItem       `json:"matched_feedback"`
	TamSamInfo         string                     `json:"tam_sam_info"`
	TamSamSources      []string                   `json:"tam_sam_sources"`
	TeamFeedback       *model.TeamFeedback        `json:"team_feedback"`
	CompetitorFeedback *model.CompetitionFeedback `json:"competitor_feedback"`
	GeneralContext     string                     `json:"general_context"`
	Topics             []model.TopicAssignment    `json:"topics"`
	TotalPages         int                        `json:"total_pages"`
	Plan               []string                   `json:"plan"`
	Sources            []model.ValidationResult   `json:"sources"`
	Warnings           []string                   `json:"warnings"`
}

// NewAnalyzeResponse flattens an analysis into the API payload
func NewAnalyzeResponse(requestID string, a *model.Analysis) AnalyzeResponse {
	resp := AnalyzeResponse{
		Success:            true,
		RequestID:          requestID,
		MatchedFeedback:    a.MatchedFeedback,
		TamSamInfo:         a.TamSamInfo(),
		TamSamSources:      a.TamSamSources(),
		TeamFeedback:       a.Team,
		CompetitorFeedback: a.Competition,
		GeneralContext:     a.GeneralContext,
		Topics:             a.Topics,
		TotalPages:         a.TotalPages,
		Plan:               a.Plan,
		Sources:            a.Sources,
		Warnings:           a.Warnings,
	}
	if resp.MatchedFeedback == nil {
		resp.MatchedFeedback = []model.FeedbackItem{}
	}
	if resp.Topics == nil {
		resp.Topics = []model.TopicAssignment{}
	}
	if resp.Plan == nil {
		resp.Plan = []string{}
	}
	if resp.Sources == nil {
		resp.Sources = []model.ValidationResult{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceName + " API",
		"version": apiVersion,
		"endpoints": gin.H{
			"analyze": "/analyze-pitch-deck",
			"health":  "/health",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

func (s *Server) analyzePitchDeck(c *gin.Context) {
	requestID := c.GetString(requestIDKey)
	log := s.logger.With(zap.String("request_id", requestID))

	// Multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, http.StatusBadRequest, fmt.Sprintf("File exceeds the %d byte upload limit", s.maxUpload))
			return
		}
		s.fail(c, http.StatusBadRequest, "Missing file upload")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		s.fail(c, http.StatusBadRequest, "Only PDF files are supported")
		return
	}
	if header.Size > s.maxUpload {
		s.fail(c, http.StatusBadRequest, fmt.Sprintf("File exceeds the %d byte upload limit", s.maxUpload))
		return
	}

	tmp, err := os.CreateTemp("", "pitchcheck-upload-*.pdf")
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			log.Warn("temp file not removed", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	if err := c.SaveUploadedFile(header, tmpPath); err != nil {
		s.fail(c, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Info("analyzing upload", zap.String("filename", header.Filename), zap.Int64("size", header.Size))
	analysis, err := s.analyzer.Analyze(ctx, pipeline.Input{
		Path:           tmpPath,
		GeneralContext: c.PostForm("general_context"),
	})
	if err != nil {
		if model.IsKind(err, model.KindValidation) {
			s.fail(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("analysis failed", zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}
	analysis.Source = filepath.Base(header.Filename)

	c.JSON(http.StatusOK, NewAnalyzeResponse(requestID, analysis))
}

func (s *Server) fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

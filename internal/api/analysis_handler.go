package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atsResume/internal/analysis"
	"atsResume/internal/api/middleware"
	"atsResume/internal/resume"
	"atsResume/internal/store"
)

// AnalysisHandler 负责职位匹配分析。
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
}

func NewAnalysisHandler(analyzer *analysis.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

type analyzeRequest struct {
	JobDescription string `json:"job_description"`
}

// POST /v1/analysis
// 请求会等待分析延迟；期间有新请求到达时返回 409。
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.JobDescription)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, analysis.ErrSuperseded):
		Conflict(c, err.Error())
	case c.Request.Context().Err() != nil:
		// 客户端已断开
		c.Status(499)
	default:
		middleware.LoggerFromContext(c).Error("job match analysis failed", slog.Any("error", err))
		Internal(c, "analysis failed")
	}
}

// GET /v1/analysis/latest
func (h *AnalysisHandler) Latest(c *gin.Context) {
	result, ok := h.analyzer.Latest()
	if !ok {
		NotFound(c, "no analysis yet")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SuggestionHandler 返回固定的写作建议。
type SuggestionHandler struct {
	store *store.Store
	dict  resume.Dictionary
}

func NewSuggestionHandler(st *store.Store, dict resume.Dictionary) *SuggestionHandler {
	return &SuggestionHandler{store: st, dict: dict}
}

// GET /v1/suggestions/summary
func (h *SuggestionHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": resume.SummarySuggestions()})
}

// GET /v1/suggestions/skills?limit=
func (h *SuggestionHandler) Skills(c *gin.Context) {
	limit := resume.DefaultSkillSuggestions
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": resume.SuggestSkills(h.store.State().Resume, h.dict, limit)})
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atsResume/internal/api/middleware"
	"atsResume/internal/resume"
	"atsResume/internal/store"
)

// ResumeHandler 负责当前简历的读取与编辑。
type ResumeHandler struct {
	store *store.Store
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(st *store.Store) *ResumeHandler {
	return &ResumeHandler{store: st}
}

var errSectionNotFound = errors.New("section not found")

type stateResponse struct {
	Resume     resume.Resume     `json:"resume"`
	Template   resume.Template   `json:"template"`
	Score      int               `json:"score"`
	Assessment resume.Assessment `json:"assessment"`
}

func newStateResponse(s store.State) stateResponse {
	return stateResponse{
		Resume:     s.Resume,
		Template:   s.Template,
		Score:      s.Score,
		Assessment: resume.Assess(s.Score),
	}
}

type patchResumeRequest struct {
	Name           *string              `json:"name"`
	PersonalInfo   *resume.PersonalInfo `json:"personalInfo"`
	Sections       *[]resume.Section    `json:"sections"`
	JobDescription *string              `json:"jobDescription"`
}

type patchSectionRequest struct {
	Title    *string            `json:"title"`
	Content  *string            `json:"content"`
	Items    *[]json.RawMessage `json:"items"`
	Visible  *bool              `json:"visible"`
	Required *bool              `json:"required"`
}

type moveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

type changeTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

// GET /v1/resume
func (h *ResumeHandler) GetResume(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(h.store.State()))
}

// GET /v1/resume/score
func (h *ResumeHandler) GetScore(c *gin.Context) {
	score := h.store.Score()
	c.JSON(http.StatusOK, gin.H{
		"score":      score,
		"assessment": resume.Assess(score),
	})
}

// PATCH /v1/resume
// 浅合并顶层字段；sections 中任一条目与分区类型不符时整体拒绝。
func (h *ResumeHandler) PatchResume(c *gin.Context) {
	var req patchResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	patch := store.ResumePatch{
		Name:           req.Name,
		PersonalInfo:   req.PersonalInfo,
		Sections:       req.Sections,
		JobDescription: req.JobDescription,
	}
	c.JSON(http.StatusOK, newStateResponse(h.store.UpdateResume(c.Request.Context(), patch)))
}

// POST /v1/resume/reset
func (h *ResumeHandler) Reset(c *gin.Context) {
	state := h.store.Reset(c.Request.Context())
	middleware.LoggerFromContext(c).Info("resume reset to default scaffold", slog.String("resume_id", state.Resume.ID))
	c.JSON(http.StatusOK, newStateResponse(state))
}

// PATCH /v1/resume/sections/:id
func (h *ResumeHandler) PatchSection(c *gin.Context) {
	section, ok := h.lookupSection(c)
	if !ok {
		return
	}

	var req patchSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	patch := store.SectionPatch{
		Title:    req.Title,
		Content:  req.Content,
		Visible:  req.Visible,
		Required: req.Required,
	}
	if req.Items != nil {
		items := make([]resume.Item, 0, len(*req.Items))
		for i, raw := range *req.Items {
			item, err := resume.DecodeItem(section.Kind(), raw)
			if err != nil {
				BadRequest(c, "items["+strconv.Itoa(i)+"]: "+err.Error())
				return
			}
			items = append(items, item)
		}
		patch.Items = &items
	}

	c.JSON(http.StatusOK, newStateResponse(h.store.UpdateSection(c.Request.Context(), section.ID, patch)))
}

// POST /v1/resume/sections/:id/items
// 请求体即条目本身，按分区类型解码。
func (h *ResumeHandler) AddItem(c *gin.Context) {
	section, ok := h.lookupSection(c)
	if !ok {
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "read request body: "+err.Error())
		return
	}
	item, err := resume.DecodeItem(section.Kind(), raw)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusCreated, newStateResponse(h.store.AddItem(c.Request.Context(), section.ID, item)))
}

// DELETE /v1/resume/sections/:id/items/:index
// 越界下标不报错，返回未变化的状态。
func (h *ResumeHandler) RemoveItem(c *gin.Context) {
	section, ok := h.lookupSection(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newStateResponse(h.store.RemoveItem(c.Request.Context(), section.ID, index)))
}

// POST /v1/resume/sections/:id/items/move
func (h *ResumeHandler) MoveItem(c *gin.Context) {
	section, ok := h.lookupSection(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, newStateResponse(h.store.MoveItem(c.Request.Context(), section.ID, *req.From, *req.To)))
}

// POST /v1/resume/sections/move
func (h *ResumeHandler) MoveSection(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, newStateResponse(h.store.MoveSection(c.Request.Context(), *req.From, *req.To)))
}

// PUT /v1/resume/template
func (h *ResumeHandler) ChangeTemplate(c *gin.Context) {
	var req changeTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	state, ok := h.store.ChangeTemplate(c.Request.Context(), req.TemplateID)
	if !ok {
		NotFound(c, resume.ErrUnknownTemplate.Error())
		return
	}
	c.JSON(http.StatusOK, newStateResponse(state))
}

// POST /v1/resume/sections/:id/items/:index/improve
// 用固定的示例描述替换条目描述。
func (h *ResumeHandler) ImproveItem(c *gin.Context) {
	section, ok := h.lookupSection(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	if index < 0 || index >= len(section.Items) {
		NotFound(c, "item not found")
		return
	}

	improved, ok := resume.ImproveItem(section.Items[index])
	if !ok {
		BadRequest(c, "item has no description to improve")
		return
	}
	items := append([]resume.Item(nil), section.Items...)
	items[index] = improved

	state := h.store.UpdateSection(c.Request.Context(), section.ID, store.SectionPatch{Items: &items})
	c.JSON(http.StatusOK, newStateResponse(state))
}

func (h *ResumeHandler) lookupSection(c *gin.Context) (resume.Section, bool) {
	section, ok := h.store.State().Resume.Section(c.Param("id"))
	if !ok {
		NotFound(c, errSectionNotFound.Error())
		return resume.Section{}, false
	}
	return section, true
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "invalid item index")
		return 0, false
	}
	return index, true
}

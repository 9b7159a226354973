package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atsResume/internal/resume"
)

// TemplateHandler 负责模板目录的只读查询。
type TemplateHandler struct {
	catalog *resume.Catalog
}

func NewTemplateHandler(catalog *resume.Catalog) *TemplateHandler {
	return &TemplateHandler{catalog: catalog}
}

// GET /v1/templates?q=&ats_optimized=&free=
// 两个布尔筛选都未开启时返回全部（受 q 约束）；开启时取并集。
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	ats, err := boolQuery(c, "ats_optimized")
	if err != nil {
		BadRequest(c, "invalid ats_optimized")
		return
	}
	free, err := boolQuery(c, "free")
	if err != nil {
		BadRequest(c, "invalid free")
		return
	}

	templates := h.catalog.Filter(resume.TemplateFilter{
		Search:       c.Query("q"),
		ATSOptimized: ats,
		Free:         free,
	})
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GET /v1/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	t, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		NotFound(c, resume.ErrUnknownTemplate.Error())
		return
	}
	c.JSON(http.StatusOK, t)
}

func boolQuery(c *gin.Context, key string) (bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

package resume

import (
	"errors"
	"strings"
)

// ErrUnknownTemplate 表示目录中不存在该模板。
var ErrUnknownTemplate = errors.New("unknown template")

// Spacing 控制模板的行间距。
type Spacing string

const (
	SpacingCompact  Spacing = "compact"
	SpacingStandard Spacing = "standard"
	SpacingSpacious Spacing = "spacious"
)

// Template 表示可选的简历模板。
type Template struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Preview        string  `json:"preview"`
	Description    string  `json:"description"`
	Color          string  `json:"color"`
	Font           string  `json:"font"`
	Spacing        Spacing `json:"spacing"`
	IsATSOptimized bool    `json:"isAtsOptimized"`
	IsPremium      bool    `json:"isPremium"`
}

// Catalog 是只读的模板目录，保持声明顺序。
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// NewCatalog 构造模板目录。ID 重复时以先出现者为准。
func NewCatalog(templates []Template) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(templates))}
	for _, t := range templates {
		if _, ok := c.byID[t.ID]; ok {
			continue
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c
}

// All 返回全部模板。
func (c *Catalog) All() []Template {
	return append([]Template(nil), c.templates...)
}

// Get 按 ID 查找模板。
func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// Default 返回目录中的第一个模板。
func (c *Catalog) Default() Template {
	if len(c.templates) == 0 {
		return Template{}
	}
	return c.templates[0]
}

// TemplateFilter 描述模板列表的检索条件。两个开关都关闭时等同于 "全部"。
type TemplateFilter struct {
	Search       string
	ATSOptimized bool
	Free         bool
}

// Filter 按名称/描述关键字与开关筛选模板；开关之间为 "或" 关系。
func (c *Catalog) Filter(f TemplateFilter) []Template {
	search := strings.ToLower(f.Search)
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		matchesSearch := strings.Contains(strings.ToLower(t.Name), search) ||
			strings.Contains(strings.ToLower(t.Description), search)
		if !matchesSearch {
			continue
		}
		if !f.ATSOptimized && !f.Free {
			out = append(out, t)
			continue
		}
		if (f.ATSOptimized && t.IsATSOptimized) || (f.Free && !t.IsPremium) {
			out = append(out, t)
		}
	}
	return out
}

// DefaultTemplates 返回内置模板。
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:             "modern",
			Name:           "Modern",
			Preview:        "/templates/modern.png",
			Description:    "Clean single-column layout with a bold header and clear section dividers.",
			Color:          "#2563eb",
			Font:           "Inter",
			Spacing:        SpacingStandard,
			IsATSOptimized: true,
		},
		{
			ID:             "professional",
			Name:           "Professional",
			Preview:        "/templates/professional.png",
			Description:    "Traditional layout trusted by recruiters in finance and consulting.",
			Color:          "#1f2937",
			Font:           "Georgia",
			Spacing:        SpacingStandard,
			IsATSOptimized: true,
		},
		{
			ID:             "minimal",
			Name:           "Minimal",
			Preview:        "/templates/minimal.png",
			Description:    "Compact design that fits more content on a single page.",
			Color:          "#0f766e",
			Font:           "Helvetica",
			Spacing:        SpacingCompact,
			IsATSOptimized: true,
		},
		{
			ID:             "executive",
			Name:           "Executive",
			Preview:        "/templates/executive.png",
			Description:    "Elegant layout for senior leadership roles with generous whitespace.",
			Color:          "#7c2d12",
			Font:           "Garamond",
			Spacing:        SpacingSpacious,
			IsATSOptimized: true,
			IsPremium:      true,
		},
		{
			ID:          "creative",
			Name:        "Creative",
			Preview:     "/templates/creative.png",
			Description: "Two-column design with accent colors for design and marketing roles.",
			Color:       "#9333ea",
			Font:        "Poppins",
			Spacing:     SpacingStandard,
			IsPremium:   true,
		},
		{
			ID:             "technical",
			Name:           "Technical",
			Preview:        "/templates/technical.png",
			Description:    "Skills-first layout for engineers with a dedicated projects section.",
			Color:          "#334155",
			Font:           "Roboto Mono",
			Spacing:        SpacingCompact,
			IsATSOptimized: true,
		},
	}
}

// DefaultCatalog 返回内置模板目录。
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultTemplates())
}

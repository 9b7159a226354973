package resume

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Category 是关键词词典中的一个分类。
type Category struct {
	Name     string   `mapstructure:"name" json:"name"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// Dictionary 是按分类顺序拼接后的关键词表。
type Dictionary struct {
	categories []Category
	keywords   []string
}

// NewDictionary 按分类顺序拼接关键词。dedupe 为 false 时保留跨分类重复项，
// 匹配结果中会重复出现；为 true 时按小写形式只保留首次出现。
func NewDictionary(categories []Category, dedupe bool) Dictionary {
	seen := make(map[string]struct{})
	cats := make([]Category, 0, len(categories))
	var keywords []string
	for _, c := range categories {
		cats = append(cats, Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)})
		for _, kw := range c.Keywords {
			if strings.TrimSpace(kw) == "" {
				continue
			}
			if dedupe {
				key := strings.ToLower(kw)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
			}
			keywords = append(keywords, kw)
		}
	}
	return Dictionary{categories: cats, keywords: keywords}
}

// DefaultDictionary 返回内置词典。
func DefaultDictionary(dedupe bool) Dictionary {
	return NewDictionary(DefaultCategories(), dedupe)
}

// LoadDictionaryFile 从 YAML/JSON/TOML 文件读取词典，格式：
//
//	categories:
//	  - name: tech
//	    keywords: [python, docker]
func LoadDictionaryFile(path string, dedupe bool) (Dictionary, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Dictionary{}, fmt.Errorf("read keywords file %q: %w", path, err)
	}

	var categories []Category
	if err := v.UnmarshalKey("categories", &categories); err != nil {
		return Dictionary{}, fmt.Errorf("unmarshal keywords file %q: %w", path, err)
	}
	if len(categories) == 0 {
		return Dictionary{}, fmt.Errorf("keywords file %q has no categories", path)
	}
	return NewDictionary(categories, dedupe), nil
}

// Keywords 返回拼接后的关键词副本。
func (d Dictionary) Keywords() []string {
	return append([]string(nil), d.keywords...)
}

// Categories 返回原始分类。
func (d Dictionary) Categories() []Category {
	out := make([]Category, len(d.categories))
	for i, c := range d.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Len 返回关键词数量。
func (d Dictionary) Len() int { return len(d.keywords) }

// DefaultCategories 返回内置分类。部分关键词跨分类重复出现。
func DefaultCategories() []Category {
	return []Category{
		{Name: "general", Keywords: []string{
			"leadership", "communication", "teamwork", "problem solving", "project management",
			"time management", "collaboration", "critical thinking", "attention to detail",
			"strategic planning", "data analysis", "customer service", "stakeholder management",
			"process improvement", "cross-functional", "mentoring", "negotiation",
		}},
		{Name: "tech", Keywords: []string{
			"javascript", "typescript", "python", "java", "golang", "react", "node.js", "sql",
			"postgresql", "aws", "docker", "kubernetes", "ci/cd", "git", "agile", "scrum",
			"rest api", "microservices", "machine learning", "cloud", "linux", "testing",
			"project management", "analytics",
		}},
		{Name: "marketing", Keywords: []string{
			"seo", "content marketing", "social media", "google analytics", "email marketing",
			"brand management", "market research", "campaign management", "copywriting",
			"analytics", "crm", "lead generation", "a/b testing",
		}},
		{Name: "finance", Keywords: []string{
			"financial analysis", "budgeting", "forecasting", "financial modeling", "accounting",
			"gaap", "auditing", "risk management", "excel", "data analysis", "compliance",
			"reconciliation",
		}},
		{Name: "healthcare", Keywords: []string{
			"patient care", "hipaa", "electronic health records", "clinical", "medical terminology",
			"compliance", "patient safety", "triage", "healthcare administration", "care coordination",
		}},
	}
}

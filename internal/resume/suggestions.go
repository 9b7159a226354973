package resume

import "strings"

// 以下建议均为固定文案，不接入任何模型服务。
var summarySuggestions = []string{
	"Results-driven [profession] with [X] years of experience in [industry/field]. Proven track record of [key achievement] resulting in [measurable outcome]. Adept at [key skill 1], [key skill 2], and [key skill 3] with a focus on [area of specialization].",
	"Detail-oriented [profession] with expertise in [specific area]. Demonstrated success in [achievement] that [specific result]. Skilled in [technical skill] and [soft skill], with a passion for [industry/field].",
	"Innovative [profession] with a strong background in [field/industry]. Consistently [achievement verb] [result] through [method/approach]. Excel at [skill 1] and [skill 2], with particular strengths in [specific area].",
}

// ImprovedDescription 是 "优化描述" 操作写入经历条目的示例文案。
const ImprovedDescription = "• Increased team productivity by 27% through implementation of new project management methodologies\n" +
	"• Led cross-functional team of 8 engineers to deliver product features ahead of schedule\n" +
	"• Reduced customer reported bugs by 40% by establishing comprehensive QA processes\n" +
	"• Collaborated with product and design teams to improve user experience based on customer feedback"

// DefaultSkillSuggestions 是技能建议的默认条数。
const DefaultSkillSuggestions = 15

// SummarySuggestions 返回摘要模板文案。
func SummarySuggestions() []string {
	return append([]string(nil), summarySuggestions...)
}

// SuggestSkills 返回词典中尚未出现在技能分区的关键词，按词典顺序取前 limit 个。
func SuggestSkills(r Resume, dict Dictionary, limit int) []string {
	if limit <= 0 {
		limit = DefaultSkillSuggestions
	}

	current := make(map[string]struct{})
	if skills, ok := r.Section(string(KindSkills)); ok {
		for _, item := range skills.Items {
			if skill, ok := item.(SkillItem); ok {
				current[strings.ToLower(skill.Name)] = struct{}{}
			}
		}
	}

	out := make([]string, 0, limit)
	for _, kw := range dict.keywords {
		if _, ok := current[strings.ToLower(kw)]; ok {
			continue
		}
		out = append(out, kw)
		if len(out) == limit {
			break
		}
	}
	return out
}

// ImproveItem 用 ImprovedDescription 替换条目描述。只有带描述字段的条目可以优化。
func ImproveItem(item Item) (Item, bool) {
	switch v := item.(type) {
	case ExperienceItem:
		v.Description = ImprovedDescription
		return v, true
	case ProjectItem:
		v.Description = ImprovedDescription
		return v, true
	case EducationItem:
		v.Description = ImprovedDescription
		return v, true
	default:
		return item, false
	}
}

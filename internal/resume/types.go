package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrItemKind 表示条目形状与所在分区的类型不一致。
var ErrItemKind = errors.New("item does not match section kind")

// Kind 是分区的类型标签，由分区 ID 推导。
type Kind string

const (
	KindSummary        Kind = "summary"
	KindExperience     Kind = "experience"
	KindEducation      Kind = "education"
	KindSkills         Kind = "skills"
	KindProjects       Kind = "projects"
	KindCertifications Kind = "certifications"
	KindCustom         Kind = "custom"
)

// KindFromID 将内置分区 ID 映射到对应类型，其余 ID 一律视为自定义分区。
func KindFromID(id string) Kind {
	switch k := Kind(id); k {
	case KindSummary, KindExperience, KindEducation, KindSkills, KindProjects, KindCertifications:
		return k
	default:
		return KindCustom
	}
}

// TypeTag 返回持久化文档中使用的 type 字段。摘要分区沿用 "basic"。
func (k Kind) TypeTag() string {
	if k == KindSummary {
		return "basic"
	}
	return string(k)
}

// PersonalInfo 描述简历抬头的联系信息。
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

func (p PersonalInfo) appendText(dst []string) []string {
	return appendNonEmpty(dst, p.Name, p.Email, p.Phone, p.Location, p.Website, p.LinkedIn, p.GitHub, p.Summary)
}

// Item 是分区条目的封闭接口，每种分区类型对应一种实现。
type Item interface {
	Kind() Kind
	appendText(dst []string) []string
}

// ExperienceItem 表示一段工作经历。Current 为 true 时 EndDate 视为 "Present"。
type ExperienceItem struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
	Current     bool   `json:"current,omitempty"`
}

func (ExperienceItem) Kind() Kind { return KindExperience }

func (e ExperienceItem) appendText(dst []string) []string {
	return appendNonEmpty(dst, e.Company, e.Position, e.StartDate, e.EndDate, e.Location, e.Description)
}

// EducationItem 表示一段教育经历。
type EducationItem struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Location    string `json:"location,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Description string `json:"description,omitempty"`
}

func (EducationItem) Kind() Kind { return KindEducation }

func (e EducationItem) appendText(dst []string) []string {
	return appendNonEmpty(dst, e.Institution, e.Degree, e.Field, e.StartDate, e.EndDate, e.Location, e.GPA, e.Description)
}

// SkillItem 表示一项技能。Level 不参与评分。
type SkillItem struct {
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

func (SkillItem) Kind() Kind { return KindSkills }

func (s SkillItem) appendText(dst []string) []string {
	return appendNonEmpty(dst, s.Name)
}

// ProjectItem 表示一个项目。
type ProjectItem struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies,omitempty"`
	Link         string `json:"link,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

func (ProjectItem) Kind() Kind { return KindProjects }

func (p ProjectItem) appendText(dst []string) []string {
	return appendNonEmpty(dst, p.Name, p.Description, p.Technologies, p.Link, p.StartDate, p.EndDate)
}

// CertificationItem 表示一项证书。
type CertificationItem struct {
	Name           string `json:"name"`
	Issuer         string `json:"issuer"`
	Date           string `json:"date"`
	Link           string `json:"link,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

func (CertificationItem) Kind() Kind { return KindCertifications }

func (c CertificationItem) appendText(dst []string) []string {
	return appendNonEmpty(dst, c.Name, c.Issuer, c.Date, c.Link, c.ExpirationDate)
}

// TextItem 是纯文本条目，用于自定义分区。
type TextItem string

func (TextItem) Kind() Kind { return KindCustom }

func (t TextItem) appendText(dst []string) []string {
	return appendNonEmpty(dst, string(t))
}

// Section 表示简历中一个可排序的分区。
type Section struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Items    []Item `json:"items"`
	Visible  bool   `json:"visible"`
	Required bool   `json:"required,omitempty"`
}

// Kind 返回分区类型。
func (s Section) Kind() Kind { return KindFromID(s.ID) }

// Accepts 判断条目能否放入该分区。
func (s Section) Accepts(item Item) bool {
	if item == nil {
		return false
	}
	kind := s.Kind()
	if item.Kind() == kind {
		return true
	}
	return kind == KindSummary && item.Kind() == KindCustom
}

type sectionJSON struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Type     string            `json:"type"`
	Content  string            `json:"content,omitempty"`
	Items    []json.RawMessage `json:"items"`
	Visible  bool              `json:"visible"`
	Required bool              `json:"required,omitempty"`
}

// MarshalJSON 保证 items 始终输出为数组。
func (s Section) MarshalJSON() ([]byte, error) {
	type plain Section
	out := plain(s)
	if out.Items == nil {
		out.Items = []Item{}
	}
	if out.Type == "" {
		out.Type = s.Kind().TypeTag()
	}
	return json.Marshal(out)
}

// UnmarshalJSON 按分区类型解码异构条目。
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind := KindFromID(raw.ID)
	items := make([]Item, 0, len(raw.Items))
	for i, rawItem := range raw.Items {
		item, err := DecodeItem(kind, rawItem)
		if err != nil {
			return fmt.Errorf("section %q item %d: %w", raw.ID, i, err)
		}
		items = append(items, item)
	}

	*s = Section{
		ID:       raw.ID,
		Title:    raw.Title,
		Type:     raw.Type,
		Content:  raw.Content,
		Items:    items,
		Visible:  raw.Visible,
		Required: raw.Required,
	}
	if s.Type == "" {
		s.Type = kind.TypeTag()
	}
	return nil
}

// DecodeItem 将一个 JSON 条目解码为指定分区类型的条目。
// 字符串只允许出现在摘要与自定义分区；对象按类型严格解码，出现未知字段即视为形状不符。
func DecodeItem(kind Kind, raw json.RawMessage) (Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty item", ErrItemKind)
	}

	if trimmed[0] == '"' {
		if kind != KindCustom && kind != KindSummary {
			return nil, fmt.Errorf("%w: text item in %s section", ErrItemKind, kind)
		}
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		return TextItem(text), nil
	}

	switch kind {
	case KindExperience:
		var item ExperienceItem
		if err := decodeStrict(trimmed, &item); err != nil {
			return nil, err
		}
		return item, nil
	case KindEducation:
		var item EducationItem
		if err := decodeStrict(trimmed, &item); err != nil {
			return nil, err
		}
		return item, nil
	case KindSkills:
		var item SkillItem
		if err := decodeStrict(trimmed, &item); err != nil {
			return nil, err
		}
		return item, nil
	case KindProjects:
		var item ProjectItem
		if err := decodeStrict(trimmed, &item); err != nil {
			return nil, err
		}
		return item, nil
	case KindCertifications:
		var item CertificationItem
		if err := decodeStrict(trimmed, &item); err != nil {
			return nil, err
		}
		return item, nil
	default:
		return nil, fmt.Errorf("%w: %s section takes text items", ErrItemKind, kind)
	}
}

func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrItemKind, err)
	}
	return nil
}

// Resume 是整份简历文档，也是持久化快照的结构。
type Resume struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	TemplateID     string       `json:"templateId"`
	PersonalInfo   PersonalInfo `json:"personalInfo"`
	Sections       []Section    `json:"sections"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	JobDescription string       `json:"jobDescription,omitempty"`
}

// Section 返回第一个 ID 匹配的分区。
func (r Resume) Section(id string) (Section, bool) {
	for _, s := range r.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Clone 返回深拷贝。条目均为值类型，复制切片即可。
func (r Resume) Clone() Resume {
	out := r
	if r.Sections != nil {
		out.Sections = make([]Section, len(r.Sections))
		for i, s := range r.Sections {
			out.Sections[i] = s
			if s.Items != nil {
				out.Sections[i].Items = append([]Item(nil), s.Items...)
			}
		}
	}
	return out
}

// Decode 解析持久化的快照文本。
func Decode(data []byte) (Resume, error) {
	var r Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return Resume{}, fmt.Errorf("decode resume: %w", err)
	}
	if r.Sections == nil {
		r.Sections = []Section{}
	}
	return r, nil
}

// Encode 将文档序列化为快照文本。
func Encode(r Resume) ([]byte, error) {
	if r.Sections == nil {
		r.Sections = []Section{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode resume: %w", err)
	}
	return data, nil
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

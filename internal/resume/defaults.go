package resume

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultResumeName = "My Resume"
	DefaultTemplateID = "modern"
)

// DefaultResume 返回首次加载或重置时使用的空白简历骨架。
func DefaultResume(now time.Time) Resume {
	now = now.UTC()
	return Resume{
		ID:         uuid.NewString(),
		Name:       DefaultResumeName,
		TemplateID: DefaultTemplateID,
		Sections: []Section{
			newSection(KindSummary, "Professional Summary", true),
			newSection(KindExperience, "Work Experience", true),
			newSection(KindEducation, "Education", true),
			newSection(KindSkills, "Skills", true),
			newSection(KindProjects, "Projects", false),
			newSection(KindCertifications, "Certifications", false),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newSection(kind Kind, title string, required bool) Section {
	return Section{
		ID:       string(kind),
		Title:    title,
		Type:     kind.TypeTag(),
		Items:    []Item{},
		Visible:  true,
		Required: required,
	}
}

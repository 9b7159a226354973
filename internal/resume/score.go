package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxScore         = 100
	contactPoints    = 5
	summaryPoints    = 10
	summaryMinLength = 50
	experiencePoints = 5
	experienceCap    = 20
	bulletPoints     = 2
	actionVerbPoints = 3
	educationPoints  = 10
	skillsCap        = 10

	bulletMarker = "•"
)

var actionVerbPattern = regexp.MustCompile(`(?i)\b(achieved|improved|led|managed|developed|created|implemented)\b`)

// CompletenessScore 按固定规则累加完整度分数并截断到 100。
// 纯函数，同一文档多次调用结果一致。
func CompletenessScore(r Resume) int {
	score := 0

	info := r.PersonalInfo
	for _, field := range []string{info.Name, info.Email, info.Phone, info.Location} {
		if field != "" {
			score += contactPoints
		}
	}

	if summary, ok := r.Section(string(KindSummary)); ok && utf8.RuneCountInString(summary.Content) > summaryMinLength {
		score += summaryPoints
	}

	if experience, ok := r.Section(string(KindExperience)); ok && len(experience.Items) > 0 {
		score += min(len(experience.Items)*experiencePoints, experienceCap)

		for _, item := range experience.Items {
			job, ok := item.(ExperienceItem)
			if !ok || job.Description == "" {
				continue
			}
			if strings.Contains(job.Description, bulletMarker) {
				score += bulletPoints
			}
			if actionVerbPattern.MatchString(job.Description) {
				score += actionVerbPoints
			}
		}
	}

	if education, ok := r.Section(string(KindEducation)); ok && len(education.Items) > 0 {
		score += educationPoints
	}

	if skills, ok := r.Section(string(KindSkills)); ok && len(skills.Items) > 0 {
		score += min(len(skills.Items), skillsCap)
	}

	return min(score, maxScore)
}

// Status 是分数所处的档位。
type Status string

const (
	StatusExcellent        Status = "excellent"
	StatusGood             Status = "good"
	StatusNeedsImprovement Status = "needs-improvement"
)

// Assessment 是展示给用户的分数解读。
type Assessment struct {
	Score        int      `json:"score"`
	Status       Status   `json:"status"`
	Headline     string   `json:"headline"`
	Advice       string   `json:"advice"`
	Improvements []string `json:"improvements"`
}

// Assess 根据分数给出档位、说明与改进建议。
func Assess(score int) Assessment {
	a := Assessment{Score: score, Improvements: []string{}}
	switch {
	case score >= 80:
		a.Status = StatusExcellent
		a.Headline = "Excellent! Your resume is well-optimized for ATS."
		a.Advice = "Your resume should perform well with most ATS systems. Keep up the good work!"
	case score >= 60:
		a.Status = StatusGood
		a.Headline = "Good start, but there's room for improvement."
		a.Advice = "Add more relevant keywords and complete all required sections for better results."
	default:
		a.Status = StatusNeedsImprovement
		a.Headline = "Your resume needs significant improvements."
		a.Advice = "Focus on adding relevant keywords, completing all sections, and using a clearer format."
	}

	if score < 80 {
		a.Improvements = append(a.Improvements, "Add more relevant skills to the Skills section")
	}
	if score < 70 {
		a.Improvements = append(a.Improvements, "Include measurable achievements in your Experience")
	}
	if score < 60 {
		a.Improvements = append(a.Improvements, "Complete your Professional Summary section")
	}
	if score < 50 {
		a.Improvements = append(a.Improvements, "Add more details to your Education section")
	}
	return a
}

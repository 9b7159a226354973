package resume

import (
	"strings"
	"testing"
)

func contactInfo() PersonalInfo {
	return PersonalInfo{Name: "Jane Doe", Email: "jane@x.com", Phone: "555-1111", Location: "NYC"}
}

func TestCompletenessScore_EmptyResume(t *testing.T) {
	if got := CompletenessScore(Resume{}); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
}

func TestCompletenessScore_ContactOnly(t *testing.T) {
	r := Resume{PersonalInfo: contactInfo()}
	if got := CompletenessScore(r); got != 20 {
		t.Fatalf("expected 20 got %d", got)
	}
}

func TestCompletenessScore_SummaryThreshold(t *testing.T) {
	base := Resume{PersonalInfo: contactInfo()}

	cases := []struct {
		name    string
		content string
		want    int
	}{
		{name: "fifty chars", content: strings.Repeat("a", 50), want: 20},
		{name: "fifty one chars", content: strings.Repeat("a", 51), want: 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := base.Clone()
			r.Sections = []Section{{ID: "summary", Content: tc.content}}
			if got := CompletenessScore(r); got != tc.want {
				t.Fatalf("expected %d got %d", tc.want, got)
			}
		})
	}
}

func TestCompletenessScore_EndToEnd(t *testing.T) {
	r := Resume{
		PersonalInfo: contactInfo(),
		Sections: []Section{
			{ID: "experience", Items: []Item{
				ExperienceItem{Company: "Acme", Description: "• Led team of 5\n• Improved throughput by 20%"},
			}},
			{ID: "education", Items: []Item{EducationItem{Institution: "State U"}}},
			{ID: "skills", Items: []Item{SkillItem{Name: "Go"}, SkillItem{Name: "SQL"}, SkillItem{Name: "Docker"}}},
		},
	}

	// contact 20 + experience 5 + bullet 2 + action verb 3 + education 10 + skills 3
	if got := CompletenessScore(r); got != 43 {
		t.Fatalf("expected 43 got %d", got)
	}
}

func TestCompletenessScore_ActionVerbIsWholeWord(t *testing.T) {
	r := Resume{Sections: []Section{{ID: "experience", Items: []Item{
		ExperienceItem{Description: "misled by a pledged outcome"},
		ExperienceItem{Description: "MANAGED the launch"},
	}}}}

	// two items = 10, only the second has a whole-word verb = 3
	if got := CompletenessScore(r); got != 13 {
		t.Fatalf("expected 13 got %d", got)
	}
}

func TestCompletenessScore_CapsAt100(t *testing.T) {
	items := make([]Item, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, ExperienceItem{Description: "• Achieved results"})
	}
	skills := make([]Item, 0, 20)
	for i := 0; i < 20; i++ {
		skills = append(skills, SkillItem{Name: "skill"})
	}
	r := Resume{
		PersonalInfo: contactInfo(),
		Sections: []Section{
			{ID: "summary", Content: strings.Repeat("x", 80)},
			{ID: "experience", Items: items},
			{ID: "education", Items: []Item{EducationItem{}}},
			{ID: "skills", Items: skills},
		},
	}

	got := CompletenessScore(r)
	if got != 100 {
		t.Fatalf("expected 100 got %d", got)
	}
	if again := CompletenessScore(r); again != got {
		t.Fatalf("score not idempotent: %d then %d", got, again)
	}
}

func TestCompletenessScore_UsesFirstSectionWithID(t *testing.T) {
	r := Resume{Sections: []Section{
		{ID: "education"},
		{ID: "education", Items: []Item{EducationItem{}}},
	}}
	if got := CompletenessScore(r); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
}

func TestAssess(t *testing.T) {
	cases := []struct {
		score        int
		status       Status
		improvements int
	}{
		{score: 100, status: StatusExcellent, improvements: 0},
		{score: 80, status: StatusExcellent, improvements: 0},
		{score: 79, status: StatusGood, improvements: 1},
		{score: 65, status: StatusGood, improvements: 2},
		{score: 55, status: StatusNeedsImprovement, improvements: 3},
		{score: 10, status: StatusNeedsImprovement, improvements: 4},
	}
	for _, tc := range cases {
		a := Assess(tc.score)
		if a.Status != tc.status {
			t.Errorf("score %d: expected status %s got %s", tc.score, tc.status, a.Status)
		}
		if len(a.Improvements) != tc.improvements {
			t.Errorf("score %d: expected %d improvements got %d", tc.score, tc.improvements, len(a.Improvements))
		}
	}
}

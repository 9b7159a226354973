package resume

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testDictionary(dedupe bool) Dictionary {
	return NewDictionary([]Category{
		{Name: "general", Keywords: []string{"Leadership", "data analysis"}},
		{Name: "tech", Keywords: []string{"Python", "go", "docker"}},
		{Name: "finance", Keywords: []string{"data analysis", "budgeting"}},
	}, dedupe)
}

func sampleResume() Resume {
	return Resume{
		PersonalInfo: PersonalInfo{Name: "Jane Doe", Summary: "Leadership in DATA ANALYSIS"},
		Sections: []Section{
			{ID: "skills", Items: []Item{SkillItem{Name: "Python", Level: 4}}},
			{ID: "hobbies", Items: []Item{TextItem("going hiking")}},
		},
	}
}

func TestFlatten(t *testing.T) {
	r := Resume{
		PersonalInfo: PersonalInfo{Name: "Jane", Email: "J@X.COM"},
		Sections: []Section{
			{ID: "summary", Content: "Seasoned Engineer"},
			{ID: "experience", Items: []Item{ExperienceItem{Company: "Acme", Current: true}}},
			{ID: "custom", Items: []Item{TextItem("Chess")}},
		},
	}
	want := "jane j@x.com seasoned engineer acme chess"
	if got := Flatten(r); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestMatchKeywords_EmptyJobDescription(t *testing.T) {
	got := MatchKeywords("", sampleResume(), testDictionary(false), MatchOptions{})
	if got.Score != 0 || len(got.Matching) != 0 || len(got.Missing) != 0 {
		t.Fatalf("expected empty result got %+v", got)
	}
}

func TestMatchKeywords_PreservesDuplicates(t *testing.T) {
	job := "We need leadership, Data Analysis, Python and Docker skills, budgeting a plus."
	got := MatchKeywords(job, sampleResume(), testDictionary(false), MatchOptions{})

	wantMatching := []string{"Leadership", "data analysis", "Python", "data analysis"}
	wantMissing := []string{"docker", "budgeting"}
	if !reflect.DeepEqual(got.Matching, wantMatching) {
		t.Fatalf("matching: expected %v got %v", wantMatching, got.Matching)
	}
	if !reflect.DeepEqual(got.Missing, wantMissing) {
		t.Fatalf("missing: expected %v got %v", wantMissing, got.Missing)
	}
	if got.Score != 67 {
		t.Fatalf("expected score 67 got %d", got.Score)
	}
}

func TestMatchKeywords_Dedupe(t *testing.T) {
	job := "leadership and data analysis"
	got := MatchKeywords(job, sampleResume(), testDictionary(true), MatchOptions{})
	want := []string{"Leadership", "data analysis"}
	if !reflect.DeepEqual(got.Matching, want) {
		t.Fatalf("expected %v got %v", want, got.Matching)
	}
	if got.Score != 100 {
		t.Fatalf("expected 100 got %d", got.Score)
	}
}

func TestMatchKeywords_SubstringVersusWordBoundary(t *testing.T) {
	dict := NewDictionary([]Category{{Name: "tech", Keywords: []string{"go"}}}, true)
	job := "Ongoing work with Go services"
	r := Resume{Sections: []Section{{ID: "hobbies", Items: []Item{TextItem("going hiking")}}}}

	legacy := MatchKeywords(job, r, dict, MatchOptions{})
	if !reflect.DeepEqual(legacy.Matching, []string{"go"}) {
		t.Fatalf("substring mode: expected go to match inside going, got %+v", legacy)
	}

	strict := MatchKeywords(job, r, dict, MatchOptions{WordBoundary: true})
	if !reflect.DeepEqual(strict.Missing, []string{"go"}) || len(strict.Matching) != 0 {
		t.Fatalf("word boundary mode: expected go missing, got %+v", strict)
	}
	if strict.Score != 0 {
		t.Fatalf("expected 0 got %d", strict.Score)
	}
}

func TestMatchKeywords_Deterministic(t *testing.T) {
	dict := DefaultDictionary(false)
	job := "Python developer with AWS, Docker, compliance and data analysis experience"
	first := MatchKeywords(job, sampleResume(), dict, MatchOptions{})
	second := MatchKeywords(job, sampleResume(), dict, MatchOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestContainsWord(t *testing.T) {
	cases := []struct {
		haystack, needle string
		want             bool
	}{
		{"go developer", "go", true},
		{"ongoing", "go", false},
		{"going, go!", "go", true},
		{"c++ and rust", "c++", true},
		{"node.js", "node.js", true},
		{"anything", "", false},
	}
	for _, tc := range cases {
		if got := containsWord(tc.haystack, tc.needle); got != tc.want {
			t.Errorf("containsWord(%q, %q) = %v", tc.haystack, tc.needle, got)
		}
	}
}

func TestLoadDictionaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := "categories:\n  - name: tech\n    keywords: [python, docker]\n  - name: data\n    keywords: [Python, sql]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	dict, err := LoadDictionaryFile(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"python", "docker", "sql"}
	if !reflect.DeepEqual(dict.Keywords(), want) {
		t.Fatalf("expected %v got %v", want, dict.Keywords())
	}
	if len(dict.Categories()) != 2 {
		t.Fatalf("expected 2 categories got %d", len(dict.Categories()))
	}
}

func TestSuggestSkills(t *testing.T) {
	r := Resume{Sections: []Section{{ID: "skills", Items: []Item{SkillItem{Name: "leadership"}}}}}
	got := SuggestSkills(r, testDictionary(false), 3)
	want := []string{"data analysis", "Python", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestImproveItem(t *testing.T) {
	improved, ok := ImproveItem(ExperienceItem{Company: "Acme", Description: "did stuff"})
	if !ok {
		t.Fatalf("expected experience item to be improvable")
	}
	exp := improved.(ExperienceItem)
	if exp.Company != "Acme" || exp.Description != ImprovedDescription {
		t.Fatalf("unexpected improved item %+v", exp)
	}
	if _, ok := ImproveItem(SkillItem{Name: "Go"}); ok {
		t.Fatalf("skills have no description")
	}
}

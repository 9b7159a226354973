package main

import (
	"fmt"
	"io"
	"strings"

	"atsResume/internal/resume"
)

func writeReport(w io.Writer, doc resume.Resume, jobDescription string, dict resume.Dictionary, opts resume.MatchOptions) {
	assessment := resume.Assess(resume.CompletenessScore(doc))

	fmt.Fprintf(w, "简历: %s (%s)\n", doc.Name, doc.ID)
	fmt.Fprintf(w, "完整度: %d/100 [%s] %s\n", assessment.Score, assessment.Status, assessment.Headline)
	for _, tip := range assessment.Improvements {
		fmt.Fprintf(w, "  - %s\n", tip)
	}

	if strings.TrimSpace(jobDescription) == "" {
		return
	}

	match := resume.MatchKeywords(jobDescription, doc, dict, opts)
	fmt.Fprintf(w, "职位匹配: %d%%\n", match.Score)
	fmt.Fprintf(w, "  已覆盖: %s\n", joinOrDash(match.Matching))
	fmt.Fprintf(w, "  缺失:   %s\n", joinOrDash(match.Missing))
}

func joinOrDash(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}

package resume

import "strings"

// Flatten 将简历中所有非空字符串字段以空格拼接并转为小写，作为关键词检索语料。
func Flatten(r Resume) string {
	parts := r.PersonalInfo.appendText(nil)
	for _, s := range r.Sections {
		if s.Content != "" {
			parts = append(parts, s.Content)
		}
		for _, item := range s.Items {
			if item == nil {
				continue
			}
			parts = item.appendText(parts)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

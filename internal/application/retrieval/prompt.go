package retrieval

import (
	"fmt"
	"strings"
)

const defaultContextRunes = 2000

// BuildContext 将命中结果渲染为可注入 Prompt 的参考段落，总长度不超过 maxRunes
func BuildContext(hits []Hit, maxRunes int) string {
	if len(hits) == 0 {
		return ""
	}
	if maxRunes <= 0 {
		maxRunes = defaultContextRunes
	}

	lines := make([]string, 0, len(hits)+1)
	lines = append(lines, "Related passages:")
	budget := maxRunes
	for i, h := range hits {
		txt := compactOneLine(h.Content)
		if txt == "" {
			continue
		}
		ref := h.RefType
		if ref == "" {
			ref = RefTypeNote
		}
		prefix := fmt.Sprintf("[%d] (%s #%d) ", i+1, ref, h.RefID)
		if budget <= 0 {
			break
		}
		txt = truncateRunes(txt, budget)
		budget -= len([]rune(txt))
		lines = append(lines, prefix+txt)
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}

package node

import (
	"strings"

	"novel-assistant-api/internal/domain/entity"
)

const (
	briefSnippetRunes = 80
	emptyBrief        = "None"
)

// BuildCharacterBrief 每个角色一行：名字 (定位): 简介前 80 字
func BuildCharacterBrief(characters []*entity.Character) string {
	if len(characters) == 0 {
		return emptyBrief
	}
	lines := make([]string, 0, len(characters))
	for _, c := range characters {
		role := "role unknown"
		if c.Role != nil && *c.Role != "" {
			role = *c.Role
		}
		lines = append(lines, c.Name+" ("+role+"): "+TruncateByRunes(c.DescriptionText(), briefSnippetRunes))
	}
	return strings.Join(lines, "\n")
}

// BuildWorldBrief 每个条目一行：类型 - 标题: 内容前 80 字
func BuildWorldBrief(elements []*entity.WorldElement) string {
	if len(elements) == 0 {
		return emptyBrief
	}
	lines := make([]string, 0, len(elements))
	for _, e := range elements {
		typ := e.Type
		if typ == "" {
			typ = "world"
		}
		lines = append(lines, typ+" - "+e.Title+": "+TruncateByRunes(e.ContentText(), briefSnippetRunes))
	}
	return strings.Join(lines, "\n")
}

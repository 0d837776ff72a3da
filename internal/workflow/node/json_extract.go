// Package node 提供工作流中可复用的文本处理节点
package node

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseJSONObject 宽松解析模型输出的 JSON 对象：
// 先按原文解析，失败后截取首个 { 到最后一个 } 之间的片段，仍失败返回空 map
func ParseJSONObject(s string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err == nil && out != nil {
		return out
	}

	if block := jsonBlockRe.FindString(s); block != "" {
		out = nil
		if err := json.Unmarshal([]byte(block), &out); err == nil && out != nil {
			return out
		}
	}
	return map[string]any{}
}

// StringList 读取 JSON 对象中的字符串数组字段，非字符串元素被忽略
func StringList(obj map[string]any, key string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// NonEmptyLines 按行拆分并去掉空白行
func NonEmptyLines(s string) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

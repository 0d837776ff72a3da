package retrieval

const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 100
)

// ChunkText 按字符滑动窗口切分文本，相邻窗口共享 overlap 个字符
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	// overlap 不小于 size 时窗口无法前进
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	out := make([]string, 0, len(runes)/(size-overlap)+1)
	for start := 0; start < len(runes); {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return out
}

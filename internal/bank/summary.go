package bank

import "sort"

// SectionCount is the number of usable questions in one section.
type SectionCount struct {
	Section   int
	Questions int
	True      int
}

// Summarize counts pool questions per section, ordered by section.
func Summarize(pool []Question) []SectionCount {
	idx := make(map[int]int)
	var out []SectionCount
	for _, q := range pool {
		i, ok := idx[q.Section]
		if !ok {
			i = len(out)
			idx[q.Section] = i
			out = append(out, SectionCount{Section: q.Section})
		}
		out[i].Questions++
		if q.Answer {
			out[i].True++
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Section < out[b].Section })
	return out
}

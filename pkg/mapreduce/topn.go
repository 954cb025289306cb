package mapreduce

import (
	"fmt"
	"sort"
	"strings"
)

// TopN returns the n most frequent values of one facet as "value:count"
// strings. Ties are broken by value so output is stable.
func TopN(counts map[string]int, facet string, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	prefix := facet + ":"
	var ss []kv
	for k, v := range counts {
		if value, ok := strings.CutPrefix(k, prefix); ok {
			ss = append(ss, kv{value, v})
		}
	}

	// Sort by count (descending)
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	top := make([]string, limit)
	for i := 0; i < limit; i++ {
		top[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}

	return top
}

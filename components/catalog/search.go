package catalog

import (
	"sort"
	"strings"
)

// Option is a single entry of the JSON response.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Rank orders options so labels starting with query come first, keeps the
// incoming order within each group and applies the limit.
func Rank(options []Option, query string, limit int, opts Options) []Option {
	return Page(Match(options, query, OrderRank, opts), 0, limit, opts)
}

// Match returns the options whose label contains query, ignoring case. With
// OrderRank prefix matches come first; the incoming order is kept otherwise
// and within each group.
func Match(options []Option, query string, order Order, opts Options) []Option {
	query = strings.TrimSpace(query)
	if query == "" && opts.EmptySearchMode == EmptySearchNone {
		return nil
	}

	q := strings.ToLower(query)
	ranked := make([]rankedOption, 0, len(options))
	for i, option := range options {
		label := strings.ToLower(option.Label)
		if q != "" && !strings.Contains(label, q) {
			continue
		}
		ranked = append(ranked, rankedOption{
			option:   option,
			index:    i,
			isPrefix: order != OrderCatalog && q != "" && strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].isPrefix != ranked[j].isPrefix {
			return ranked[i].isPrefix
		}
		return ranked[i].index < ranked[j].index
	})

	out := make([]Option, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.option)
	}
	return out
}

// Page returns at most limit matches starting at offset. The limit is
// clamped like the limit query parameter.
func Page(matches []Option, offset, limit int, opts Options) []Option {
	limit = clampLimit(limit, opts)
	if limit == 0 || offset >= len(matches) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	matches = matches[offset:]
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return append([]Option(nil), matches...)
}

type rankedOption struct {
	option   Option
	index    int
	isPrefix bool
}

package todos

import (
	"sort"
)

const (
	SortPriority = "priority"
	SortDue      = "due"
	SortUpdated  = "updated"

	FilterAll  = "all"
	FilterOpen = "open"
)

// ListOptions are the query parameters of the list page.
type ListOptions struct {
	Sort   string `form:"sort"`
	Status string `form:"status"`
}

func (o ListOptions) normalized() ListOptions {
	switch o.Sort {
	case SortPriority, SortDue, SortUpdated:
	default:
		o.Sort = ""
	}
	if o.Status != FilterOpen {
		o.Status = FilterAll
	}
	return o
}

// ApplyListOptions filters and sorts todos without touching the input slice.
// With no sort key the store order is kept.
func ApplyListOptions(todos []Todo, opts ListOptions) []Todo {
	opts = opts.normalized()

	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if opts.Status == FilterOpen && t.IsDone() {
			continue
		}
		out = append(out, t)
	}

	switch opts.Sort {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.rank() < out[j].Priority.rank()
		})
	case SortDue:
		// todos without a due date go last
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			return a < b
		})
	case SortUpdated:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
	}
	return out
}

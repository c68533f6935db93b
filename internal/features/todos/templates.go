package todos

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateTimeLayout = "2006-01-02 15:04"

// Templates parses the page templates with formatting helpers bound to loc.
func Templates(loc *time.Location) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs(loc)).ParseFS(templateFS, "templates/*.html")
}

func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"formatDateTime": func(v any) string {
			var t time.Time
			switch tv := v.(type) {
			case time.Time:
				t = tv
			case *time.Time:
				if tv == nil {
					return ""
				}
				t = *tv
			default:
				return ""
			}
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format(dateTimeLayout)
		},
		"statusLabel": func(s Status) string {
			if s == StatusDone {
				return "Done"
			}
			return "Open"
		},
		"lower": func(v any) string {
			switch tv := v.(type) {
			case Priority:
				return strings.ToLower(string(tv))
			case string:
				return strings.ToLower(tv)
			}
			return ""
		},
		"priorities": func() []Priority {
			return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
		},
	}
}

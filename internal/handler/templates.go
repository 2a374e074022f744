package handler

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fnaconcept/site/internal/service"
)

var frenchTitle = cases.Title(language.French)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},

		// String functions
		"title": func(v interface{}) string {
			return frenchTitle.String(fmt.Sprint(v))
		},
		"upper": func(s string) string {
			return cases.Upper(language.French).String(s)
		},

		// cn merges Tailwind class lists; later classes win over conflicting
		// earlier ones ("px-4" then "px-2" gives "px-2").
		"cn": func(classes ...string) string {
			return twmerge.Merge(classes...)
		},

		// Conditional/Logic functions
		"ternary": func(condition bool, trueVal, falseVal interface{}) interface{} {
			if condition {
				return trueVal
			}
			return falseVal
		},

		// Collection functions
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},

		// Icons
		"icon": func(name, class string) template.HTML {
			return Icon(name, class)
		},

		// Responsive images served by /img/{name}
		"imgURL": func(name string, width int) string {
			return imageURL(name, width)
		},
		"imgSrcset": func(name string) string {
			return imageSrcset(name)
		},

		// telURL marks a tel: link as safe; html/template only trusts
		// http, https and mailto by default.
		"telURL": func(s string) template.URL {
			if !strings.HasPrefix(s, "tel:") {
				return template.URL("#")
			}
			return template.URL(s)
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`, template.HTMLEscapeString(token)))
		},
	}
}

func imageURL(name string, width int) string {
	return "/img/" + name + "?w=" + strconv.Itoa(width)
}

// imageSrcset lists every served width of an image for a srcset attribute.
func imageSrcset(name string) string {
	parts := make([]string, 0, len(service.AllowedWidths))
	for _, w := range service.AllowedWidths {
		parts = append(parts, imageURL(name, w)+" "+strconv.Itoa(w)+"w")
	}
	return strings.Join(parts, ", ")
}

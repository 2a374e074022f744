package handler

import (
	"html/template"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// iconPaths holds the outline path data of the inline icons, 24x24 viewBox.
var iconPaths = map[string][]string{
	"icon-masonry": {
		"M3 4.5h18v15H3z",
		"M3 9.5h18M3 14.5h18M9 4.5v5M15 9.5v5M9 14.5v5",
	},
	"icon-paint": {
		"M4.5 3.75h12a1.5 1.5 0 011.5 1.5v3a1.5 1.5 0 01-1.5 1.5h-12A1.5 1.5 0 013 8.25v-3a1.5 1.5 0 011.5-1.5z",
		"M18 6.75h1.5a1.5 1.5 0 011.5 1.5v2.25a1.5 1.5 0 01-1.5 1.5H12v2.25",
		"M10.5 14.25h3v6h-3z",
	},
	"icon-plaster": {
		"M3 20.25l6.75-6.75",
		"M9.75 13.5l3-3 7.5-7.5-3 7.5-4.5 4.5z",
		"M3 3.75h7.5M3 7.5h4.5",
	},
	"icon-electric": {
		"M3.75 13.5l10.5-11.25L12 10.5h8.25L9.75 21.75 12 13.5H3.75z",
	},
	"icon-plumbing": {
		"M4.5 9.75h6a3 3 0 013 3v7.5",
		"M4.5 6.75v6M10.5 20.25h6",
		"M16.5 3.75h3v4.5h-3z",
		"M18 8.25v1.5a3 3 0 01-3 3h-1.5",
	},
	"icon-phone": {
		"M2.25 6.75c0 8.284 6.716 15 15 15h2.25a2.25 2.25 0 002.25-2.25v-1.372c0-.516-.351-.966-.852-1.091l-4.423-1.106c-.44-.11-.902.055-1.173.417l-.97 1.293c-.282.376-.769.542-1.21.38a12.035 12.035 0 01-7.143-7.143c-.162-.441.004-.928.38-1.21l1.293-.97c.363-.271.527-.734.417-1.173L6.963 3.102a1.125 1.125 0 00-1.091-.852H4.5A2.25 2.25 0 002.25 4.5v2.25z",
	},
	"icon-mail": {
		"M21.75 6.75v10.5a2.25 2.25 0 01-2.25 2.25h-15a2.25 2.25 0 01-2.25-2.25V6.75",
		"M21.75 6.75a2.25 2.25 0 00-2.25-2.25h-15a2.25 2.25 0 00-2.25 2.25l9.75 6 9.75-6z",
	},
	"icon-location": {
		"M15 10.5a3 3 0 11-6 0 3 3 0 016 0z",
		"M19.5 10.5c0 7.142-7.5 11.25-7.5 11.25S4.5 17.642 4.5 10.5a7.5 7.5 0 1115 0z",
	},
	"icon-menu": {
		"M3.75 6.75h16.5M3.75 12h16.5m-16.5 5.25h16.5",
	},
	"icon-close": {
		"M6 18L18 6M6 6l12 12",
	},
	"icon-check": {
		"M9 12.75L11.25 15 15 9.75M21 12a9 9 0 11-18 0 9 9 0 0118 0z",
	},
	"icon-alert": {
		"M12 9v3.75m9-.75a9 9 0 11-18 0 9 9 0 0118 0zm-9 3.75h.008v.008H12v-.008z",
	},
}

// IconNode returns the named icon as an SVG node. Unknown names render an
// empty SVG of the same size so the layout does not shift.
func IconNode(name, class string) g.Node {
	paths := iconPaths[name]
	children := []g.Node{
		g.Attr("xmlns", "http://www.w3.org/2000/svg"),
		g.Attr("viewBox", "0 0 24 24"),
		g.Attr("fill", "none"),
		g.Attr("stroke", "currentColor"),
		g.Attr("stroke-width", "1.5"),
		g.Attr("aria-hidden", "true"),
		h.Class(class),
	}
	for _, d := range paths {
		children = append(children, g.El("path",
			g.Attr("stroke-linecap", "round"),
			g.Attr("stroke-linejoin", "round"),
			g.Attr("d", d),
		))
	}
	return g.El("svg", children...)
}

// Icon renders the named icon for use in html/template.
func Icon(name, class string) template.HTML {
	var b strings.Builder
	if err := IconNode(name, class).Render(&b); err != nil {
		return ""
	}
	return template.HTML(b.String())
}

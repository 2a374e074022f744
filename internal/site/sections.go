package site

import "log/slog"

// TopAnchor is where navigation lands when a target has no section.
const TopAnchor = "#top"

// Sections resolves navigation targets to page anchors.
type Sections struct {
	ids    map[string]bool
	logger *slog.Logger
}

// NewSections indexes the sections of c.
func NewSections(c *Content, logger *slog.Logger) *Sections {
	if logger == nil {
		logger = slog.Default()
	}
	ids := make(map[string]bool, len(c.Sections))
	for _, id := range c.Sections {
		ids[id] = true
	}
	return &Sections{ids: ids, logger: logger}
}

// Has reports whether the page has a section with this id.
func (s *Sections) Has(id string) bool {
	return s.ids[id]
}

// Resolve returns the anchor for a section id. Unknown ids resolve to the top
// of the page with a warning, and found is false.
func (s *Sections) Resolve(id string) (anchor string, found bool) {
	if s.ids[id] {
		return "#" + id, true
	}
	s.logger.Warn("section not found", "id", id)
	return TopAnchor, false
}

// Package site holds the static content of the one-page site and resolves
// navigation targets to page anchors.
package site

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// NavItem is one entry of the navigation bar.
type NavItem struct {
	Label  string `yaml:"label"`
	Target string `yaml:"target"`
}

// Hero is the banner at the top of the page.
type Hero struct {
	Title     string `yaml:"title"`
	Subtitle  string `yaml:"subtitle"`
	CTALabel  string `yaml:"cta_label"`
	CTATarget string `yaml:"cta_target"`
	Image     string `yaml:"image"`
	ImageAlt  string `yaml:"image_alt"`
}

// About is the company presentation.
type About struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	ImageAlt    string `yaml:"image_alt"`
}

// Service is one trade offered by the company. Icon names an inline icon.
type Service struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// TrustPoint is one reason to trust the company. IconURL points to an image.
type TrustPoint struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	IconURL     string `yaml:"icon_url"`
}

// ContactInfo is shown next to the contact form.
type ContactInfo struct {
	Address string   `yaml:"address"`
	Emails  []string `yaml:"emails"`
	Phone   string   `yaml:"phone"`
}

// PhoneHref returns a tel: link for the phone number.
func (c ContactInfo) PhoneHref() string {
	return "tel:" + strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, c.Phone)
}

// Footer is the page footer.
type Footer struct {
	Tagline string `yaml:"tagline"`
	Rights  string `yaml:"rights"`
}

// Content is everything the page displays.
type Content struct {
	Company     string       `yaml:"company"`
	Navigation  []NavItem    `yaml:"navigation"`
	Sections    []string     `yaml:"sections"`
	Hero        Hero         `yaml:"hero"`
	About       About        `yaml:"about"`
	Services    []Service    `yaml:"services"`
	TrustPoints []TrustPoint `yaml:"trust_points"`
	Contact     ContactInfo  `yaml:"contact"`
	Footer      Footer       `yaml:"footer"`
}

// Copyright returns the footer copyright line for year.
func (c *Content) Copyright(year int) string {
	return fmt.Sprintf("Copyright © %d %s. %s", year, c.Company, c.Footer.Rights)
}

// Parse decodes and validates YAML content.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load returns the content at path, or the embedded content when path is
// empty.
func Load(path string) (*Content, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded content.
func Default() (*Content, error) {
	return Parse(defaultContent)
}

// Validate checks that ids and labels are present and that ids are unique
// within each table.
func (c *Content) Validate() error {
	if strings.TrimSpace(c.Company) == "" {
		return fmt.Errorf("content: company is required")
	}

	seen := make(map[string]bool)
	for i, s := range c.Sections {
		if s == "" {
			return fmt.Errorf("content: sections[%d] is empty", i)
		}
		if seen[s] {
			return fmt.Errorf("content: duplicate section %q", s)
		}
		seen[s] = true
	}

	for i, n := range c.Navigation {
		if n.Label == "" || n.Target == "" {
			return fmt.Errorf("content: navigation[%d] needs a label and a target", i)
		}
	}

	seen = make(map[string]bool)
	for i, s := range c.Services {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("content: services[%d] needs an id and a name", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("content: duplicate service id %q", s.ID)
		}
		seen[s.ID] = true
	}

	seen = make(map[string]bool)
	for i, tp := range c.TrustPoints {
		if tp.ID == "" || tp.Title == "" {
			return fmt.Errorf("content: trust_points[%d] needs an id and a title", i)
		}
		if seen[tp.ID] {
			return fmt.Errorf("content: duplicate trust point id %q", tp.ID)
		}
		seen[tp.ID] = true
	}

	return nil
}

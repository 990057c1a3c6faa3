package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FrontMatter holds data scraped from a Markdown page.
type FrontMatter struct {
	Title       string    `toml:"title" yaml:"title"`             // Title of this page
	Description string    `toml:"description" yaml:"description"` // Meta description
	Date        time.Time `toml:"date" yaml:"date"`               // Date the page was written
	Template    string    `toml:"template" yaml:"template"`       // The name of the layout to use
	Tags        []string  `toml:"tags" yaml:"tags"`               // Tags to assign to this page
}

// front matter delimiters: "+++" for TOML and "---" for YAML.
var (
	tomlRegexp = regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`)
	yamlRegexp = regexp.MustCompile(`(?m)^\s*---\s*$`)
)

// splitFrontMatter separates the front matter from the content. isYAML reports
// which syntax the front matter uses.
func splitFrontMatter(x []byte) (fm, r []byte, isYAML bool) {
	if fm, r, ok := split(tomlRegexp, x); ok {
		return fm, r, false
	}
	if fm, r, ok := split(yamlRegexp, x); ok {
		return fm, r, true
	}
	return nil, x, false
}

func split(re *regexp.Regexp, x []byte) (fm, r []byte, ok bool) {
	subs := re.Split(string(x), 3)
	if len(subs) != 3 {
		return nil, x, false
	}
	if s := strings.TrimSpace(subs[0]); len(s) > 0 {
		return nil, x, false
	}
	return []byte(strings.TrimSpace(subs[1])), []byte(strings.TrimSpace(subs[2])), true
}

// parseFrontMatter extracts and unmarshals the front matter of a Markdown file.
func parseFrontMatter(b []byte) (FrontMatter, []byte, error) {
	var front FrontMatter
	fm, r, isYAML := splitFrontMatter(b)
	if len(fm) == 0 {
		return front, r, nil
	}
	var err error
	if isYAML {
		err = yaml.Unmarshal(fm, &front)
	} else {
		err = toml.Unmarshal(fm, &front)
	}
	if err != nil {
		return front, r, fmt.Errorf("parseFrontMatter: %w", err)
	}
	return front, r, nil
}

/*
Package settings loads the build configuration of a panels site.

The configuration lives in a single file at the root of the site, either "settings.json"
or a TOML file such as "settings.toml". Every key names a directory relative to the
working directory:

	Key        Default     Description
	---------  ----------  -------------------------------------------------
	output     public      Destination of the generated site
	comics     comics      Comic templates, named by sequence number ("3.html")
	pages      pages       Standalone page templates ("about.html")
	templates  templates   Layouts and partials, including "pagination.html"
	assets     assets      Copied verbatim into output/assets
	images     images      Copied verbatim into output/images
	static     static      Copied verbatim into the output root
	workers    NumCPU      Maximum concurrent file operations per stage
	linkMode   id          "id" or "position"; see LinkMode

Trailing slashes are optional; paths are joined rather than concatenated.
*/
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LinkMode selects how neighbor links between comics are named.
type LinkMode string

const (
	// LinkByID points prev/next links at the neighbor's parsed file name number,
	// while output folders are named by position. This is the historical behavior.
	LinkByID LinkMode = "id"
	// LinkByPosition points prev/next links at the neighbor's position, matching
	// the output folder names even when file numbers have gaps.
	LinkByPosition LinkMode = "position"
)

// Settings holds the directories used by a build. It is read once and not
// modified while a build runs.
type Settings struct {
	Output    string   `json:"output" toml:"output"`
	Comics    string   `json:"comics" toml:"comics"`
	Pages     string   `json:"pages" toml:"pages"`
	Templates string   `json:"templates" toml:"templates"`
	Assets    string   `json:"assets" toml:"assets"`
	Images    string   `json:"images" toml:"images"`
	Static    string   `json:"static" toml:"static"`
	Workers   int      `json:"workers" toml:"workers"`
	LinkMode  LinkMode `json:"linkMode" toml:"linkMode"`
}

// Default returns the settings used for keys missing from the configuration file.
func Default() Settings {
	return Settings{
		Output:    "public",
		Comics:    "comics",
		Pages:     "pages",
		Templates: "templates",
		Assets:    "assets",
		Images:    "images",
		Static:    "static",
		Workers:   runtime.NumCPU(),
		LinkMode:  LinkByID,
	}
}

// Load reads the configuration file at name. Files ending in ".toml" are parsed
// as TOML; anything else is parsed as JSON.
func Load(name string) (Settings, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return Settings{}, fmt.Errorf("Cannot read settings file: %w", err)
	}
	return Parse(b, strings.EqualFold(filepath.Ext(name), ".toml"))
}

// Parse decodes configuration data, fills in defaults, and validates the result.
func Parse(b []byte, isTOML bool) (Settings, error) {
	cfg := Default()
	var err error
	if isTOML {
		err = toml.Unmarshal(b, &cfg)
	} else {
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("Cannot parse settings file: %w", err)
	}
	cfg.clean()
	if err = cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// clean normalizes the paths and restores defaults for blank values.
func (s *Settings) clean() {
	d := Default()
	for _, p := range []struct {
		v   *string
		def string
	}{
		{&s.Output, d.Output},
		{&s.Comics, d.Comics},
		{&s.Pages, d.Pages},
		{&s.Templates, d.Templates},
		{&s.Assets, d.Assets},
		{&s.Images, d.Images},
		{&s.Static, d.Static},
	} {
		if strings.TrimSpace(*p.v) == "" {
			*p.v = p.def
		}
		*p.v = filepath.Clean(filepath.FromSlash(*p.v))
	}
	if s.Workers <= 0 {
		s.Workers = d.Workers
	}
	if s.LinkMode == "" {
		s.LinkMode = d.LinkMode
	}
}

// Validate reports settings that would make a build unsafe or ambiguous. The
// output folder is emptied by every build, so it may not be the working
// directory or one of its parents, may not climb out of the working directory
// through "..", and may not overlap any source folder. Absolute output paths
// elsewhere are allowed.
func (s Settings) Validate() error {
	var errs []error
	out := s.Output
	switch {
	case out == "" || out == "." || filepath.Dir(out) == out:
		errs = append(errs, fmt.Errorf("output %q would delete the working directory", out))
	case !filepath.IsAbs(out) && (out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator))):
		errs = append(errs, fmt.Errorf("output %q is outside the working directory", out))
	default:
		absOut, err := filepath.Abs(out)
		if err != nil {
			errs = append(errs, fmt.Errorf("output %q: %w", out, err))
			break
		}
		if wd, err := os.Getwd(); err == nil && within(absOut, wd) {
			errs = append(errs, fmt.Errorf("output %q would delete the working directory", out))
		}
		for _, src := range []struct{ key, dir string }{
			{"comics", s.Comics},
			{"pages", s.Pages},
			{"templates", s.Templates},
			{"assets", s.Assets},
			{"images", s.Images},
			{"static", s.Static},
		} {
			absDir, err := filepath.Abs(src.dir)
			if err != nil {
				continue
			}
			if within(absOut, absDir) || within(absDir, absOut) {
				errs = append(errs, fmt.Errorf("output %q overlaps %s folder %q", out, src.key, src.dir))
			}
		}
	}
	switch s.LinkMode {
	case LinkByID, LinkByPosition:
	default:
		errs = append(errs, fmt.Errorf("unknown linkMode %q", s.LinkMode))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("Invalid settings: %w", err)
	}
	return nil
}

// within reports whether path is parent or lies below it. Both must be
// absolute and clean.
func within(parent, path string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// SourceDirs returns the directories a build reads from.
func (s Settings) SourceDirs() []string {
	return []string{s.Comics, s.Pages, s.Templates, s.Assets, s.Images, s.Static}
}

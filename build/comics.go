package build

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ancientlore/panels/settings"
)

// PaginationTemplate is the partial in the templates folder that renders
// the navigation between comics.
const PaginationTemplate = "pagination.html"

// rootIndex is the file the latest comic is also written to at the output root.
const rootIndex = "index.html"

// Comic is one comic source file.
type Comic struct {
	Filename string // Name of the source file
	ID       int    // Number parsed from the file name, or 0
	Position int    // 1-based position after sorting; names the output folder
}

// comicID parses the number in a file name such as "12.html". Names that are
// not numbers yield 0.
func comicID(filename string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if err != nil {
		return 0
	}
	return n
}

// ListComics reads the comic sources in dir ordered by their number.
func ListComics(dir string) ([]Comic, error) {
	names, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	comics := make([]Comic, len(names))
	for i, nm := range names {
		comics[i] = Comic{Filename: nm, ID: comicID(nm)}
	}
	sort.SliceStable(comics, func(i, j int) bool { return comics[i].ID < comics[j].ID })
	for i := range comics {
		comics[i].Position = i + 1
	}
	return comics, nil
}

// Pagination describes the navigation links of one comic page. The links are
// relative to the comic's own output folder.
type Pagination struct {
	HasPrev  bool
	FirstURL string
	PrevURL  string
	HasNext  bool
	NextURL  string
	LastURL  string
}

// DisablePrev returns "disabled" when there is no previous page, for use as a class name.
func (p Pagination) DisablePrev() string {
	if p.HasPrev {
		return ""
	}
	return "disabled"
}

// DisableNext returns "disabled" when there is no next page, for use as a class name.
func (p Pagination) DisableNext() string {
	if p.HasNext {
		return ""
	}
	return "disabled"
}

// Map returns the pagination as template data.
func (p Pagination) Map() map[string]any {
	return map[string]any{
		"HasPrev":     p.HasPrev,
		"FirstURL":    p.FirstURL,
		"PrevURL":     p.PrevURL,
		"HasNext":     p.HasNext,
		"NextURL":     p.NextURL,
		"LastURL":     p.LastURL,
		"DisablePrev": p.DisablePrev(),
		"DisableNext": p.DisableNext(),
	}
}

// Paginate computes the links for the comic at 1-based position c.
func Paginate(comics []Comic, c int, mode settings.LinkMode) Pagination {
	var p Pagination
	if c > 1 {
		p.HasPrev = true
		p.FirstURL = "../1/"
		p.PrevURL = neighborURL(comics[c-2], mode)
	}
	if c < len(comics) {
		p.HasNext = true
		p.NextURL = neighborURL(comics[c], mode)
		p.LastURL = "../"
	}
	return p
}

func neighborURL(c Comic, mode settings.LinkMode) string {
	n := c.ID
	if mode == settings.LinkByPosition {
		n = c.Position
	}
	return "../" + strconv.Itoa(n) + "/"
}

// rootRelative rewrites quoted "../" prefixes to "/" so a page written for a
// numbered folder works from the site root.
var rootRelative = strings.NewReplacer(`"../`, `"/`, `'../`, `'/`)

// RootIndex converts the HTML of the latest comic into the site's index page.
func RootIndex(html string) string {
	return rootRelative.Replace(html)
}

// BuildComics renders every comic into output/<position>/index.html and
// copies the latest one to output/index.html.
func (b *Builder) BuildComics(ctx context.Context) {
	if err := EnsureDir(b.cfg.Comics); err != nil {
		b.report.fail(fmt.Errorf("buildComics: %w", err))
	}
	comics, err := ListComics(b.cfg.Comics)
	if err != nil {
		b.report.fail(fmt.Errorf("buildComics: %w", err))
		return
	}
	g := newGroup(ctx, b.cfg.Workers)
	for _, c := range comics {
		if !g.Go(func() { b.buildComic(comics, c) }) {
			b.report.fail(fmt.Errorf("buildComics: %w", ctx.Err()))
			break
		}
	}
	g.Wait()
}

// buildComic renders and writes a single comic.
func (b *Builder) buildComic(comics []Comic, c Comic) {
	p := Paginate(comics, c.Position, b.cfg.LinkMode)
	nav, err := b.renderer.Render(filepath.Join(b.cfg.Templates, PaginationTemplate), p.Map())
	if err != nil {
		b.report.fail(fmt.Errorf("buildComic %s: %w", c.Filename, err))
		return
	}
	html, err := b.renderer.Render(filepath.Join(b.cfg.Comics, c.Filename), map[string]any{
		"Pagination": template.HTML(nav),
	})
	if err != nil {
		b.report.fail(fmt.Errorf("buildComic %s: %w", c.Filename, err))
		return
	}
	dir := filepath.Join(b.cfg.Output, strconv.Itoa(c.Position))
	if err = EnsureDir(dir); err != nil {
		b.report.fail(fmt.Errorf("buildComic %s: %w", c.Filename, err))
		return
	}
	if err = os.WriteFile(filepath.Join(dir, "index.html"), []byte(html), 0o644); err != nil {
		b.report.fail(fmt.Errorf("buildComic %s: %w", c.Filename, err))
	} else {
		b.report.addComic()
	}
	if c.Position == len(comics) {
		err = os.WriteFile(filepath.Join(b.cfg.Output, rootIndex), []byte(RootIndex(html)), 0o644)
		if err != nil {
			b.report.fail(fmt.Errorf("buildComic %s: %w", c.Filename, err))
		}
	}
}

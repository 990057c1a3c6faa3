package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ancientlore/panels/settings"
)

// fakeRenderer echoes the source file and the pagination it was given.
type fakeRenderer struct {
	fail map[string]bool
}

func (f fakeRenderer) Render(name string, data map[string]any) (string, error) {
	base := filepath.Base(name)
	if f.fail[base] {
		return "", errors.New("render failed")
	}
	if base == PaginationTemplate {
		return fmt.Sprintf("first=%v prev=%v next=%v last=%v", data["FirstURL"], data["PrevURL"], data["NextURL"], data["LastURL"]), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<link href="../assets/s.css"><a href='../1/'>%s</a>[%v]`, b, data["Pagination"]), nil
}

func writeFile(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, data, 0o644))
}

// newSite lays out a site in a temporary folder with the given comic file names.
func newSite(t *testing.T, comics ...string) settings.Settings {
	t.Helper()
	root := t.TempDir()
	cfg := settings.Default()
	cfg.Output = filepath.Join(root, "public")
	cfg.Comics = filepath.Join(root, "comics")
	cfg.Pages = filepath.Join(root, "pages")
	cfg.Templates = filepath.Join(root, "templates")
	cfg.Assets = filepath.Join(root, "assets")
	cfg.Images = filepath.Join(root, "images")
	cfg.Static = filepath.Join(root, "static")
	cfg.Workers = 4
	require.NoError(t, os.MkdirAll(cfg.Comics, 0o755))
	for _, c := range comics {
		writeFile(t, filepath.Join(cfg.Comics, c), []byte("comic "+c))
	}
	return cfg
}

// readTree returns the contents of every file under dir keyed by slash path.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := fs.WalkDir(os.DirFS(dir), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		b, err := fs.ReadFile(os.DirFS(dir), p)
		if err != nil {
			return err
		}
		tree[p] = string(b)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func TestListComicsNumericOrder(t *testing.T) {
	cfg := newSite(t, "10.html", "2.html", "1.html", "cover.html", ".draft.html")
	require.NoError(t, os.Mkdir(filepath.Join(cfg.Comics, "old"), 0o755))

	comics, err := ListComics(cfg.Comics)
	require.NoError(t, err)
	require.Equal(t, []Comic{
		{Filename: "cover.html", ID: 0, Position: 1},
		{Filename: "1.html", ID: 1, Position: 2},
		{Filename: "2.html", ID: 2, Position: 3},
		{Filename: "10.html", ID: 10, Position: 4},
	}, comics)
}

func TestListComicsMissing(t *testing.T) {
	_, err := ListComics(filepath.Join(t.TempDir(), "none"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPaginate(t *testing.T) {
	comics := []Comic{{"1.html", 1, 1}, {"2.html", 2, 2}, {"3.html", 3, 3}}
	n := len(comics)
	for c := 1; c <= n; c++ {
		p := Paginate(comics, c, settings.LinkByID)
		require.Equal(t, c > 1, p.HasPrev, "position %d", c)
		require.Equal(t, c < n, p.HasNext, "position %d", c)
	}

	require.Equal(t, Pagination{HasNext: true, NextURL: "../2/", LastURL: "../"}, Paginate(comics, 1, settings.LinkByID))
	require.Equal(t, Pagination{
		HasPrev: true, FirstURL: "../1/", PrevURL: "../1/",
		HasNext: true, NextURL: "../3/", LastURL: "../",
	}, Paginate(comics, 2, settings.LinkByID))
	require.Equal(t, Pagination{HasPrev: true, FirstURL: "../1/", PrevURL: "../2/"}, Paginate(comics, 3, settings.LinkByID))

	single := Paginate(comics[:1], 1, settings.LinkByID)
	require.False(t, single.HasPrev)
	require.False(t, single.HasNext)
	require.Equal(t, "disabled", single.DisablePrev())
	require.Equal(t, "disabled", single.DisableNext())
}

func TestPaginateGaps(t *testing.T) {
	comics := []Comic{{"1.html", 1, 1}, {"2.html", 2, 2}, {"5.html", 5, 3}}

	p := Paginate(comics, 2, settings.LinkByID)
	require.Equal(t, "../5/", p.NextURL)

	p = Paginate(comics, 2, settings.LinkByPosition)
	require.Equal(t, "../3/", p.NextURL)

	p = Paginate(comics, 3, settings.LinkByID)
	require.Equal(t, "../2/", p.PrevURL)
	require.Equal(t, "../1/", p.FirstURL)
}

func TestRootIndex(t *testing.T) {
	in := `<a href="../"><img src="../images/1.png"><link href='../assets/a.css'> ../plain`
	require.Equal(t, `<a href="/"><img src="/images/1.png"><link href='/assets/a.css'> ../plain`, RootIndex(in))
}

func TestBuildComics(t *testing.T) {
	const count = 12
	var names []string
	for i := count; i >= 1; i-- {
		names = append(names, strconv.Itoa(i)+".html")
	}
	cfg := newSite(t, names...)

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	require.Equal(t, count, rep.Comics())

	tree := readTree(t, cfg.Output)
	for i := 1; i <= count; i++ {
		page, ok := tree[fmt.Sprintf("%d/index.html", i)]
		require.True(t, ok, "missing page %d", i)
		require.Contains(t, page, fmt.Sprintf("comic %d.html", i))
	}
	require.Contains(t, tree["1/index.html"], "first= prev= next=../2/ last=../")
	require.Contains(t, tree["12/index.html"], "first=../1/ prev=../11/ next= last=")
	require.Equal(t, RootIndex(tree["12/index.html"]), tree["index.html"])
	require.Contains(t, tree["index.html"], `href="/assets/s.css"`)
	require.Contains(t, tree["index.html"], `href='/1/'`)
}

func TestBuildPositionNaming(t *testing.T) {
	cfg := newSite(t, "1.html", "2.html", "5.html")

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())

	tree := readTree(t, cfg.Output)
	require.Contains(t, tree["3/index.html"], "comic 5.html")
	require.NotContains(t, tree, "5/index.html")
	// neighbor links use the file number by default
	require.Contains(t, tree["2/index.html"], "next=../5/")
}

func TestBuildEmptyComics(t *testing.T) {
	cfg := newSite(t)

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	require.Zero(t, rep.Comics())

	tree := readTree(t, cfg.Output)
	require.NotContains(t, tree, "index.html")
	for p := range tree {
		require.False(t, strings.HasSuffix(p, "/index.html"), "unexpected %s", p)
	}
}

func TestBuildMissingSources(t *testing.T) {
	cfg := newSite(t)
	require.NoError(t, os.RemoveAll(cfg.Comics))

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	for _, dir := range cfg.SourceDirs() {
		if dir == cfg.Templates {
			continue
		}
		require.DirExists(t, dir)
	}
	require.DirExists(t, filepath.Join(cfg.Output, "assets"))
	require.DirExists(t, filepath.Join(cfg.Output, "images"))
}

func TestResetOutputKeepsGit(t *testing.T) {
	cfg := newSite(t, "1.html")
	writeFile(t, filepath.Join(cfg.Output, ".git", "config"), []byte("[core]"))
	writeFile(t, filepath.Join(cfg.Output, "stale", "index.html"), []byte("old"))
	writeFile(t, filepath.Join(cfg.Output, "old.txt"), []byte("old"))

	b := New(cfg, fakeRenderer{})
	b.ResetOutput(context.Background())
	require.NoError(t, b.Report().Err())

	entries, err := os.ReadDir(cfg.Output)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ".git", entries[0].Name())
	b2, err := os.ReadFile(filepath.Join(cfg.Output, ".git", "config"))
	require.NoError(t, err)
	require.Equal(t, "[core]", string(b2))
}

func TestBuildIdempotent(t *testing.T) {
	cfg := newSite(t, "1.html", "2.html", "3.html")
	writeFile(t, filepath.Join(cfg.Pages, "about.html"), []byte("about"))
	writeFile(t, filepath.Join(cfg.Assets, "site.css"), []byte("body{}"))
	writeFile(t, filepath.Join(cfg.Static, "robots.txt"), []byte("User-agent: *"))
	writeFile(t, filepath.Join(cfg.Output, ".git", "HEAD"), []byte("ref: refs/heads/main"))

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	first := readTree(t, cfg.Output)

	rep = New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	second := readTree(t, cfg.Output)

	require.Equal(t, first, second)
	require.Equal(t, "ref: refs/heads/main", second[".git/HEAD"])
}

func TestBuildPages(t *testing.T) {
	cfg := newSite(t)
	writeFile(t, filepath.Join(cfg.Pages, "about.html"), []byte("about"))
	writeFile(t, filepath.Join(cfg.Pages, "archive.md"), []byte("archive"))
	writeFile(t, filepath.Join(cfg.Pages, "broken.html"), []byte("broken"))

	b := New(cfg, fakeRenderer{fail: map[string]bool{"broken.html": true}})
	b.BuildPages(context.Background())
	require.Equal(t, 2, b.Report().Pages())
	require.Equal(t, 1, b.Report().Failures())

	tree := readTree(t, cfg.Output)
	require.Contains(t, tree["about/index.html"], "about")
	require.Contains(t, tree["archive/index.html"], "archive")
	require.NotContains(t, tree, "broken/index.html")
}

func TestCopyTreePreservesBytes(t *testing.T) {
	cfg := newSite(t)
	blob := make([]byte, 256*4)
	for i := range blob {
		blob[i] = byte(i)
	}
	writeFile(t, filepath.Join(cfg.Images, "1.png"), blob)
	writeFile(t, filepath.Join(cfg.Assets, "app.js"), []byte("console.log(1)\r\n"))
	writeFile(t, filepath.Join(cfg.Static, "favicon.ico"), blob[:300])

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	require.Equal(t, 3, rep.Files())

	tree := readTree(t, cfg.Output)
	require.Equal(t, string(blob), tree["images/1.png"])
	require.Equal(t, "console.log(1)\r\n", tree["assets/app.js"])
	require.Equal(t, string(blob[:300]), tree["favicon.ico"])
}

func TestFailuresAreIsolated(t *testing.T) {
	cfg := newSite(t, "1.html", "2.html", "3.html")

	rep := New(cfg, fakeRenderer{fail: map[string]bool{"2.html": true}}).Run(context.Background())
	require.Equal(t, 1, rep.Failures())
	require.Equal(t, 2, rep.Comics())

	tree := readTree(t, cfg.Output)
	require.Contains(t, tree, "1/index.html")
	require.NotContains(t, tree, "2/index.html")
	require.Contains(t, tree, "3/index.html")
	require.Contains(t, tree, "index.html")
}

func TestPaginationFailure(t *testing.T) {
	cfg := newSite(t, "1.html", "2.html")

	rep := New(cfg, fakeRenderer{fail: map[string]bool{PaginationTemplate: true}}).Run(context.Background())
	require.Equal(t, 2, rep.Failures())
	require.Zero(t, rep.Comics())
}

func TestBuildCanceled(t *testing.T) {
	cfg := newSite(t, "1.html", "2.html")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := New(cfg, fakeRenderer{}).Run(ctx)
	require.ErrorIs(t, rep.Err(), context.Canceled)
	require.Zero(t, rep.Comics())
}

func TestBuildExample(t *testing.T) {
	example := filepath.Join("..", "example")
	cfg := settings.Default()
	cfg.Output = filepath.Join(t.TempDir(), "public")
	cfg.Comics = filepath.Join(example, "comics")
	cfg.Pages = filepath.Join(example, "pages")
	cfg.Templates = filepath.Join(example, "templates")
	cfg.Assets = filepath.Join(example, "assets")
	cfg.Images = filepath.Join(example, "images")
	cfg.Static = filepath.Join(example, "static")

	rep, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, rep.Err())
	require.Equal(t, 3, rep.Comics())
	require.Equal(t, 2, rep.Pages())
	require.Positive(t, rep.Elapsed)

	tree := readTree(t, cfg.Output)
	require.Contains(t, tree["1/index.html"], "<title>The Beginning</title>")
	require.Contains(t, tree["1/index.html"], `class="first disabled"`)
	require.Contains(t, tree["2/index.html"], `href="../3/"`)
	require.Contains(t, tree["3/index.html"], "<title>The End</title>")
	require.Contains(t, tree["3/index.html"], `src="../images/1.svg"`)
	require.Contains(t, tree["index.html"], `src="/images/1.svg"`)
	require.Contains(t, tree["index.html"], `href="/assets/style.css"`)
	require.Contains(t, tree["about/index.html"], "<h1>About</h1>")
	require.Contains(t, tree["archive/index.html"], "<title>Archive</title>")
	require.Contains(t, tree, "assets/style.css")
	require.Contains(t, tree, "images/1.svg")
	require.Contains(t, tree, "robots.txt")
	require.Contains(t, tree, "404.html")
	require.Contains(t, tree["sitemap.txt"], "https://example.com/3/\n")
	require.Contains(t, tree["sitemap.txt"], "https://example.com/archive/\n")
}

func TestNewComic(t *testing.T) {
	cfg := newSite(t)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	name, err := NewComic(cfg, now, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.Comics, "1.html"), name)
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	require.Contains(t, string(b), `{{template "comic" .}}`)
	require.Contains(t, string(b), "Sun Oct 18 2026")

	name, err = NewComic(cfg, now, true)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.Comics, "2.md"), name)
	b, err = os.ReadFile(name)
	require.NoError(t, err)
	require.Contains(t, string(b), "date = 2026-10-18T09:00:00Z")
}

func TestNewComicRendersWithExampleLayout(t *testing.T) {
	cfg := newSite(t)
	cfg.Templates = filepath.Join("..", "example", "templates")
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	_, err := NewComic(cfg, now, false)
	require.NoError(t, err)
	_, err = NewComic(cfg, now, true)
	require.NoError(t, err)

	rep, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, rep.Err())
	require.Equal(t, 2, rep.Comics())
}

func TestNewComicNoOverwrite(t *testing.T) {
	cfg := newSite(t, "2.html")

	_, err := NewComic(cfg, time.Now(), false)
	require.Error(t, err)
	b, err := os.ReadFile(filepath.Join(cfg.Comics, "2.html"))
	require.NoError(t, err)
	require.Equal(t, "comic 2.html", string(b))
}

func TestNewComicNumberTakenByOtherExtension(t *testing.T) {
	cfg := newSite(t, "1.html", "3.html")

	_, err := NewComic(cfg, time.Now(), true)
	require.ErrorContains(t, err, "comic 3 already exists")
	_, err = os.Stat(filepath.Join(cfg.Comics, "3.md"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildRejectsOutputOverSources(t *testing.T) {
	cfg := newSite(t, "1.html")
	cfg.Output = cfg.Comics

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.Equal(t, 1, rep.Failures())
	require.Zero(t, rep.Comics())
	b, err := os.ReadFile(filepath.Join(cfg.Comics, "1.html"))
	require.NoError(t, err)
	require.Equal(t, "comic 1.html", string(b))

	_, err = Build(context.Background(), cfg)
	require.ErrorContains(t, err, "overlaps comics folder")
}

func TestStaticIndexDoesNotReplaceRootIndex(t *testing.T) {
	cfg := newSite(t, "1.html", "2.html")
	writeFile(t, filepath.Join(cfg.Static, "index.html"), []byte("static index"))
	writeFile(t, filepath.Join(cfg.Static, "robots.txt"), []byte("robots"))

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.Equal(t, 1, rep.Failures())
	require.ErrorIs(t, rep.Err(), errRootIndexConflict)
	require.Equal(t, 2, rep.Comics())

	tree := readTree(t, cfg.Output)
	require.Equal(t, RootIndex(tree["2/index.html"]), tree["index.html"])
	require.Equal(t, "robots", tree["robots.txt"])
}

func TestStaticIndexWithoutComics(t *testing.T) {
	cfg := newSite(t)
	writeFile(t, filepath.Join(cfg.Static, "index.html"), []byte("static index"))

	rep := New(cfg, fakeRenderer{}).Run(context.Background())
	require.NoError(t, rep.Err())
	require.Equal(t, "static index", readTree(t, cfg.Output)["index.html"])
}

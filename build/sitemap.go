package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// SitemapTemplate is an optional text template in the templates folder. When it
// exists, it is executed with the slice of page URLs and written to
// output/sitemap.txt.
const SitemapTemplate = "sitemap.txt"

// SitemapURLs lists the folders a build writes pages to, relative to the output
// root: the root index, each comic by position, then each page by name.
func SitemapURLs(comicsDir, pagesDir string) ([]string, error) {
	urls := []string{""}
	comics, err := ListComics(comicsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, c := range comics {
		urls = append(urls, strconv.Itoa(c.Position)+"/")
	}
	pages, err := listFiles(pagesDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, p := range pages {
		urls = append(urls, strings.TrimSuffix(p, filepath.Ext(p))+"/")
	}
	return urls, nil
}

// BuildSitemap renders the sitemap template, if there is one.
func (b *Builder) BuildSitemap(ctx context.Context) {
	if ctx.Err() != nil {
		b.report.fail(fmt.Errorf("buildSitemap: %w", ctx.Err()))
		return
	}
	tpl, err := template.New(SitemapTemplate).ParseFiles(filepath.Join(b.cfg.Templates, SitemapTemplate))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.report.fail(fmt.Errorf("buildSitemap: %w", err))
		}
		return
	}
	urls, err := SitemapURLs(b.cfg.Comics, b.cfg.Pages)
	if err != nil {
		b.report.fail(fmt.Errorf("buildSitemap: %w", err))
		return
	}
	var out bytes.Buffer
	if err = tpl.Execute(&out, urls); err != nil {
		b.report.fail(fmt.Errorf("buildSitemap: %w", err))
		return
	}
	if err = EnsureDir(b.cfg.Output); err != nil {
		b.report.fail(fmt.Errorf("buildSitemap: %w", err))
		return
	}
	if err = os.WriteFile(filepath.Join(b.cfg.Output, SitemapTemplate), out.Bytes(), 0o644); err != nil {
		b.report.fail(fmt.Errorf("buildSitemap: %w", err))
		return
	}
	b.report.addFile()
}

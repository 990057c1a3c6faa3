/*
Package build regenerates a comic site from its sources.

A build is always a full rebuild. The output folder is emptied (except for a ".git"
folder, so the output can be its own repository), and then these stages run
concurrently:

	comics   comics/N.html    -> output/<position>/index.html, plus output/index.html
	pages    pages/name.html  -> output/name/index.html
	assets   assets/*         -> output/assets/*
	images   images/*         -> output/images/*
	static   static/*         -> output/* (except index.html when there are comics)
	sitemap  templates/sitemap.txt -> output/sitemap.txt (only when the template exists)

Comics are ordered by the number in their file name ("2.html" before "10.html"); names
that are not numbers count as 0. Each comic gets a pagination fragment rendered from
templates/pagination.html, passed to the comic as .Pagination. The latest comic is also
written to output/index.html with its "../" links rewritten to "/".

Build is best effort: a failing file is logged and skipped, and the rest of the build
carries on. The returned Report counts the failures.
*/
package build

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ancientlore/panels/render"
	"github.com/ancientlore/panels/settings"
)

// Builder runs the stages of a build against one set of settings.
type Builder struct {
	cfg      settings.Settings
	renderer render.Renderer
	report   *Report
}

// New returns a Builder that renders with r and records into a fresh Report.
func New(cfg settings.Settings, r render.Renderer) *Builder {
	return &Builder{
		cfg:      cfg,
		renderer: r,
		report:   &Report{},
	}
}

// Report returns the report the builder records into.
func (b *Builder) Report() *Report {
	return b.report
}

// Run resets the output folder and then runs every stage, returning once all
// of them have finished. Settings that fail validation are recorded as a
// failure and nothing is touched.
func (b *Builder) Run(ctx context.Context) *Report {
	start := time.Now()
	if err := b.cfg.Validate(); err != nil {
		b.report.fail(fmt.Errorf("build: %w", err))
		return b.report
	}
	b.ResetOutput(ctx)

	stages := newGroup(ctx, 0)
	for _, stage := range []func(){
		func() { b.BuildComics(ctx) },
		func() { b.BuildPages(ctx) },
		func() { b.CopyTree(ctx, b.cfg.Assets, filepath.Join(b.cfg.Output, "assets")) },
		func() { b.CopyTree(ctx, b.cfg.Images, filepath.Join(b.cfg.Output, "images")) },
		func() { b.CopyStatic(ctx) },
		func() { b.BuildSitemap(ctx) },
	} {
		if !stages.Go(stage) {
			b.report.fail(fmt.Errorf("build: %w", ctx.Err()))
			break
		}
	}
	stages.Wait()

	b.report.Elapsed = time.Since(start)
	log.Printf("Build time: %s", b.report.Elapsed)
	return b.report
}

// Build loads the templates and runs a complete build.
func Build(ctx context.Context, cfg settings.Settings) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tpl, err := render.New(cfg.Templates)
	if err != nil {
		return nil, err
	}
	return New(cfg, tpl).Run(ctx), nil
}

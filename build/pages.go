package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BuildPages renders each standalone page into output/<name>/index.html,
// where name is the file name without its extension.
func (b *Builder) BuildPages(ctx context.Context) {
	if err := EnsureDir(b.cfg.Pages); err != nil {
		b.report.fail(fmt.Errorf("buildPages: %w", err))
	}
	names, err := listFiles(b.cfg.Pages)
	if err != nil {
		b.report.fail(fmt.Errorf("buildPages: %w", err))
		return
	}
	g := newGroup(ctx, b.cfg.Workers)
	for _, nm := range names {
		if !g.Go(func() { b.buildPage(nm) }) {
			b.report.fail(fmt.Errorf("buildPages: %w", ctx.Err()))
			break
		}
	}
	g.Wait()
}

func (b *Builder) buildPage(filename string) {
	html, err := b.renderer.Render(filepath.Join(b.cfg.Pages, filename), nil)
	if err != nil {
		b.report.fail(fmt.Errorf("buildPage %s: %w", filename, err))
		return
	}
	dir := filepath.Join(b.cfg.Output, strings.TrimSuffix(filename, filepath.Ext(filename)))
	if err = EnsureDir(dir); err != nil {
		b.report.fail(fmt.Errorf("buildPage %s: %w", filename, err))
		return
	}
	if err = os.WriteFile(filepath.Join(dir, "index.html"), []byte(html), 0o644); err != nil {
		b.report.fail(fmt.Errorf("buildPage %s: %w", filename, err))
		return
	}
	b.report.addPage()
}

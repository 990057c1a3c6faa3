package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

var errRootIndexConflict = errors.New("conflicts with the latest comic at the output root; skipped")

// CopyTree copies every file in src into dst unchanged. Only the top level of
// src is copied.
func (b *Builder) CopyTree(ctx context.Context, src, dst string) {
	b.copyTree(ctx, src, dst, "")
}

// CopyStatic copies the static folder into the output root. A static
// index.html would race with the comic root index, so it is skipped and
// recorded as a failure when there are comics.
func (b *Builder) CopyStatic(ctx context.Context) {
	skip := ""
	if comics, err := ListComics(b.cfg.Comics); err == nil && len(comics) > 0 {
		skip = rootIndex
	}
	b.copyTree(ctx, b.cfg.Static, b.cfg.Output, skip)
}

func (b *Builder) copyTree(ctx context.Context, src, dst, skip string) {
	if err := EnsureDir(src); err != nil {
		b.report.fail(fmt.Errorf("copyTree: %w", err))
	}
	if err := EnsureDir(dst); err != nil {
		b.report.fail(fmt.Errorf("copyTree: %w", err))
		return
	}
	names, err := listFiles(src)
	if err != nil {
		b.report.fail(fmt.Errorf("copyTree: %w", err))
		return
	}
	g := newGroup(ctx, b.cfg.Workers)
	for _, nm := range names {
		if nm == skip {
			b.report.fail(fmt.Errorf("copyTree %s: %w", filepath.Join(src, nm), errRootIndexConflict))
			continue
		}
		if !g.Go(func() {
			if err := copyFile(filepath.Join(src, nm), filepath.Join(dst, nm)); err != nil {
				b.report.fail(fmt.Errorf("copyTree %s: %w", nm, err))
				return
			}
			b.report.addFile()
		}) {
			b.report.fail(fmt.Errorf("copyTree: %w", ctx.Err()))
			break
		}
	}
	g.Wait()
}

package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// keepDir is the entry in the output root that a rebuild never touches.
const keepDir = ".git"

// EnsureDir creates every missing segment of dir. It is not an error if the
// directory already exists.
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("ensureDir: %w", err)
	}
	return nil
}

// ResetOutput creates the output root if needed and removes everything inside
// it except the .git folder.
func (b *Builder) ResetOutput(ctx context.Context) {
	out := b.cfg.Output
	if err := EnsureDir(out); err != nil {
		b.report.fail(fmt.Errorf("resetOutput: %w", err))
		return
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		b.report.fail(fmt.Errorf("resetOutput: %w", err))
		return
	}
	g := newGroup(ctx, b.cfg.Workers)
	for _, entry := range entries {
		if entry.Name() == keepDir {
			continue
		}
		name := filepath.Join(out, entry.Name())
		if !g.Go(func() {
			if err := os.RemoveAll(name); err != nil {
				b.report.fail(fmt.Errorf("resetOutput: %w", err))
			}
		}) {
			b.report.fail(fmt.Errorf("resetOutput: %w", ctx.Err()))
			break
		}
	}
	g.Wait()
}

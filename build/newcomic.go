package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ancientlore/panels/settings"
)

const (
	comicStub = `{{template "comic" .}}

{{define "title"}}The Title{{end}}
{{define "description"}}meta description{{end}}

{{define "panel"}}<img src="" alt="">{{end}}

{{define "blogTitle"}}%s{{end}}
{{define "blog"}}
<p>blog text lorem ipsum</p>
{{end}}
`
	comicStubMarkdown = `+++
title = "The Title"
description = "meta description"
template = "comic"
date = %s
+++
## %s

blog text lorem ipsum
`
)

// NewComic creates the source file for the next comic, numbered one past the
// number of existing comics, and returns its path. It fails when a comic with
// that number already exists under any extension; files are never overwritten.
func NewComic(cfg settings.Settings, now time.Time, markdown bool) (string, error) {
	if err := EnsureDir(cfg.Comics); err != nil {
		return "", fmt.Errorf("newComic: %w", err)
	}
	names, err := listFiles(cfg.Comics)
	if err != nil {
		return "", fmt.Errorf("newComic: %w", err)
	}
	ext, data := ".html", fmt.Sprintf(comicStub, now.Format("Mon Jan 02 2006"))
	if markdown {
		ext, data = ".md", fmt.Sprintf(comicStubMarkdown, now.Format(time.RFC3339), now.Format("Mon Jan 02 2006"))
	}
	next := len(names) + 1
	for _, nm := range names {
		if comicID(nm) == next {
			return "", fmt.Errorf("newComic: comic %d already exists as %s", next, filepath.Join(cfg.Comics, nm))
		}
	}
	name := filepath.Join(cfg.Comics, strconv.Itoa(next)+ext)
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("newComic: %s already exists", name)
		}
		return "", fmt.Errorf("newComic: %w", err)
	}
	_, err = f.WriteString(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("newComic: %w", err)
	}
	return name, nil
}

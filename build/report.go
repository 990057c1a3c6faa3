package build

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Report collects the outcome of every operation in a build. Failures are
// logged as they happen and never stop other operations.
type Report struct {
	mu      sync.Mutex
	comics  int
	pages   int
	files   int
	errs    []error
	Elapsed time.Duration // Wall time of the whole build
}

func (r *Report) fail(err error) {
	log.Print(err)
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *Report) addComic() {
	r.mu.Lock()
	r.comics++
	r.mu.Unlock()
}

func (r *Report) addPage() {
	r.mu.Lock()
	r.pages++
	r.mu.Unlock()
}

func (r *Report) addFile() {
	r.mu.Lock()
	r.files++
	r.mu.Unlock()
}

// Comics returns the number of comic pages written.
func (r *Report) Comics() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comics
}

// Pages returns the number of standalone pages written.
func (r *Report) Pages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages
}

// Files returns the number of asset, image, and static files copied.
func (r *Report) Files() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.files
}

// Failures returns the number of operations that failed.
func (r *Report) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// Err joins every failure, or returns nil if there were none.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

// String summarizes the build.
func (r *Report) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%d comics, %d pages, %d files, %d failures", r.comics, r.pages, r.files, len(r.errs))
}

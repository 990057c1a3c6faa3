// Command panels builds a static comic site.
//
// Run it from the folder holding settings.json:
//
//	panels                 build the site
//	panels build --strict  build, exiting with status 2 if any file failed
//	panels new             create the next comic from a skeleton
//	panels watch           build, then rebuild whenever a source changes
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ancientlore/panels/build"
	"github.com/ancientlore/panels/settings"
	"github.com/ancientlore/panels/watch"
)

var CLI struct {
	Config string `short:"c" help:"Settings file (JSON, or TOML with a .toml extension)." default:"settings.json" type:"path"`

	Build struct {
		Strict bool `short:"s" help:"Exit with status 2 if any file failed."`
	} `cmd:"" default:"withargs" help:"Build the site."`

	New struct {
		Markdown bool `short:"m" help:"Create a Markdown comic instead of an HTML template."`
	} `cmd:"" help:"Create the source file for the next comic."`

	Watch struct {
		Delay time.Duration `help:"How long changes must settle before rebuilding." default:"300ms"`
	} `cmd:"" help:"Build the site, then rebuild whenever a source file changes."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("panels"),
		kong.Description("Builds a static comic site from templates."),
		kong.UsageOnError(),
	)
	log.SetFlags(0)
	os.Exit(run(kctx.Command()))
}

// run executes command and returns the process exit code.
func run(command string) int {
	cfg, err := settings.Load(CLI.Config)
	if err != nil {
		log.Print(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "build":
		return runBuild(ctx, cfg, CLI.Build.Strict)
	case "new":
		name, err := build.NewComic(cfg, time.Now(), CLI.New.Markdown)
		if err != nil {
			log.Print(err)
			return 1
		}
		log.Printf("%s created!", name)
	case "watch":
		runBuild(ctx, cfg, false)
		log.Printf("Watching %v for changes. Press Ctrl+C to exit.", cfg.SourceDirs())
		err = watch.Run(ctx, cfg.SourceDirs(), CLI.Watch.Delay, func() {
			log.Print("Change detected; rebuilding site")
			runBuild(ctx, cfg, false)
		})
		if err != nil {
			log.Print(err)
			return 1
		}
	}
	return 0
}

// runBuild builds the site once and returns the process exit code.
func runBuild(ctx context.Context, cfg settings.Settings, strict bool) int {
	rep, err := build.Build(ctx, cfg)
	if err != nil {
		log.Print(err)
		return 1
	}
	log.Printf("Built %s: %s", cfg.Output, rep)
	if strict && rep.Failures() > 0 {
		return 2
	}
	return 0
}

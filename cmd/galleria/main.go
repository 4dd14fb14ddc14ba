package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/okvist/galleria"
	"github.com/okvist/galleria/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.SetFlags(0)

	app := &cli.Command{
		Name:    "galleria",
		Usage:   "build a static photo-gallery website from dated photo folders",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "scan the input tree and build the gallery",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "the source directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Usage:    "the output directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "page_title",
						Usage: "the top-level page title",
					},
					&cli.StringFlag{
						Name:  "footer",
						Usage: "an HTML snippet for the page footer",
					},
					&cli.BoolFlag{
						Name:  "dry_run",
						Usage: "report planned operations without writing any files",
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "delete stale thumbnails with no remaining source",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "number of concurrent thumbnail workers",
					},
					&cli.StringFlag{
						Name:  "order",
						Usage: "gallery order: most_recent_first or oldest_first",
					},
				},
				Action: buildAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func buildAction(ctx context.Context, cmd *cli.Command) error {
	cfg := galleria.Config{
		Title:     cmd.String("page_title"),
		Footer:    cmd.String("footer"),
		InputDir:  cmd.String("input"),
		OutputDir: cmd.String("output"),
		DryRun:    cmd.Bool("dry_run"),
		Prune:     cmd.Bool("prune"),
		Workers:   int(cmd.Int("workers")),
	}
	switch cmd.String("order") {
	case "", "most_recent_first":
	case "oldest_first":
		cfg.Order = galleria.OldestFirst
	default:
		return fmt.Errorf("unknown order %q", cmd.String("order"))
	}

	// Values from galleria.yml in the input root fill in whatever the
	// flags left unset.
	site, err := galleria.LoadSiteFile(cfg.InputDir)
	if err != nil {
		return err
	}
	if err := site.Apply(&cfg); err != nil {
		return err
	}

	report, err := galleria.New(cfg, views.Funcs()).Run(ctx)
	if err != nil {
		return err
	}

	printReport(report, cfg.DryRun)
	if report.Fatal() {
		return cli.Exit("build finished with errors", 1)
	}
	return nil
}

func printReport(r *galleria.Report, dryRun bool) {
	if dryRun {
		for _, op := range r.Ops {
			log.Printf("%-9s %-9s %q", op.Kind, op.What, op.Path)
		}
	}
	for _, w := range r.Warnings {
		log.Printf("warning: %s", w)
	}
	for _, e := range r.ImageErrors {
		log.Printf("dropped: %v", &e)
	}
	for _, e := range r.WriteErrors {
		log.Printf("failed: %v", e)
	}
	for _, p := range r.PruneCandidates {
		log.Printf("stale thumbnail: %q", p)
	}
	for _, p := range r.Pruned {
		log.Printf("pruned: %q", p)
	}
	verb := "generated"
	if dryRun {
		verb = "would generate"
	}
	log.Printf("%s %d, unchanged %d, dropped %d, failed %d",
		verb, r.Generated, r.Skipped, len(r.ImageErrors), r.Failed)
}

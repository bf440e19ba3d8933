package main

import (
	"context"
	"fmt"
	_ "net/http/pprof"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"media-approve/internal/app"
	"media-approve/internal/config"
	"media-approve/internal/logging"
	"media-approve/internal/repositories"
	"media-approve/internal/services/commands"
	"media-approve/pkg/db"
)

func main() {
	cliApp := &cli.App{
		Name:   "media-approve",
		Usage:  "media moderation bot for VK Teams",
		Action: run,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the bot",
				Action: run,
			},
			{
				Name:  "stats",
				Usage: "print approved files per author",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10, Usage: "number of authors"},
				},
				Action: stats,
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.Level)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	return cfg, nil
}

func run(cctx *cli.Context) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	log.Info("Starting bot...")

	a, err := app.New(cctx.Context, cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return a.Run()
}

func stats(cctx *cli.Context) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	gdb, err := db.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	repo := repositories.NewMediaRepository(gdb)
	ctx := cctx.Context
	if ctx == nil {
		ctx = context.Background()
	}

	top, err := repo.TopAuthors(ctx, cctx.Int("limit"))
	if err != nil {
		return err
	}
	total, err := repo.ApprovedCount(ctx)
	if err != nil {
		return err
	}
	fmt.Println(commands.Stats(top))
	fmt.Printf("Total approved files: %d\n", total)
	return nil
}

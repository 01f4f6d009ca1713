package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agrimarket/internal/config"
	"agrimarket/internal/infra/db"
	"agrimarket/internal/infra/logger"
	"agrimarket/internal/infra/memory"
	infraRepo "agrimarket/internal/infra/repository"
	repo "agrimarket/internal/repository"
	"agrimarket/internal/server"
	"agrimarket/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "agrimarket",
		Usage: "agricultural marketplace API",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
				Value: cli.NewStringSlice(".env", "../.env"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "in-memory",
						Usage: "keep all data in memory instead of postgres",
					},
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "run AutoMigrate before serving",
					},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:   "seed-categories",
				Usage:  "insert the default product categories",
				Action: seedCategories,
			},
			{
				Name:  "create-admin",
				Usage: "create a staff account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
					&cli.StringFlag{Name: "name", Value: "Administrator"},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.GoEnv), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	var tx repo.TransactionManager
	if c.Bool("in-memory") {
		log.Warn("using in-memory store; data is lost on exit")
		store := memory.NewStore()
		if _, err := usecase.NewProductUsecase(store).SeedCategories(c.Context); err != nil {
			return err
		}
		tx = store
	} else {
		gormDB, err := db.Connect(cfg, log)
		if err != nil {
			return err
		}
		if c.Bool("migrate") {
			if err := db.Migrate(gormDB); err != nil {
				return err
			}
		}
		tx = infraRepo.NewTxManagerGorm(gormDB)
	}

	uc := server.NewUsecases(cfg, tx, log)
	e := server.New(cfg, uc, log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Start(ctx, e, cfg.Addr(), log)
}

func migrate(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	log.Info("migration finished")
	return nil
}

func seedCategories(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}

	res, err := usecase.NewProductUsecase(infraRepo.NewTxManagerGorm(gormDB)).SeedCategories(c.Context)
	if err != nil {
		return err
	}
	for _, name := range res.Created {
		log.WithField("category", name).Info("created category")
	}
	for _, name := range res.Existing {
		log.WithField("category", name).Info("category already exists")
	}
	return nil
}

func createAdmin(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}

	uc := server.NewUsecases(cfg, infraRepo.NewTxManagerGorm(gormDB), log)
	admin, err := uc.Auth.CreateAdmin(c.Context, c.String("email"), c.String("password"), c.String("name"))
	if err != nil {
		return err
	}
	log.WithField("user_id", admin.ID).Info("admin created")
	return nil
}

package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vicedu/vicedu/modules"
	corepersistence "github.com/vicedu/vicedu/modules/core/infrastructure/persistence"
	"github.com/vicedu/vicedu/pkg/application"
	"github.com/vicedu/vicedu/pkg/configuration"
	"github.com/vicedu/vicedu/pkg/eventbus"
	"github.com/vicedu/vicedu/pkg/metrics"
	"github.com/vicedu/vicedu/pkg/middleware"
	"github.com/vicedu/vicedu/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	app.RegisterControllers(metrics.NewPrometheusController(conf.PrometheusPath))

	if conf.MigrateOnStart {
		if err := app.Migrations().RunMigrations(conf.Database.Opts); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	srv := server.New(app,
		middleware.LogRequests(logger),
		middleware.ProvidePool(pool),
		middleware.WithActor(corepersistence.NewUserRepository()),
	)
	logger.Infof("listening on %s", conf.Address)
	if err := srv.Start(conf.Address); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

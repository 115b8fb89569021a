package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ziotom78/instrumentdb/cmd/instrumentdbd/handlers"
	"github.com/ziotom78/instrumentdb/pkg/auth"
	kcb "github.com/ziotom78/instrumentdb/pkg/configs/backend"
	kpg "github.com/ziotom78/instrumentdb/pkg/db/postgres"
	"github.com/ziotom78/instrumentdb/pkg/metrics"
	"github.com/ziotom78/instrumentdb/pkg/storage"
	"github.com/ziotom78/instrumentdb/pkg/storage/s3"
	"github.com/ziotom78/instrumentdb/pkg/utils/echoutil"
	"github.com/ziotom78/instrumentdb/pkg/utils/filewatch"
)

const defaultTokenLifetime = 24 * time.Hour

func main() {
	configPath := flag.String("config-path", "", "backend config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	conf, err := kcb.LoadBackendConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	if conf.LogLevel != "" {
		*loglevel = conf.LogLevel
	}

	e := echo.New()
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)
	e.Use(metrics.Middleware())

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	// the user file is re-read by restarting: edits cancel the context
	ctx, cancelWatch, err := filewatch.UntilModifyContext(ctx, conf.Auth.UserFile)
	if err != nil {
		log.Fatalf("can not watch user file: %s", err)
	}
	defer cancelWatch()

	db, err := kpg.New(ctx, conf.DBURI)
	if err != nil {
		log.Fatalf("can not reach the database: %s", err)
	}
	defer db.Close()
	if err := db.Schema().Upgrade(ctx); err != nil {
		log.Fatalf("can not upgrade the database schema: %s", err)
	}

	store, err := newStore(ctx, conf.Storage)
	if err != nil {
		log.Fatalf("can not open the payload storage: %s", err)
	}

	registry, err := auth.LoadUsers(conf.Auth.UserFile)
	if err != nil {
		log.Fatalf("can not read the user file: %s", err)
	}
	lifetime := defaultTokenLifetime
	if conf.Auth.TokenLifetime != "" {
		lifetime, err = time.ParseDuration(conf.Auth.TokenLifetime)
		if err != nil {
			log.Fatalf("bad token lifetime %q: %s", conf.Auth.TokenLifetime, err)
		}
	}
	issuer, err := auth.LoadIssuer(conf.Auth.KeyFile, lifetime)
	if err != nil {
		log.Fatalf("can not read the signing key: %s", err)
	}

	e.GET("/metrics", metrics.Handler())
	e.POST("/api/login", handlers.LoginHandler(registry, issuer))

	api := e.Group("/api", auth.Middleware(issuer))
	{
		uuid := "uuid"
		write := auth.RequireGroup(registry, auth.WritersGroup)

		api.POST("/format_specs", handlers.CreateSpecHandler(db.Specs()), write)
		api.GET("/format_specs", handlers.ListSpecsHandler(db.Specs()))
		api.GET("/format_specs/:uuid", handlers.GetSpecHandler(db.Specs(), uuid))
		api.GET(
			"/format_specs/:uuid/document",
			handlers.GetSpecDocumentHandler(db.Specs(), store, uuid),
		)
		api.DELETE("/format_specs/:uuid", handlers.DeleteSpecHandler(db.Specs(), uuid), write)

		api.POST("/entities", handlers.CreateEntityHandler(db.Entities()), write)
		api.GET("/entities", handlers.ListEntitiesHandler(db.Entities()))
		api.GET("/entities/:uuid", handlers.GetEntityHandler(db.Entities(), uuid))
		api.DELETE("/entities/:uuid", handlers.DeleteEntityHandler(db.Entities(), uuid), write)
		api.GET("/tree/*", handlers.TreeHandler(db.Entities(), db.Quantities()))

		api.POST("/quantities", handlers.CreateQuantityHandler(db.Quantities(), db.Specs()), write)
		api.GET("/quantities", handlers.ListQuantitiesHandler(db.Quantities()))
		api.GET("/quantities/:uuid", handlers.GetQuantityHandler(db.Quantities(), uuid))
		api.DELETE("/quantities/:uuid", handlers.DeleteQuantityHandler(db.Quantities(), uuid), write)
		api.POST(
			"/quantities/:uuid/data_files",
			handlers.UploadDataFileHandler(db.DataFiles(), store, uuid),
			write,
		)
		api.GET(
			"/quantities/:uuid/data_files",
			handlers.AllVersionsHandler(db.DataFiles(), uuid),
		)
		api.GET(
			"/quantities/:uuid/current",
			handlers.CurrentVersionHandler(db.DataFiles(), uuid),
		)

		api.GET("/data_files/:uuid", handlers.GetDataFileHandler(db.DataFiles(), uuid))
		api.GET(
			"/data_files/:uuid/download",
			handlers.DownloadDataFileHandler(db.DataFiles(), store, uuid, false),
		)
		api.GET(
			"/data_files/:uuid/plot",
			handlers.DownloadDataFileHandler(db.DataFiles(), store, uuid, true),
		)
		api.PATCH("/data_files/:uuid", handlers.PatchDataFileHandler(db.DataFiles(), uuid), write)
		api.DELETE("/data_files/:uuid", handlers.DeleteDataFileHandler(db.DataFiles(), uuid), write)

		api.POST("/releases", handlers.CreateReleaseHandler(db.Releases(), db.Archive(), store), write)
		api.GET("/releases", handlers.ListReleasesHandler(db.Releases()))
		api.GET("/releases/:tag", handlers.GetReleaseHandler(db.Releases()))
		api.DELETE("/releases/:tag", handlers.DeleteReleaseHandler(db.Releases()), write)
		api.PUT(
			"/releases/:tag/data_files/:uuid",
			handlers.AttachReleaseMemberHandler(db.Releases(), db.Archive(), store),
			write,
		)
		api.DELETE(
			"/releases/:tag/data_files/:uuid",
			handlers.DetachReleaseMemberHandler(db.Releases(), db.Archive(), store),
			write,
		)
		api.GET("/releases/:tag/tree/*", handlers.ResolveReleaseHandler(db.Releases()))
		api.GET("/releases/:tag/dump", handlers.DumpReleaseHandler(db.Releases(), store))
		api.GET(
			"/releases/:tag/document",
			handlers.DownloadReleaseDocumentHandler(db.Releases(), store),
		)

		api.POST(
			"/schema/import",
			handlers.ImportSchemaHandler(db.Archive(), db.Releases(), store),
			write,
		)
		api.GET("/schema/export", handlers.ExportSchemaHandler(db.Archive()))
	}

	go func() {
		<-ctx.Done()
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			e.Logger.Errorf("error on shutdown: %s", err)
		}
	}()

	if err := e.Start(":" + conf.ServerPort); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %s", err)
		}
	}
}

func newStore(ctx context.Context, conf kcb.StorageConfig) (storage.Store, error) {
	switch conf.Kind {
	case "s3":
		return s3.New(ctx, conf.Bucket, s3.WithPrefix(conf.Prefix))
	case "filesystem", "":
		return storage.NewFs(conf.Root)
	}
	return nil, errors.New("unknown storage kind " + conf.Kind)
}

// Package main rental availability API.
//
// @title           Rental Availability API
// @version         1.0
// @description     Availability of serialized rental items and bundles over date ranges, with the catalog and booking ledger behind it.
// @BasePath        /
// @schemes         http
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Ahmadfnugroho/gpr-sub003/app/echoServer"
	availabilityctrl "github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/controller/availability"
	bookingctrl "github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/controller/booking"
	catalogctrl "github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/controller/catalog"
	"github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/validation"
	"github.com/Ahmadfnugroho/gpr-sub003/config"
	bookingrepo "github.com/Ahmadfnugroho/gpr-sub003/repository/booking"
	bundlerepo "github.com/Ahmadfnugroho/gpr-sub003/repository/bundle"
	itemrepo "github.com/Ahmadfnugroho/gpr-sub003/repository/item"
	"github.com/Ahmadfnugroho/gpr-sub003/service/availability"
	bookingsvc "github.com/Ahmadfnugroho/gpr-sub003/service/booking"
	catalogsvc "github.com/Ahmadfnugroho/gpr-sub003/service/catalog"
	"github.com/Ahmadfnugroho/gpr-sub003/util/database"
	"github.com/Ahmadfnugroho/gpr-sub003/util/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// logger
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// DB: pgx pool, *sql.DB on top
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db.SQL); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	// repos
	ir := itemrepo.New(db.SQL)
	br := bundlerepo.New(db.SQL)
	bkr := bookingrepo.New(db.SQL)

	// availability
	var cache availability.Cache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		cache = availability.NewRedisCache(rdb, cfg.CacheTTL, log.Named("cache"))
	}
	engine := availability.NewEngine(ir, bkr, br)
	avs := availability.New(engine, cache, cfg.BatchConcurrency)

	// services
	cs := catalogsvc.New(ir, br)
	// reservation checks read on the transaction that holds the product locks
	bs := bookingsvc.New(db.SQL, bkr, func(tx *sql.Tx) bookingsvc.Readers {
		items, ledger, bundles := ir.WithTx(tx), bkr.WithTx(tx), br.WithTx(tx)
		return bookingsvc.Readers{
			Engine:   availability.NewSequentialEngine(items, ledger, bundles),
			Bundles:  bundles,
			Bookings: ledger,
		}
	})

	// background: cancel pending bookings nobody confirmed
	if cfg.PendingTTL > 0 {
		bgCtx, stop := context.WithCancel(ctx)
		defer stop()
		go bookingsvc.NewCleaner(bkr, cfg.PendingTTL, log.Named("cleaner")).Run(bgCtx, 10*time.Minute)
	}

	// controllers
	val := validation.New(nil)
	v := val.Engine()
	availabilityC := &availabilityctrl.Controller{Svc: avs, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cs, V: v, Log: log}
	bookingC := &bookingctrl.Controller{Svc: bs, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = val

	e.GET("/health", func(c echo.Context) error {
		pctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Pool.Ping(pctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down", "message": "database unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Availability: availabilityC,
		Catalog:      catalogC,
		Booking:      bookingC,
	})

	log.Info("starting server", zap.String("port", cfg.Port), zap.Bool("cache", cache != nil))
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	cartapp "github.com/dwikikusuma/pizza-cart/internal/cart/app"
	"github.com/dwikikusuma/pizza-cart/internal/cart/infra/memory"
	cartpg "github.com/dwikikusuma/pizza-cart/internal/cart/infra/postgres"
	"github.com/dwikikusuma/pizza-cart/internal/cart/infra/sqlite"
	cartrest "github.com/dwikikusuma/pizza-cart/internal/cart/rest"

	checkoutapp "github.com/dwikikusuma/pizza-cart/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/pizza-cart/internal/checkout/infra/httpapi"
	checkoutrest "github.com/dwikikusuma/pizza-cart/internal/checkout/rest"

	menuapp "github.com/dwikikusuma/pizza-cart/internal/menu/app"
	"github.com/dwikikusuma/pizza-cart/internal/menu/infra/fixture"
	menuhttp "github.com/dwikikusuma/pizza-cart/internal/menu/infra/httpapi"
	menupg "github.com/dwikikusuma/pizza-cart/internal/menu/infra/postgres"
	menurest "github.com/dwikikusuma/pizza-cart/internal/menu/rest"

	"github.com/dwikikusuma/pizza-cart/pkg/config"
	"github.com/dwikikusuma/pizza-cart/pkg/httpclient"
	"github.com/dwikikusuma/pizza-cart/pkg/logger"
	"github.com/dwikikusuma/pizza-cart/pkg/middleware"
	"github.com/dwikikusuma/pizza-cart/pkg/postgres"
	"github.com/dwikikusuma/pizza-cart/pkg/shutdown"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	hc := httpclient.New(httpclient.Options{Timeout: cfg.HTTPClientTimeout})
	pg := &lazyDB{cfg: cfg}
	defer pg.Close()

	// Menu
	src, err := menuSource(ctx, cfg, hc, pg)
	if err != nil {
		log.Error("menu source failed", slog.Any("err", err), slog.String("source", cfg.MenuSource))
		os.Exit(1)
	}
	menuSvc := menuapp.NewService(src)

	// Cart
	blobs, closer, err := cartStore(ctx, cfg, pg)
	if err != nil {
		log.Error("cart store failed", slog.Any("err", err), slog.String("store", cfg.CartStore))
		os.Exit(1)
	}
	defer closer.Close()

	cartSvc := cartapp.NewService(blobs, log)
	restored := cartSvc.Load(ctx)
	log.Info("cart restored", slog.Int("lines", len(restored)))

	// Checkout
	charges := checkouthttp.NewChargeClient(cfg.APIBaseURL, cfg.AccessToken, hc)
	checkoutSvc := checkoutapp.NewService(cartSvc, charges, checkoutapp.Options{
		Description: cfg.ChargeDescription,
		ReturnURL:   cfg.ChargeReturnURL,
	}, log)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLog(log), middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"payment_public_key": cfg.PaymentPublicKey})
	})
	menurest.NewServer(menuSvc).Register(api)
	cartrest.NewServer(cartSvc, menuSvc).Register(api)
	checkoutrest.NewServer(checkoutSvc, cartSvc, log).Register(api)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// outlives the outbound charge call
		WriteTimeout: cfg.HTTPClientTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

// lazyDB opens the Postgres pool on first use so the menu and the cart can
// share it.
type lazyDB struct {
	cfg config.Config
	db  *sql.DB
}

func (l *lazyDB) Get() (*sql.DB, error) {
	if l.db != nil {
		return l.db, nil
	}
	db, err := postgres.Open(postgres.Config{
		Host: l.cfg.Postgres.Host,
		Port: l.cfg.Postgres.Port,
		User: l.cfg.Postgres.User,
		Pass: l.cfg.Postgres.Pass,
		DB:   l.cfg.Postgres.DB,
	})
	if err != nil {
		return nil, err
	}
	l.db = db
	return db, nil
}

func (l *lazyDB) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func menuSource(ctx context.Context, cfg config.Config, hc *http.Client, pg *lazyDB) (menuapp.MenuSource, error) {
	switch cfg.MenuSource {
	case "api":
		return menuhttp.NewClient(cfg.APIBaseURL, hc), nil
	case "file":
		src, err := fixture.Load(cfg.MenuFile)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "postgres":
		db, err := pg.Get()
		if err != nil {
			return nil, err
		}
		repo := menupg.NewMenuRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		if cfg.MenuSeed {
			if err := seedMenu(ctx, repo, cfg.MenuFile); err != nil {
				return nil, err
			}
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown MENU_SOURCE %q", cfg.MenuSource)
	}
}

func seedMenu(ctx context.Context, repo *menupg.MenuRepo, path string) error {
	src, err := fixture.Load(path)
	if err != nil {
		return err
	}
	items, err := src.ListMenuItems(ctx)
	if err != nil {
		return err
	}
	toppings, err := src.ListToppings(ctx)
	if err != nil {
		return err
	}
	return repo.Seed(ctx, items, toppings)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func cartStore(ctx context.Context, cfg config.Config, pg *lazyDB) (cartapp.BlobStore, io.Closer, error) {
	switch cfg.CartStore {
	case "memory":
		return memory.NewStore(), nopCloser{}, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "postgres":
		db, err := pg.Get()
		if err != nil {
			return nil, nil, err
		}
		repo := cartpg.NewBlobRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		// the pool is closed by lazyDB
		return repo, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CART_STORE %q", cfg.CartStore)
	}
}

// 程序入口：读取配置、初始化依赖、启动定时检查与查询服务；API 注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"atlas-checks/internal/api"
	"atlas-checks/internal/config"
	"atlas-checks/internal/dedup"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/metrics"
	"atlas-checks/internal/middleware"
	"atlas-checks/internal/migrate"
	"atlas-checks/internal/resolver"
	"atlas-checks/internal/runner"
	"atlas-checks/internal/store"
	"atlas-checks/internal/utils"
	"atlas-checks/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	l.Info("service_start", "version", version.String())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiBase := strings.TrimRight(config.Getenv("API_BASE", "/api"), "/")
	l.Debug("config_api_base", "base", apiBase)

	db, dialect, err := utils.OpenDBFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	l.Info("db_open_ok", "driver", dialect)
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
	} else {
		l.Info("db_ping_ok")
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db, store.Dialect(dialect))

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}
	tracker := dedup.New(rc)

	cfgPath := config.Getenv("CHECKS_CONFIG", filepath.Join("config", "checks.yaml"))
	cfg, err := config.Load(cfgPath)
	if err != nil {
		l.Error("checks_config_error", "path", cfgPath, "err", err)
		os.Exit(1)
	}
	manager := runner.NewManagerFromConfig(cfg)
	if _, err := os.Stat(cfgPath); err == nil {
		go func() {
			if err := config.Watch(ctx, cfgPath, manager.Reload); err != nil {
				l.Error("config_watch_error", "err", err)
			}
		}()
	}

	r := &runner.Runner{Manager: manager, Workers: config.GetenvInt("RUN_WORKERS", runner.DefaultWorkers)}
	root := config.Getenv("ATLAS_ROOT", filepath.Join("data", "atlas"))
	pattern := config.Getenv("ATLAS_PATTERN", resolver.DefaultPattern)
	defaultCountries := config.GetenvList("COUNTRIES")
	runAll := func(ctx context.Context, countries []string) error {
		if len(countries) == 0 {
			countries = defaultCountries
		}
		resolved, err := resolver.Resolve(root, pattern, countries)
		if err != nil {
			return err
		}
		l.Info("atlas_resolved", "root", root, "countries", resolver.Countries(resolved))
		return r.RunCountries(ctx, resolved, func(res *runner.Result) error {
			_, err := runner.Persist(ctx, st, tracker, res)
			return err
		})
	}
	interval := config.GetenvMinutes("RUN_INTERVAL_MIN", 1440)
	go runner.Schedule(ctx, interval, config.GetenvBool("RUN_ON_START", true), func(ctx context.Context) error {
		return runAll(ctx, nil)
	})
	l.Info("schedule_begin", "interval", interval.String())

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(api.Deps{
		Store:      st,
		Redis:      rc,
		Manager:    manager,
		Trigger:    runAll,
		AdminToken: config.Getenv("ADMIN_TOKEN", ""),
	})
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.HandleFunc(apiBase+"/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(version.String() + "\n"))
	})

	addr := config.Getenv("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdown)
	}()

	if config.GetenvBool("TLS_ENABLE", false) {
		certPath := config.Getenv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
		keyPath := config.Getenv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "atlas-checks.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("service_stop")
}

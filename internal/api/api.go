// 包 api：集中注册服务的 HTTP 路由，主入口挂载到 API_BASE 前缀
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"

	"atlas-checks/internal/logger"
	"atlas-checks/internal/metrics"
	"atlas-checks/internal/runner"
	"atlas-checks/internal/store"
)

// FlagsCacheTTL /flags 响应在 Redis 中的缓存时长
const FlagsCacheTTL = 10 * time.Minute

// Trigger 异步触发一次运行；countries 为空时运行全部国家
type Trigger func(ctx context.Context, countries []string) error

// Deps 路由依赖；Redis 与 Trigger 可为空
type Deps struct {
	Store      *store.Store
	Redis      *redis.Client
	Manager    *runner.Manager
	Trigger    Trigger
	AdminToken string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// BuildRoutes 返回独立 ServeMux
func BuildRoutes(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/checks", d.handleChecks)
	mux.HandleFunc("/flags", d.handleFlags)
	mux.HandleFunc("/stats", d.handleStats)
	mux.HandleFunc("/runs", d.handleRuns)
	return mux
}

func (d Deps) handleChecks(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequestsTotal.WithLabelValues("checks").Inc()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var out []runner.Status
	if d.Manager != nil {
		out = d.Manager.Status()
	}
	if out == nil {
		out = []runner.Status{}
	}
	writeJSON(w, http.StatusOK, out)
}

// resolveRun：显式 run 优先，否则取国家的最近一次运行
func (d Deps) resolveRun(ctx context.Context, run, country string) (string, error) {
	if run != "" {
		return run, nil
	}
	latest, err := d.Store.LatestRun(ctx, country)
	if err != nil {
		return "", err
	}
	return latest.RunID, nil
}

func flagsCacheKey(run, check, country string, limit int) string {
	key := "flags:" + run + ":" + check + ":" + country
	if limit > 0 {
		key += ":" + strconv.Itoa(limit)
	}
	return key
}

func (d Deps) handleFlags(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequestsTotal.WithLabelValues("flags").Inc()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	check, country := q.Get("check"), strings.ToUpper(q.Get("country"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	run, err := d.resolveRun(ctx, q.Get("run"), country)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, geojson.NewFeatureCollection())
		return
	}
	if err != nil {
		logger.L().Error("api_flags_error", "err", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	key := flagsCacheKey(run, check, country, limit)
	if d.Redis != nil {
		if s, _ := d.Redis.Get(ctx, key).Result(); s != "" {
			metrics.RedisHitsTotal.Inc()
			w.Header().Set("content-type", "application/geo+json; charset=utf-8")
			w.Header().Set("cache-control", "no-store")
			_, _ = w.Write([]byte(s))
			return
		}
		metrics.RedisMissesTotal.Inc()
	}
	stored, err := d.Store.Flags(ctx, store.Query{RunID: run, Check: check, Country: country, Limit: limit})
	if err != nil {
		logger.L().Error("api_flags_error", "err", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	data, err := featureCollection(stored).MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode error")
		return
	}
	if d.Redis != nil {
		if err := d.Redis.Set(ctx, key, string(data), FlagsCacheTTL).Err(); err != nil {
			logger.L().Debug("redis_set_error", "key", key, "err", err)
		}
	}
	w.Header().Set("content-type", "application/geo+json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(data)
}

// featureCollection：合并全部标记的要素，并在每个要素上写入检查名与标识
func featureCollection(stored []store.StoredFlag) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range stored {
		fc, err := geojson.UnmarshalFeatureCollection(f.Record.Geometry)
		if err != nil {
			logger.L().Debug("api_flag_geometry_invalid", "check", f.Record.Check, "identifier", f.Record.Identifier, "err", err)
			continue
		}
		for _, feat := range fc.Features {
			if feat.Properties == nil {
				feat.Properties = geojson.Properties{}
			}
			feat.Properties["check"] = f.Record.Check
			feat.Properties["identifier"] = f.Record.Identifier
			feat.Properties["run"] = f.RunID
			if !f.FirstSeen.IsZero() {
				feat.Properties["first_seen"] = f.FirstSeen.Unix()
			}
			out.Append(feat)
		}
	}
	return out
}

type statsResponse struct {
	Run    string        `json:"run"`
	Total  int           `json:"total"`
	Counts []store.Count `json:"counts"`
}

func (d Deps) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequestsTotal.WithLabelValues("stats").Inc()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	run := q.Get("run")
	if country := strings.ToUpper(q.Get("country")); run == "" && country != "" {
		resolved, err := d.resolveRun(ctx, "", country)
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusOK, statsResponse{Counts: []store.Count{}})
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store error")
			return
		}
		run = resolved
	}
	counts, err := d.Store.Counts(ctx, run)
	if err != nil {
		logger.L().Error("api_stats_error", "err", err)
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	resp := statsResponse{Run: run, Counts: counts}
	if resp.Counts == nil {
		resp.Counts = []store.Count{}
	}
	for _, c := range counts {
		resp.Total += c.Count
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRuns：需要 x-admin-token；运行在后台进行并立即返回 202
func (d Deps) handleRuns(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequestsTotal.WithLabelValues("runs").Inc()
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	t := r.Header.Get("x-admin-token")
	if t == "" || d.AdminToken == "" || t != d.AdminToken {
		logger.L().Warn("run_trigger_forbidden", "ip", callerIP(r))
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if d.Trigger == nil {
		writeError(w, http.StatusServiceUnavailable, "runs disabled")
		return
	}
	var countries []string
	for _, c := range strings.Split(r.URL.Query().Get("countries"), ",") {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			countries = append(countries, c)
		}
	}
	logger.L().Info("run_trigger", "ip", callerIP(r), "countries", countries)
	go func() {
		if err := d.Trigger(context.Background(), countries); err != nil {
			logger.L().Error("run_trigger_error", "err", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "countries": countries})
}

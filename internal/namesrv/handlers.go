package namesrv

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dreamware/namesrv/internal/cluster"
	"github.com/dreamware/namesrv/internal/kvconfig"
)

// OrderTopicConfigNamespace is the KV namespace holding per-topic order
// configuration, keyed by topic name.
const OrderTopicConfigNamespace = "ORDER_TOPIC_CONFIG"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// router builds the HTTP API. Everything except /health and /metrics is
// limited to serverWorkerThreads concurrent requests.
func (c *Controller) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(c.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Throttle(c.tr.ServerWorkerThreads))

		r.Post("/brokers", c.handleRegisterBroker)
		r.Post("/brokers/unregister", c.handleUnregisterBroker)
		r.Get("/topics", c.handleTopicList)
		r.Get("/topics/{topic}/route", c.handleTopicRoute)
		r.Get("/cluster", c.handleClusterInfo)

		r.Get("/config", c.handleGetConfig)
		r.Put("/config", c.handleUpdateConfig)

		r.Get("/kv/{namespace}", c.handleKVNamespace)
		r.Get("/kv/{namespace}/{key}", c.handleKVGet)
		r.Put("/kv/{namespace}/{key}", c.handleKVPut)
		r.Delete("/kv/{namespace}/{key}", c.handleKVDelete)
	})
	return r
}

func (c *Controller) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		c.logger.Debugw("API request completed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

func (c *Controller) handleRegisterBroker(w http.ResponseWriter, r *http.Request) {
	var req cluster.RegisterBrokerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := c.routes.RegisterBroker(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.logger.Debugw("Broker registered",
		"cluster", req.ClusterName,
		"brokerName", req.BrokerName,
		"brokerId", req.BrokerID,
		"brokerAddr", req.BrokerAddr,
		"topics", len(req.TopicConfigs))
	writeJSON(w, http.StatusOK, res)
}

func (c *Controller) handleUnregisterBroker(w http.ResponseWriter, r *http.Request) {
	var req cluster.UnregisterBrokerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	removed := c.routes.UnregisterBroker(req)
	c.logger.Infow("Broker unregistered",
		"brokerName", req.BrokerName,
		"brokerAddr", req.BrokerAddr,
		"found", removed)
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) handleTopicRoute(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	route, ok := c.routes.TopicRoute(topic)
	if !ok {
		http.Error(w, "no route info for topic "+topic, http.StatusNotFound)
		return
	}
	var orderEnabled bool
	c.registry.View(func() { orderEnabled = c.svc.OrderMessageEnable })
	if orderEnabled {
		if conf, err := c.kv.Get(OrderTopicConfigNamespace, topic); err == nil {
			route.OrderTopicConf = conf
		}
	}
	writeJSON(w, http.StatusOK, route)
}

func (c *Controller) handleTopicList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cluster.TopicList{Topics: c.routes.Topics()})
}

func (c *Controller) handleClusterInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.routes.ClusterInfo())
}

// handleGetConfig returns the configuration as JSON, or as sorted
// key=value lines when the client accepts text/plain.
func (c *Controller) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, c.registry.FormatString())
		return
	}
	writeJSON(w, http.StatusOK, c.registry.AllConfigs())
}

func (c *Controller) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if !decodeJSON(w, r, &values) {
		return
	}
	if err := c.registry.Update(values); err != nil {
		c.logger.Warnw("Config update rejected", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.logger.Infow("Config updated", "keys", len(values))
	writeJSON(w, http.StatusOK, c.registry.AllConfigs())
}

func (c *Controller) handleKVNamespace(w http.ResponseWriter, r *http.Request) {
	kv, err := c.kv.Namespace(chi.URLParam(r, "namespace"))
	if errors.Is(err, kvconfig.ErrKeyNotFound) {
		http.Error(w, "namespace not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, kv)
}

func (c *Controller) handleKVGet(w http.ResponseWriter, r *http.Request) {
	value, err := c.kv.Get(chi.URLParam(r, "namespace"), chi.URLParam(r, "key"))
	if errors.Is(err, kvconfig.ErrKeyNotFound) {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": value})
}

func (c *Controller) handleKVPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := c.kv.Put(chi.URLParam(r, "namespace"), chi.URLParam(r, "key"), body.Value); err != nil {
		c.logger.Errorw("KV config put failed", "error", err)
		http.Error(w, "failed to persist kv config", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) handleKVDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.kv.Delete(chi.URLParam(r, "namespace"), chi.URLParam(r, "key")); err != nil {
		c.logger.Errorw("KV config delete failed", "error", err)
		http.Error(w, "failed to persist kv config", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	uaproxy "github.com/smnsjas/go-uaproxy"
	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/ua"
)

const contentTypeJSON = "application/json"

// Server exposes the proxies of one client over HTTP.
type Server struct {
	client     *uaproxy.Client
	gatherer   prometheus.Gatherer
	log        zerolog.Logger
	timeout    time.Duration
	httpServer *http.Server
}

// NewServer returns a server for client. Metrics are served from gatherer.
func NewServer(client *uaproxy.Client, gatherer prometheus.Gatherer, log zerolog.Logger, timeout time.Duration) *Server {
	return &Server{
		client:   client,
		gatherer: gatherer,
		log:      log,
		timeout:  timeout,
	}
}

// Start listens on addr in the background.
func (s *Server) Start(addr string) {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()

	s.log.Info().Str("addr", addr).Msg("http server started")
}

// Stop shuts the listener down, waiting at most timeout for open requests.
func (s *Server) Stop(timeout time.Duration) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/nodes/{nodeID}", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Get("/attributes/{attr}", s.handleAttribute)
		r.Get("/children/{browseName}", s.handleChild)
		r.Get("/properties/{name}", s.handleGetProperty)
		r.Put("/properties/{name}", s.handlePutProperty)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

type attributeResponse struct {
	NodeID          ua.NodeID  `json:"nodeId"`
	Attribute       string     `json:"attribute"`
	Type            string     `json:"type"`
	Value           any        `json:"value"`
	Status          string     `json:"status"`
	SourceTimestamp *time.Time `json:"sourceTimestamp,omitempty"`
	ServerTimestamp *time.Time `json:"serverTimestamp,omitempty"`
}

type childResponse struct {
	NodeID         ua.NodeID `json:"nodeId"`
	NodeClass      string    `json:"nodeClass"`
	BrowseName     string    `json:"browseName"`
	TypeDefinition ua.NodeID `json:"typeDefinition"`
}

type propertyResponse struct {
	NodeID ua.NodeID `json:"nodeId"`
	Type   string    `json:"type"`
	Name   string    `json:"name"`
	Value  any       `json:"value"`
}

type propertyRequest struct {
	Value any `json:"value"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": uaproxy.Version})
}

func (s *Server) handleAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	attr, err := ua.ParseAttributeID(chi.URLParam(r, "attr"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	dv, err := s.client.Node(id).ReadAttribute(r.Context(), attr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	value, err := codec.ToNative(dv.Value, s.client.Env().Serialization())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := attributeResponse{
		NodeID:    id,
		Attribute: attr.String(),
		Type:      dv.Value.Type().String(),
		Value:     value,
		Status:    dv.Status.String(),
	}
	if !dv.SourceTimestamp.IsZero() {
		resp.SourceTimestamp = &dv.SourceTimestamp
	}
	if !dv.ServerTimestamp.IsZero() {
		resp.ServerTimestamp = &dv.ServerTimestamp
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChild(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "browseName"))
	if err != nil {
		s.writeError(w, ua.WrapStatus(ua.StatusBadBrowseNameInvalid, err))
		return
	}

	child, err := s.client.Node(id).ChildByName(r.Context(), r.URL.Query().Get("ns"), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if child == nil {
		s.writeError(w, ua.NewStatusError(ua.StatusBadNotFound, fmt.Sprintf("no child %q below %s", name, id)))
		return
	}
	s.writeJSON(w, http.StatusOK, childResponse{
		NodeID:         child.ID(),
		NodeClass:      child.NodeClass().String(),
		BrowseName:     child.BrowseName().String(),
		TypeDefinition: child.TypeDefinition(),
	})
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	table, name := r.URL.Query().Get("type"), chi.URLParam(r, "name")
	typed, err := s.client.Typed(id, table)
	if err != nil {
		s.writeError(w, err)
		return
	}

	value, err := typed.ReadDynamic(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, propertyResponse{NodeID: id, Type: table, Name: name, Value: value})
}

func (s *Server) handlePutProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	table, name := r.URL.Query().Get("type"), chi.URLParam(r, "name")
	typed, err := s.client.Typed(id, table)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Status: ua.StatusBadDecodingError.String()})
		return
	}
	if err := typed.WriteDynamic(r.Context(), name, req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, propertyResponse{NodeID: id, Type: table, Name: name, Value: req.Value})
}

func (s *Server) nodeID(w http.ResponseWriter, r *http.Request) (ua.NodeID, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "nodeID"))
	if err != nil {
		s.writeError(w, ua.WrapStatus(ua.StatusBadNodeIDInvalid, err))
		return ua.NodeID{}, false
	}
	id, err := ua.ParseNodeID(raw)
	if err != nil {
		s.writeError(w, err)
		return ua.NodeID{}, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn().Err(err).Msg("error encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	se := ua.Translate(err)
	s.writeJSON(w, httpStatus(se.Code), errorResponse{Error: se.Error(), Status: se.Code.String()})
}

// httpStatus maps a protocol status code onto an HTTP status.
func httpStatus(code ua.StatusCode) int {
	switch code {
	case ua.StatusBadNotFound, ua.StatusBadNodeIDUnknown:
		return http.StatusNotFound
	case ua.StatusBadNodeIDInvalid, ua.StatusBadAttributeIDInvalid, ua.StatusBadBrowseNameInvalid,
		ua.StatusBadTypeMismatch, ua.StatusBadOutOfRange, ua.StatusBadDecodingError:
		return http.StatusBadRequest
	case ua.StatusBadNotReadable, ua.StatusBadNotWritable, ua.StatusBadUserAccessDenied:
		return http.StatusForbidden
	case ua.StatusBadWaitingForInitialData:
		return http.StatusConflict
	case ua.StatusBadTimeout:
		return http.StatusGatewayTimeout
	case ua.StatusBadCommunicationError, ua.StatusBadShutdown:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

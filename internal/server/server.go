// Package server exposes activity snapshots over HTTP for a page to render.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/HartBrook/folio/internal/activity"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Response is the JSON body for snapshot endpoints.
type Response struct {
	Account string           `json:"account"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
	Result  *activity.Result `json:"result,omitempty"`
}

type accountRequest struct {
	Account string `json:"account" binding:"required"`
}

// Server serves the rendering boundary.
type Server struct {
	agg            *activity.Aggregator
	widget         *activity.Widget
	defaultAccount string
	log            zerolog.Logger
	engine         *gin.Engine
}

// New creates a Server. The widget starts on defaultAccount when it is set.
func New(agg *activity.Aggregator, defaultAccount string, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		agg:            agg,
		widget:         activity.NewWidget(agg),
		defaultAccount: defaultAccount,
		log:            log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/activity", s.getActivity)
	api.GET("/widget", s.getWidget)
	api.PUT("/widget/account", s.putWidgetAccount)

	s.engine = r

	if defaultAccount != "" {
		s.widget.SetAccount(context.Background(), defaultAccount)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.widget.Close()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.widget.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close stops the widget.
func (s *Server) Close() {
	s.widget.Close()
}

func (s *Server) getActivity(c *gin.Context) {
	account := strings.TrimSpace(c.Query("account"))
	if account == "" {
		account = s.defaultAccount
	}
	if account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required"})
		return
	}

	result, err := s.agg.Refresh(c.Request.Context(), account)
	resp := Response{Account: account, Result: result}
	if err != nil {
		s.log.Warn().Stack().Err(err).Str("account", account).Msg("refresh unavailable")
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getWidget(c *gin.Context) {
	c.JSON(http.StatusOK, viewResponse(s.widget.View()))
}

func (s *Server) putWidgetAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Account) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required"})
		return
	}

	// the refresh outlives this request
	s.widget.SetAccount(context.Background(), strings.TrimSpace(req.Account))
	c.JSON(http.StatusAccepted, viewResponse(s.widget.View()))
}

func viewResponse(v activity.View) Response {
	resp := Response{Account: v.Account, Loading: v.Loading, Result: v.Result}
	if v.Err != nil {
		resp.Error = v.Err.Error()
	}
	return resp
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

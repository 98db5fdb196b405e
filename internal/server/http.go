package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/recording"
	log "github.com/sirupsen/logrus"
)

// ActionResult is returned by the lifecycle endpoints.
type ActionResult struct {
	Outcome string          `json:"outcome"`
	State   recording.State `json:"state"`
}

type Status struct {
	State      recording.State `json:"state"`
	TimerAlive bool            `json:"timerAlive"`
	Connected  bool            `json:"connected"`
}

type ConfirmRequest struct {
	Choices recording.Choices `json:"choices"`
	Meeting recording.Meeting `json:"meeting"`
}

type MediaRequest struct {
	VideoOn bool `json:"videoOn"`
	AudioOn bool `json:"audioOn"`
}

type WhiteboardRequest struct {
	Started bool `json:"started"`
	Ended   bool `json:"ended"`
}

// HTTPServer is the local control API driving the recording controller.
type HTTPServer struct {
	cfg        *config.Config
	port       int
	ctrl       *recording.Controller
	alerts     *AlertLog
	connected  func() bool
	ackTimeout time.Duration
	engine     *gin.Engine
	srv        *http.Server
}

func NewHTTPServer(cfg *config.Config, ctrl *recording.Controller, alerts *AlertLog, connected func() bool) *HTTPServer {
	if connected == nil {
		connected = func() bool { return false }
	}
	s := &HTTPServer{
		cfg:        cfg,
		port:       cfg.HTTP.Port,
		ctrl:       ctrl,
		alerts:     alerts,
		connected:  connected,
		ackTimeout: cfg.Transport.AckTimeout,
	}
	s.engine = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		ok(c, gin.H{"status": "ok", "connected": s.connected()})
	})

	rec := router.Group("/record")
	{
		rec.POST("/start", s.action(s.ctrl.Start))
		rec.POST("/update", s.action(s.ctrl.Update))
		rec.POST("/stop", s.action(s.ctrl.Stop))
		rec.POST("/confirm", s.confirm)
		rec.POST("/launch", s.launch)
		rec.POST("/reset", s.reset)
		rec.PUT("/media", s.media)
		rec.PUT("/whiteboard", s.whiteboard)
		rec.GET("/status", s.status)
		rec.GET("/alerts", s.recentAlerts)
	}
	return router
}

func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Serve() {
	addr := ":" + strconv.Itoa(s.port)
	s.srv = &http.Server{Addr: addr, Handler: s.engine}

	go func() {
		log.Printf("starting http server on %s", addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()
}

func (s *HTTPServer) Close() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) action(fn func(ctx context.Context) (recording.Outcome, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if s.ackTimeout > 0 {
			// one extra second so the transport reports its own timeout first
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.ackTimeout+time.Second)
			defer cancel()
		}

		outcome, err := fn(ctx)
		result := ActionResult{Outcome: outcome.String(), State: s.ctrl.Snapshot()}

		switch {
		case err == nil:
			ok(c, result)
		case outcome == recording.OutcomeUnknown:
			fail(c, http.StatusServiceUnavailable, err.Error(), result)
		case recording.IsServerRejection(err):
			fail(c, http.StatusUnprocessableEntity, err.Error(), result)
		default:
			fail(c, http.StatusConflict, err.Error(), result)
		}
	}
}

func (s *HTTPServer) confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	params, err := s.ctrl.Confirm(req.Choices, req.Meeting)
	if err != nil {
		fail(c, http.StatusConflict, err.Error(), nil)
		return
	}
	ok(c, params)
}

func (s *HTTPServer) launch(c *gin.Context) {
	var opts recording.LaunchOptions
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			fail(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}
	if err := s.ctrl.Launch(opts); err != nil {
		fail(c, http.StatusConflict, err.Error(), nil)
		return
	}
	ok(c, gin.H{"modalVisible": s.ctrl.Snapshot().ModalVisible})
}

func (s *HTTPServer) reset(c *gin.Context) {
	s.ctrl.Reset()
	ok(c, s.ctrl.Snapshot())
}

func (s *HTTPServer) media(c *gin.Context) {
	var req MediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	s.ctrl.SetMedia(req.VideoOn, req.AudioOn)
	ok(c, s.ctrl.Snapshot())
}

func (s *HTTPServer) whiteboard(c *gin.Context) {
	var req WhiteboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	s.ctrl.SetWhiteboard(req.Started, req.Ended)
	ok(c, s.ctrl.Snapshot())
}

func (s *HTTPServer) status(c *gin.Context) {
	ok(c, Status{
		State:      s.ctrl.Snapshot(),
		TimerAlive: s.ctrl.TimerAlive(),
		Connected:  s.connected(),
	})
}

func (s *HTTPServer) recentAlerts(c *gin.Context) {
	if s.alerts == nil {
		ok(c, []Alert{})
		return
	}
	ok(c, s.alerts.Recent())
}

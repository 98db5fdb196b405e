package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"
	"github.com/mediasfu/recordctl/internal"
	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/connect"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/ratelimit"
	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/mediasfu/recordctl/internal/server"
	"github.com/mediasfu/recordctl/internal/uiloop"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	app config.App

	flags struct {
		config  string
		dump    string
		debug   bool
		help    bool
		version bool
	}

	cfg       *config.Config
	loop      *uiloop.Loop
	dialer    *transportDialer
	connector *connect.Connector
	sv        *server.Server
	hs        *server.HTTPServer
)

// Main parses the command line and runs until a signal stops the process.
func Main() {
	app.Name = internal.AppName
	app.Version = internal.AppVersion
	app.LongName = fmt.Sprintf("%s %s", app.Name, app.Version)
	app.InstanceId = uuid.New().String()

	flag.StringVarP(&flags.config, "config", "c", flags.config, "load configuration file")
	flag.StringVar(&flags.dump, "dump", "", "print config value (e.g. 'recording.changeCooldown')")
	flag.BoolVarP(&flags.debug, "debug", "d", flags.debug, "enable debug log")
	flag.BoolVarP(&flags.help, "help", "h", flags.help, "print help")
	flag.BoolVarP(&flags.version, "version", "v", flags.version, "print version")
	flag.Parse()

	if flags.help {
		fmt.Printf("%s\n\n", app.LongName)
		flag.PrintDefaults()
		shutdown(0)
	}

	if flags.version {
		fmt.Println(app.LongName)
		shutdown(0)
	}

	if flags.dump != "" {
		log.SetLevel(log.FatalLevel)
		cfg = initConfig()
		loadConfig()
		dumpConfig()
	}

	Init()
	Run()
	select {}
}

func Init() {
	cfg = initConfig()
	log.Infof("Starting %s PID: %d", app.Name, os.Getpid())
	loadConfig()
	configureLog()
	sigintHandler()
	sighupHandler()
}

func Run() {
	appstats.Init()
	appstats.ServePromMetrics(cfg.Prometheus)

	loop = uiloop.New(0)
	go loop.Run()

	alerts := server.NewAlertLog(cfg.Recording.AlertDuration)
	store := recording.NewStore(initialState(cfg.Recording), loop, server.NewStateLogger())

	dialer = newTransportDialer(cfg, func(e *events.Event) { sv.HandleNotice(e) })
	connector = connect.New(dialer.Dial,
		ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		cfg.Transport.CloudDomain, cfg.Transport.LocalLink)

	opts := recording.Options{
		TickInterval:   cfg.Recording.TickInterval,
		ChangeCooldown: cfg.Recording.ChangeCooldown,
		Capabilities:   capabilities(cfg.Recording.Capabilities),
		Alerts:         alerts,
		Reporter:       connector,
	}
	if cfg.Recording.WriteSummaryFile {
		opts.Summary = appstats.NewSummaryFileWriter(cfg.Recording.SummaryDirectory, fileMode(cfg.Recording.FileMode))
	}
	ctrl := recording.NewController(store, connector, opts)
	sv = server.NewServer(cfg, ctrl)

	if err := connector.Connect(context.Background(), credentials(cfg), false); err != nil {
		log.Fatalf("failed to connect to the recording server: %s", err)
	}
	if err := sv.OnStart(); err != nil {
		log.Fatalf("failed to start: %s", err)
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warnf("failed to notify readiness to systemd: %v", err)
	}

	if cfg.HTTP.Enable {
		hs = server.NewHTTPServer(cfg, ctrl, alerts, connector.IsConnected)
		hs.Serve()
	}
}

func shutdown(code int) {
	if hs != nil {
		if err := hs.Close(); err != nil {
			log.Errorf("failed to close http server: %s", err)
		}
	}

	if sv != nil {
		if err := sv.Close(); err != nil {
			log.Errorf("failed to close server: %s", err)
		}
	}

	if connector != nil {
		if err := connector.Close(); err != nil {
			log.Errorf("failed to close connections: %s", err)
		}
	}

	if dialer != nil {
		if err := dialer.Close(); err != nil {
			log.Errorf("failed to close pubsub: %s", err)
		}
	}

	if loop != nil {
		loop.Close()
	}

	os.Exit(code)
}

func sighupHandler() {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			log.Debug("reloading config...")
			loadConfig()
			configureLog()
		}
	}()
}

func sigintHandler() {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigint
		shutdown(0)
	}()
}

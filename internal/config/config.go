package config

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

type App struct {
	Name       string
	Version    string
	GitHash    string
	LongName   string
	InstanceId string
}

type Config struct {
	App        App        `yaml:"-"`
	Recording  Recording  `yaml:"recording,omitempty"`
	Transport  Transport  `yaml:"transport,omitempty"`
	PubSub     PubSub     `yaml:"pubsub,omitempty"`
	RateLimit  RateLimit  `yaml:"rateLimit,omitempty"`
	HTTP       HTTP       `yaml:"http,omitempty"`
	Prometheus Prometheus `yaml:"prometheus,omitempty"`
	Log        LogConfig  `yaml:"log"`
	Debug      bool       `yaml:"debug,omitempty"`
}

func (cfg *Config) GetDefaults() *Config {
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets the default values
func (cfg *Config) SetDefaults() {
	if cfg.App.Name == "" {
		var err error
		if cfg.App.Name, err = os.Executable(); err != nil {
			log.Error(err)
			cfg.App.Name = "unknown"
		}
	}

	cfg.Recording = Recording{
		MediaOptions:     "video",
		VideoPausesLimit: 3,
		AudioPausesLimit: 3,
		ChangeCooldown:   15 * time.Second,
		TickInterval:     time.Second,
		AlertDuration:    3 * time.Second,
		FileMode:         "0600",
		Capabilities: Capabilities{
			AudioSupport:             true,
			VideoSupport:             true,
			VideoParticipantsSupport: true,
			PreferredOrientation:     "landscape",
		},
	}
	cfg.Transport = Transport{
		Adapter:     "pubsub",
		CloudDomain: "mediasfu.com",
		AckTimeout:  10 * time.Second,
	}
	cfg.PubSub.Channels = Channels{
		Subscribe: "from-" + cfg.App.Name,
		Publish:   "to-" + cfg.App.Name,
	}
	cfg.PubSub.Adapter = "redis"
	cfg.PubSub.Adapters = make(map[string]interface{})
	cfg.PubSub.Adapters["redis"] = &Redis{
		Address:  ":6379",
		Network:  "tcp",
		Password: "",
	}
	cfg.RateLimit = RateLimit{
		MaxRequests: 5,
		Window:      time.Minute,
	}
	cfg.HTTP = HTTP{
		Enable: false,
		Port:   8080,
	}
	cfg.Prometheus = Prometheus{
		Enable:        false,
		ListenAddress: "127.0.0.1:3200",
	}
}

type Recording struct {
	RoomName         string        `yaml:"roomName,omitempty"`
	MediaOptions     string        `yaml:"mediaOptions,omitempty"`
	VideoPausesLimit int           `yaml:"videoPausesLimit,omitempty"`
	AudioPausesLimit int           `yaml:"audioPausesLimit,omitempty"`
	ChangeCooldown   time.Duration `yaml:"changeCooldown,omitempty"`
	TickInterval     time.Duration `yaml:"tickInterval,omitempty"`
	AlertDuration    time.Duration `yaml:"alertDuration,omitempty"`
	WriteSummaryFile bool          `yaml:"writeSummaryFile,omitempty"`
	SummaryDirectory string        `yaml:"summaryDirectory,omitempty"`
	FileMode         string        `yaml:"fileMode,omitempty"`
	Capabilities     Capabilities  `yaml:"capabilities,omitempty"`
}

type Capabilities struct {
	AudioSupport                     bool   `yaml:"audioSupport,omitempty"`
	VideoSupport                     bool   `yaml:"videoSupport,omitempty"`
	AllParticipantsSupport           bool   `yaml:"allParticipantsSupport,omitempty"`
	VideoParticipantsSupport         bool   `yaml:"videoParticipantsSupport,omitempty"`
	VideoParticipantsFullRoomSupport bool   `yaml:"videoParticipantsFullRoomSupport,omitempty"`
	AllParticipantsFullRoomSupport   bool   `yaml:"allParticipantsFullRoomSupport,omitempty"`
	SupportForOtherOrientation       bool   `yaml:"supportForOtherOrientation,omitempty"`
	MultiFormatsSupport              bool   `yaml:"multiFormatsSupport,omitempty"`
	PreferredOrientation             string `yaml:"preferredOrientation,omitempty"`
}

type Transport struct {
	Adapter     string        `yaml:"adapter,omitempty"`
	Link        string        `yaml:"link,omitempty"`
	LocalLink   string        `yaml:"localLink,omitempty"`
	APIUserName string        `yaml:"apiUserName,omitempty"`
	APIToken    string        `yaml:"apiToken,omitempty"`
	UserName    string        `yaml:"userName,omitempty"`
	CloudDomain string        `yaml:"cloudDomain,omitempty"`
	AckTimeout  time.Duration `yaml:"ackTimeout,omitempty"`
}

type Redis struct {
	Address  string `yaml:"address,omitempty"`
	Network  string `yaml:"network,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

type PubSub struct {
	Channels Channels `yaml:"channels,omitempty"`
	Adapter  string   `yaml:"adapter,omitempty"`
	Adapters map[string]interface{}
}

type Channels struct {
	Subscribe string `yaml:"subscribe,omitempty"`
	Publish   string `yaml:"publish,omitempty"`
}

type RateLimit struct {
	MaxRequests int           `yaml:"maxRequests,omitempty"`
	Window      time.Duration `yaml:"window,omitempty"`
}

type HTTP struct {
	Enable bool `yaml:"enable,omitempty"`
	Port   int  `yaml:"port,omitempty"`
}

type Prometheus struct {
	Enable        bool   `yaml:"enable,omitempty"`
	ListenAddress string `yaml:"listenAddress,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/recording"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func initConfig() *config.Config {
	return (&config.Config{App: app}).GetDefaults()
}

func loadConfig() {
	newCfg := initConfig()
	newCfg.Load(app.Name, flags.config)
	*cfg = *newCfg
}

func initialState(rc config.Recording) recording.State {
	return recording.NewState(rc.RoomName, recording.MediaType(rc.MediaOptions), recording.Limits{
		VideoPauses: rc.VideoPausesLimit,
		AudioPauses: rc.AudioPausesLimit,
	})
}

func capabilities(c config.Capabilities) recording.Capabilities {
	return recording.Capabilities{
		AudioSupport:                     c.AudioSupport,
		VideoSupport:                     c.VideoSupport,
		AllParticipantsSupport:           c.AllParticipantsSupport,
		VideoParticipantsSupport:         c.VideoParticipantsSupport,
		VideoParticipantsFullRoomSupport: c.VideoParticipantsFullRoomSupport,
		AllParticipantsFullRoomSupport:   c.AllParticipantsFullRoomSupport,
		SupportForOtherOrientation:       c.SupportForOtherOrientation,
		MultiFormatsSupport:              c.MultiFormatsSupport,
		PreferredOrientation:             c.PreferredOrientation,
	}
}

func fileMode(s string) os.FileMode {
	m, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		log.Warnf("Invalid summary file mode %s, using 0600", s)
		return 0600
	}
	return os.FileMode(m)
}

func dumpConfig() {
	var v interface{}
	y, _ := yaml.Marshal(cfg)

	if err := yaml.Unmarshal(y, &v); err != nil {
		log.Fatalf("failed to unmarshal config: %s", err)
	}

	if flags.dump != "all" {
		v = lookup(v, strings.Split(flags.dump, "."))
	}
	if v != nil {
		b, _ := yaml.Marshal(v)
		fmt.Print(string(b))
		os.Exit(0)
	}
	os.Exit(1)
}

// lookup walks a decoded yaml document along path. List elements are
// addressed by index.
func lookup(v interface{}, path []string) interface{} {
	for _, a := range path {
		switch t := v.(type) {
		case []interface{}:
			i, err := strconv.Atoi(a)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			v = t[i]
		case map[string]interface{}:
			var ok bool
			if v, ok = t[a]; !ok {
				return nil
			}
		default:
			return nil
		}
	}
	return v
}

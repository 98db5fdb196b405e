package recording

import (
	"github.com/AlekSi/pointer"
)

const (
	MsgLaunchEnded   = "Recording has already ended or you are not allowed to record"
	MsgNotAllowed    = "You are not allowed to record"
	MsgReconfigPause = "You can only re-configure recording after pausing it"
)

type LaunchOptions struct {
	// CanLaunch is set while no recording has been configured yet.
	CanLaunch bool `json:"canLaunch"`
	// StopLaunch forbids launching, e.g. after the recording ended.
	StopLaunch  bool `json:"stopLaunch"`
	LocalUIMode bool `json:"localUIMode"`
}

// Launch toggles the recording modal. Opening it is refused when the
// recording cannot be (re)configured.
func (c *Controller) Launch(opts LaunchOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.store.Snapshot()
	if st.ModalVisible {
		c.store.Update(Patch{ModalVisible: pointer.ToBool(false)})
		return nil
	}

	allowed := c.caps.AudioSupport || c.caps.VideoSupport
	if (opts.StopLaunch || st.Stopped) && !opts.LocalUIMode {
		_, err := c.reject(ErrLaunchRefused, MsgLaunchEnded)
		return err
	}
	if opts.CanLaunch && !opts.LocalUIMode {
		if !allowed {
			_, err := c.reject(ErrLaunchRefused, MsgNotAllowed)
			return err
		}
		c.store.Update(Patch{
			ClearedToRecord: pointer.ToBool(false),
			CanRecord:       pointer.ToBool(false),
		})
	}
	if st.Started && !st.Paused {
		_, err := c.reject(ErrLaunchRefused, MsgReconfigPause)
		return err
	}
	if !allowed && !opts.LocalUIMode {
		_, err := c.reject(ErrLaunchRefused, MsgNotAllowed)
		return err
	}

	c.store.Update(Patch{ModalVisible: pointer.ToBool(true)})
	return nil
}

package monitor

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// Sounder plays a notification sound by file path. An empty path is a
// no-op.
type Sounder interface {
	Play(path string)
}

// Notifier plays short WAV notification sounds. Playback errors are
// logged, never fatal: a missing sound card must not break monitoring.
type Notifier struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	ready      bool
	failed     bool
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Play decodes and plays the WAV file at path without blocking the
// caller. An empty path is a no-op.
func (n *Notifier) Play(path string) {
	if path == "" {
		return
	}
	go func() {
		if err := n.play(path); err != nil {
			log.Printf("[Monitor] Sound playback failed: %v", err)
		}
	}()
}

func (n *Notifier) play(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return err
	}

	n.mu.Lock()
	if n.failed {
		n.mu.Unlock()
		streamer.Close()
		return nil
	}
	if !n.ready {
		// The speaker is initialized once, at the first sound's rate.
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond)); err != nil {
			n.failed = true
			n.mu.Unlock()
			streamer.Close()
			return fmt.Errorf("speaker init: %w", err)
		}
		n.sampleRate = format.SampleRate
		n.ready = true
	}
	rate := n.sampleRate
	n.mu.Unlock()

	var stream beep.Streamer = streamer
	if format.SampleRate != rate {
		stream = beep.Resample(4, format.SampleRate, rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(stream, beep.Callback(func() { close(done) })))
	<-done
	return streamer.Close()
}

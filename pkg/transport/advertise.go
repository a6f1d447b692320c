package transport

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wareck/gerbera/pkg/discovery"
)

// advertiseTimeout bounds a single round of announcements.
const advertiseTimeout = 5 * time.Second

// advertisement sends alive announcements until stopped.
type advertisement struct {
	advertiser discovery.Advertiser
	info       discovery.DeviceInfo
	period     time.Duration
	logger     *slog.Logger
	onState    func(newState, reason string)

	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

// newAdvertisement creates an announcement loop. The device is announced
// twice per interval so it never lapses from control point caches.
func newAdvertisement(adv discovery.Advertiser, info discovery.DeviceInfo, interval time.Duration, logger *slog.Logger, onState func(string, string)) *advertisement {
	period := interval / 2
	if period <= 0 {
		period = interval
	}
	info.MaxAge = interval
	return &advertisement{
		advertiser: adv,
		info:       info,
		period:     period,
		logger:     logger,
		onState:    onState,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (a *advertisement) start() {
	go a.loop()
}

func (a *advertisement) loop() {
	defer close(a.done)

	ticker := time.NewTicker(a.period)
	defer ticker.Stop()

	a.alive()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.alive()
		}
	}
}

func (a *advertisement) alive() {
	ctx, cancel := context.WithTimeout(context.Background(), advertiseTimeout)
	defer cancel()

	if err := a.advertiser.Alive(ctx, &a.info); err != nil {
		a.logger.Warn("alive announcement failed", "udn", a.info.UDN, "error", err)
		return
	}
	a.logger.Debug("alive announcement sent", "udn", a.info.UDN, "location", a.info.Location)
}

// stop ends the loop and announces departure. Safe to call more than once.
func (a *advertisement) stop() error {
	var err error
	a.once.Do(func() {
		close(a.stopCh)
		<-a.done

		ctx, cancel := context.WithTimeout(context.Background(), advertiseTimeout)
		defer cancel()
		err = a.advertiser.ByeBye(ctx, &a.info)
		if a.onState != nil {
			a.onState("STOPPED", "byebye")
		}
	})
	return err
}

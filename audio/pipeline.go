package audio

import (
	"context"
	"errors"
	"time"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Pipeline ticks a FeatureSource at a fixed rate and hands the newest
// FeatureVector to consumers. A slow consumer only ever sees the latest
// vector; older ones are dropped.
type Pipeline struct {
	source   FeatureSource
	interval time.Duration
	out      chan common.FeatureVector
	now      func() time.Time
	common.Publisher
}

// NewPipeline returns a Pipeline ticking at cfg.TickRateHz
func NewPipeline(src FeatureSource, cfg common.Config) *Pipeline {
	return &Pipeline{
		source:   src,
		interval: cfg.WithDefaults().TickInterval(),
		out:      make(chan common.FeatureVector, 1),
		now:      time.Now,
	}
}

// NewSubscription returns a new *common.Subscription for receiving EventBeat
// and EventFeatures events
func (p *Pipeline) NewSubscription() (*common.Subscription, error) {
	sub := common.NewSubscription(p)
	p.Subscribe(sub)
	return sub, nil
}

// CloseSubscription is a callback for handling the closing of subscriptions.
func (p *Pipeline) CloseSubscription(sub *common.Subscription) error {
	return p.Unsubscribe(sub)
}

// Features returns the channel of feature vectors. It is closed when Run
// returns.
func (p *Pipeline) Features() <-chan common.FeatureVector {
	return p.out
}

// Interval returns the configured tick interval
func (p *Pipeline) Interval() time.Duration {
	return p.interval
}

// Run ticks until ctx is done or the source fails. A tick of zero uses the
// configured interval.
func (p *Pipeline) Run(ctx context.Context, tick time.Duration) error {
	defer close(p.out)
	if tick <= 0 {
		tick = p.interval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fv, err := p.source.Features(ctx, p.now())
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if errors.Is(err, common.ErrAnalysisUnavailable) {
					common.Log.Warnf("Audio pipeline stopped: %v", err)
				}
				return err
			}
			p.emit(fv)
		}
	}
}

func (p *Pipeline) emit(fv common.FeatureVector) {
	select {
	case p.out <- fv:
	default:
		select {
		case <-p.out:
		default:
		}
		select {
		case p.out <- fv:
		default:
		}
	}

	if fv.Beat != nil {
		if err := p.Publish(common.EventBeat{Beat: *fv.Beat}); err != nil {
			common.Log.Debugf("Failed publishing beat: %v", err)
		}
	}
	if err := p.Publish(common.EventFeatures{Features: fv}); err != nil {
		common.Log.Debugf("Failed publishing features: %v", err)
	}
}

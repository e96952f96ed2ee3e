// Package dispatch serializes frames onto the transport.
//
// A Dispatcher owns the single write path of a connection: every write, from
// manual commands, music sync or probing, goes through its queue and is issued
// by one goroutine. Writes to the same characteristic are spaced by at least
// the configured minimum. Failed writes are never retried.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/device"
)

const defaultQueueSize = 64

// Write is a single queued write
type Write struct {
	Characteristic common.Characteristic
	Payload        []byte
	Type           device.WriteType
	Label          string
}

type request struct {
	ctx    context.Context
	write  Write
	result chan error
}

// Dispatcher is the serialized write path of one connection
type Dispatcher struct {
	transport common.Transport
	spacing   time.Duration
	overrides map[string]time.Duration
	last      map[string]time.Time
	queue     chan request
	quitChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
	common.Publisher
	sync.RWMutex
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithSpacing sets the default minimum spacing between two writes to the same
// characteristic
func WithSpacing(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.spacing = d
	}
}

// WithConfig applies the write spacing from cfg
func WithConfig(cfg common.Config) Option {
	return WithSpacing(cfg.WithDefaults().MinWriteSpacing())
}

// New starts a Dispatcher writing to t
func New(t common.Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: t,
		spacing:   common.DefaultMinWriteSpacingMs * time.Millisecond,
		overrides: make(map[string]time.Duration),
		last:      make(map[string]time.Time),
		queue:     make(chan request, defaultQueueSize),
		quitChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.handler()
	return d
}

// NewSubscription returns a new *common.Subscription for receiving
// EventWriteFailed events
func (d *Dispatcher) NewSubscription() (*common.Subscription, error) {
	sub := common.NewSubscription(d)
	d.Subscribe(sub)
	return sub, nil
}

// CloseSubscription is a callback for handling the closing of subscriptions.
func (d *Dispatcher) CloseSubscription(sub *common.Subscription) error {
	return d.Unsubscribe(sub)
}

// Spacing returns the minimum spacing applied to c
func (d *Dispatcher) Spacing(c common.Characteristic) time.Duration {
	d.RLock()
	defer d.RUnlock()
	if s, ok := d.overrides[c.ID]; ok {
		return s
	}
	return d.spacing
}

// SetSpacing overrides the spacing for c
func (d *Dispatcher) SetSpacing(c common.Characteristic, spacing time.Duration) {
	d.Lock()
	d.overrides[c.ID] = spacing
	d.Unlock()
}

// Submit enqueues w and returns a channel that receives the write result. The
// channel is buffered and always receives exactly one value.
func (d *Dispatcher) Submit(ctx context.Context, w Write) <-chan error {
	result := make(chan error, 1)
	select {
	case <-d.quitChan:
		result <- common.ErrClosed
		return result
	default:
	}

	select {
	case d.queue <- request{ctx: ctx, write: w, result: result}:
	case <-ctx.Done():
		result <- ctx.Err()
		return result
	case <-d.quitChan:
		result <- common.ErrClosed
		return result
	}

	// Close may have raced the enqueue; once the handler is gone nothing else
	// will answer what is left in the queue
	select {
	case <-d.quitChan:
		<-d.doneChan
		d.drain()
	default:
	}
	return result
}

// Send enqueues w and waits for its result
func (d *Dispatcher) Send(ctx context.Context, w Write) error {
	select {
	case err := <-d.Submit(ctx, w):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPlan writes every step of plan to c in order, pausing for each step's
// delay. Failed steps are recorded and skipped. Cancelling ctx stops the plan
// between two writes; the remaining steps are dropped and reported as skipped.
func (d *Dispatcher) RunPlan(ctx context.Context, c common.Characteristic, plan Plan, observer StepObserver) (PlanResult, error) {
	var res PlanResult
	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			res.Skipped = len(plan) - i
			return res, err
		}

		err := d.Send(ctx, Write{Characteristic: c, Payload: step.Payload, Label: step.Label})
		if observer != nil {
			observer(i, step, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				res.Cancelled = true
				res.Skipped = len(plan) - i
				return res, ctx.Err()
			}
			res.Failed++
			res.Failures = append(res.Failures, StepFailure{Index: i, Step: step, Err: err})
		} else {
			res.Sent++
		}

		if step.Delay <= 0 || i == len(plan)-1 {
			continue
		}
		timer := time.NewTimer(step.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Cancelled = true
			res.Skipped = len(plan) - i - 1
			return res, ctx.Err()
		case <-timer.C:
		}
	}
	return res, nil
}

// Close stops the dispatcher. Queued writes that have not started fail with
// common.ErrClosed.
func (d *Dispatcher) Close() error {
	closed := false
	d.closeOnce.Do(func() {
		close(d.quitChan)
		closed = true
	})
	if !closed {
		return common.ErrClosed
	}
	<-d.doneChan
	return nil
}

func (d *Dispatcher) handler() {
	defer close(d.doneChan)
	for {
		select {
		case <-d.quitChan:
			d.drain()
			return
		case req := <-d.queue:
			req.result <- d.write(req)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case req := <-d.queue:
			req.result <- common.ErrClosed
		default:
			return
		}
	}
}

// wait blocks until c may be written again
func (d *Dispatcher) wait(ctx context.Context, c common.Characteristic) error {
	spacing := d.Spacing(c)
	d.RLock()
	last, ok := d.last[c.ID]
	d.RUnlock()
	if !ok {
		return nil
	}
	remaining := spacing - time.Since(last)
	if remaining <= 0 {
		return nil
	}

	limiter := time.NewTimer(remaining)
	defer limiter.Stop()
	select {
	case <-limiter.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quitChan:
		return common.ErrClosed
	}
}

func (d *Dispatcher) write(req request) error {
	if err := req.ctx.Err(); err != nil {
		return err
	}
	w := req.write
	if err := d.wait(req.ctx, w.Characteristic); err != nil {
		return err
	}

	ack := w.Type.Acknowledged(w.Characteristic)
	common.Log.Debugf("Writing %s to %s (ack=%t)", Step{Payload: w.Payload, Label: w.Label}, w.Characteristic.UUID, ack)
	err := d.transport.Write(req.ctx, w.Characteristic, w.Payload, ack)

	d.Lock()
	d.last[w.Characteristic.ID] = time.Now()
	d.Unlock()

	if err != nil {
		common.Log.Warnf("Write of %s to %s failed: %v", common.HexString(w.Payload), w.Characteristic.UUID, err)
		failure := fmt.Errorf(`%w: %w`, common.ErrWriteFailed, err)
		go func() {
			if perr := d.Publish(common.EventWriteFailed{
				Characteristic: w.Characteristic,
				Payload:        w.Payload,
				Err:            failure,
			}); perr != nil {
				common.Log.Debugf("Failed publishing write failure: %v", perr)
			}
		}()
		return failure
	}
	return nil
}

package probe

import (
	"context"
	"fmt"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/dispatch"
)

// PlanRunner executes a plan against one characteristic. *dispatch.Dispatcher
// satisfies it.
type PlanRunner interface {
	RunPlan(ctx context.Context, c common.Characteristic, plan dispatch.Plan, observer dispatch.StepObserver) (dispatch.PlanResult, error)
}

// TargetReport is the outcome of a plan on one characteristic
type TargetReport struct {
	Characteristic common.Characteristic
	Result         dispatch.PlanResult
}

// Report counts what a probe run did. It deliberately has no notion of
// success.
type Report struct {
	Targets   []TargetReport
	Sent      int
	Failed    int
	Skipped   int
	Cancelled bool
}

// Failures returns every failed step across all targets
func (r Report) Failures() []dispatch.StepFailure {
	var out []dispatch.StepFailure
	for _, t := range r.Targets {
		out = append(out, t.Result.Failures...)
	}
	return out
}

// Runner drives plans through a dispatcher and publishes an EventProbeStep for
// every attempted write
type Runner struct {
	runner PlanRunner
	common.Publisher
}

// NewRunner returns a Runner writing through r
func NewRunner(r PlanRunner) *Runner {
	return &Runner{runner: r}
}

// NewSubscription returns a new *common.Subscription for receiving probe step
// events
func (r *Runner) NewSubscription() (*common.Subscription, error) {
	sub := common.NewSubscription(r)
	r.Subscribe(sub)
	return sub, nil
}

// CloseSubscription is a callback for handling the closing of subscriptions.
func (r *Runner) CloseSubscription(sub *common.Subscription) error {
	return r.Unsubscribe(sub)
}

// Run executes plan on each target in turn. Write errors are logged, counted
// and skipped. Cancelling ctx stops at the next write boundary and returns
// common.ErrProbeCancelled along with the partial report.
func (r *Runner) Run(ctx context.Context, plan Plan, targets ...common.Characteristic) (Report, error) {
	var report Report
	total := len(plan)

	for ti, target := range targets {
		common.Log.Infof("Probing %s with %d payloads (%v)", target, total, plan.Duration())
		observer := func(i int, step dispatch.Step, err error) {
			if err != nil {
				common.Log.Warnf("Probe %d/%d %s on %s failed: %v", i+1, total, step, target.UUID, err)
			} else {
				common.Log.Infof("Probe %d/%d %s", i+1, total, step)
			}
			if perr := r.Publish(common.EventProbeStep{
				Index:          i,
				Total:          total,
				Label:          step.Label,
				Characteristic: target,
				Payload:        step.Payload,
				Err:            err,
			}); perr != nil {
				common.Log.Debugf("Failed publishing probe step: %v", perr)
			}
		}

		res, err := r.runner.RunPlan(ctx, target, plan, observer)
		report.Targets = append(report.Targets, TargetReport{Characteristic: target, Result: res})
		report.Sent += res.Sent
		report.Failed += res.Failed
		report.Skipped += res.Skipped

		if err != nil || res.Cancelled {
			report.Skipped += total * (len(targets) - ti - 1)
			report.Cancelled = true
			common.Log.Infof("Probe cancelled after %d writes", report.Sent+report.Failed)
			if err == nil {
				err = ctx.Err()
			}
			return report, fmt.Errorf(`%w: %v`, common.ErrProbeCancelled, err)
		}
	}

	common.Log.Infof("Probe finished: %d sent, %d failed", report.Sent, report.Failed)
	return report, nil
}

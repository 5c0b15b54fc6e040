package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/notify"
)

// State is the part of the item store the orchestrator reads and writes.
type State interface {
	Items() []model.Item
	Settings() model.NotificationSettings
	SetNotificationIDs(ctx context.Context, ids model.NotificationIDs) error
	DisableNotifications(ctx context.Context) error
}

// Orchestrator runs reconciliation passes in response to app start,
// foregrounding, item mutations and settings changes. Passes triggered by
// mutations run in the background. Passes never overlap, so the platform
// holds exactly the occurrences of the last pass.
type Orchestrator struct {
	state     State
	scheduler *Scheduler
	prober    notify.Prober
	logger    *slog.Logger

	mu sync.Mutex // serializes Reconcile
	wg sync.WaitGroup
}

// NewOrchestrator wires the orchestrator to the store and scheduler. If the
// scheduler's platform implements notify.Prober it is probed on Start.
func NewOrchestrator(state State, scheduler *Scheduler) *Orchestrator {
	o := &Orchestrator{
		state:     state,
		scheduler: scheduler,
		logger:    slog.Default(),
	}
	if p, ok := scheduler.Platform.(notify.Prober); ok {
		o.prober = p
	}
	return o
}

// Supported reports whether the notification platform is usable.
func (o *Orchestrator) Supported() bool {
	return o.scheduler.Capability.Supported()
}

// Start probes the platform and runs the app-start reconciliation. The pass
// runs to completion even if ctx is canceled meanwhile.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if o.prober != nil {
		if err := o.prober.Probe(ctx); err != nil {
			o.scheduler.markUnsupported(err)
		}
	}
	return o.Reconcile(ctx, "start")
}

// Foreground runs the reconciliation for an app returning to the foreground.
// A caller going away, such as a disconnected HTTP client, does not cut the
// pass short.
func (o *Orchestrator) Foreground(ctx context.Context) error {
	return o.Reconcile(context.WithoutCancel(ctx), "foreground")
}

// ItemsChanged implements store.Observer.
func (o *Orchestrator) ItemsChanged() { o.Trigger("items") }

// SettingsChanged implements store.Observer.
func (o *Orchestrator) SettingsChanged() { o.Trigger("settings") }

// Trigger starts a reconciliation pass in the background. Failures are
// logged and never reach the caller.
func (o *Orchestrator) Trigger(reason string) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.Reconcile(context.Background(), reason); err != nil {
			o.logger.Error("reconciliation failed", "reason", reason, "error", err)
		}
	}()
}

// Wait blocks until every background pass has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Reconcile brings the platform in line with the current items and settings
// and stores the resulting handles.
func (o *Orchestrator) Reconcile(ctx context.Context, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	settings := o.state.Settings()

	if !o.Supported() {
		return o.forceDisable(ctx, settings)
	}

	if !settings.Enabled {
		o.scheduler.CancelAll(ctx)
		if err := o.state.SetNotificationIDs(ctx, model.NotificationIDs{}); err != nil {
			return fmt.Errorf("clearing notification ids: %w", err)
		}
		o.logger.Info("notifications cleared", "reason", reason)
		return nil
	}

	ids := o.scheduler.ScheduleAll(ctx, o.state.Items(), settings)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reconciliation interrupted: %w", err)
	}
	if !o.Supported() {
		return o.forceDisable(ctx, settings)
	}
	if err := o.state.SetNotificationIDs(ctx, ids); err != nil {
		return fmt.Errorf("storing notification ids: %w", err)
	}

	o.logger.Info("notifications scheduled", "reason", reason, "items", len(ids), "occurrences", ids.Count())
	return nil
}

// SendTest delivers an immediate test notification.
func (o *Orchestrator) SendTest(ctx context.Context) error {
	if _, err := o.scheduler.SendTest(ctx); err != nil {
		if !o.Supported() {
			if derr := o.forceDisable(ctx, o.state.Settings()); derr != nil {
				o.logger.Error("failed to disable notifications", "error", derr)
			}
		}
		return err
	}
	return nil
}

func (o *Orchestrator) forceDisable(ctx context.Context, settings model.NotificationSettings) error {
	if !settings.Enabled {
		return nil
	}
	if err := o.state.DisableNotifications(ctx); err != nil {
		return err
	}
	o.logger.Warn("notifications disabled: platform unsupported")
	return nil
}

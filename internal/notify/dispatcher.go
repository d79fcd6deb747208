package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"bouw-backoffice/internal/metrics"
	"bouw-backoffice/internal/model"

	"go.uber.org/zap"
)

const stockWarningTitle = "Onvoldoende voorraad"

type UserFinder interface {
	FindActiveByRoleCodes(ctx context.Context, codes []string) ([]model.User, error)
}

type NotificationStore interface {
	CreateBatch(ctx context.Context, notifications []model.Notification) error
}

// Pusher delivers a payload to the open sockets of the given users.
type Pusher interface {
	SendToUsers(userIDs []string, payload []byte)
}

// Dispatcher turns StockWarningRaised events into persisted notifications
// for office staff and pushes them live. Publishing never blocks the caller.
type Dispatcher struct {
	users   UserFinder
	store   NotificationStore
	pusher  Pusher
	log     *zap.Logger
	events  chan model.StockWarningRaised
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(users UserFinder, store NotificationStore, pusher Pusher, log *zap.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		users:   users,
		store:   store,
		pusher:  pusher,
		log:     log.Named("notify"),
		events:  make(chan model.StockWarningRaised, buffer),
		timeout: 10 * time.Second,
	}
}

// Publish queues evt. When the queue is full the event is dropped and logged.
func (d *Dispatcher) Publish(evt model.StockWarningRaised) {
	select {
	case d.events <- evt:
	default:
		metrics.NotificationsFailedTotal.Inc()
		d.log.Warn("notification queue full, stock warning dropped",
			zap.String("actor_id", evt.ActorID.String()),
			zap.Int("warnings", len(evt.Warnings)),
		)
	}
}

// Start runs the dispatch loop until ctx is cancelled, then handles what is
// still queued. Wait blocks until that drain has finished.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	d.log.Info("notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.log.Info("notification dispatcher stopped")
			return
		case evt := <-d.events:
			d.dispatch(evt)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case evt := <-d.events:
			d.dispatch(evt)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch(evt model.StockWarningRaised) {
	// Own context: the request that raised the event is long gone.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.Handle(ctx, evt); err != nil {
		metrics.NotificationsFailedTotal.Inc()
		d.log.Error("failed to deliver stock warning",
			zap.String("actor_id", evt.ActorID.String()),
			zap.Int("warnings", len(evt.Warnings)),
			zap.Error(err),
		)
	}
}

// Handle creates one notification per office/admin user and pushes it.
func (d *Dispatcher) Handle(ctx context.Context, evt model.StockWarningRaised) error {
	if len(evt.Warnings) == 0 {
		return nil
	}

	recipients, err := d.users.FindActiveByRoleCodes(ctx, model.StockWarningRecipients)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	if len(recipients) == 0 {
		d.log.Warn("no office or admin users to notify about stock warning")
		return nil
	}

	message := FormatStockWarnings(evt.Warnings)
	sender := evt.ActorID
	notifications := make([]model.Notification, 0, len(recipients))
	for _, u := range recipients {
		notifications = append(notifications, model.Notification{
			RecipientID: u.ID,
			SenderID:    &sender,
			Type:        model.NotificationTypeStockWarning,
			Title:       stockWarningTitle,
			Message:     message,
			Status:      model.NotificationUnread,
		})
	}

	if err := d.store.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	for _, n := range notifications {
		payload, _ := json.Marshal(map[string]interface{}{
			"type":         "notification",
			"action":       "stock_warning",
			"notification": n,
			"warnings":     evt.Warnings,
			"project_id":   evt.ProjectID,
		})
		d.pusher.SendToUsers([]string{n.RecipientID.String()}, payload)
	}

	d.log.Info("stock warning delivered",
		zap.Int("recipients", len(notifications)),
		zap.Int("warnings", len(evt.Warnings)),
	)
	return nil
}

// FormatStockWarnings renders one message body listing every under-stocked line.
func FormatStockWarnings(warnings []model.StockWarning) string {
	var b strings.Builder
	b.WriteString("Er is meer afgeboekt dan op voorraad:")
	for _, w := range warnings {
		fmt.Fprintf(&b, "\n- %s (%s): gevraagd %s, beschikbaar %s",
			w.ProductName, w.LocationName, w.Requested.String(), w.Available.String())
	}
	return b.String()
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	users []model.User
	codes []string
	err   error
}

func (f *fakeUsers) FindActiveByRoleCodes(ctx context.Context, codes []string) ([]model.User, error) {
	f.codes = codes
	return f.users, f.err
}

type fakeStore struct {
	mu    sync.Mutex
	saved []model.Notification
	err   error
}

func (f *fakeStore) CreateBatch(ctx context.Context, ns []model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, ns...)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakePusher struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func (f *fakePusher) SendToUsers(ids []string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[string][][]byte)
	}
	for _, id := range ids {
		f.sent[id] = append(f.sent[id], payload)
	}
}

func user(id uuid.UUID) model.User {
	u := model.User{}
	u.ID = id
	return u
}

func warning() model.StockWarning {
	return model.StockWarning{
		ProductID:    uuid.New(),
		ProductName:  "Koperbuis 15mm",
		LocationID:   uuid.New(),
		LocationName: "Bus 3",
		Available:    decimal.NewFromInt(5),
		Requested:    decimal.NewFromInt(8),
	}
}

func TestHandle_OneNotificationPerRecipient(t *testing.T) {
	office, admin := uuid.New(), uuid.New()
	users := &fakeUsers{users: []model.User{user(office), user(admin)}}
	store := &fakeStore{}
	pusher := &fakePusher{}
	d := NewDispatcher(users, store, pusher, zap.NewNop(), 4)

	actor := uuid.New()
	w1, w2 := warning(), warning()
	w2.ProductName = "Kabel 3x2.5"
	err := d.Handle(context.Background(), model.StockWarningRaised{Warnings: []model.StockWarning{w1, w2}, ActorID: actor})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{model.RoleAdmin, model.RoleOffice}, users.codes)
	require.Len(t, store.saved, 2)
	for _, n := range store.saved {
		assert.Equal(t, model.NotificationTypeStockWarning, n.Type)
		assert.Equal(t, model.NotificationUnread, n.Status)
		assert.Equal(t, actor, *n.SenderID)
		assert.Contains(t, n.Message, "Koperbuis 15mm (Bus 3): gevraagd 8, beschikbaar 5")
		assert.Contains(t, n.Message, "Kabel 3x2.5")
	}
	assert.Len(t, pusher.sent[office.String()], 1)
	assert.Len(t, pusher.sent[admin.String()], 1)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(pusher.sent[office.String()][0], &payload))
	assert.Equal(t, "stock_warning", payload["action"])
}

func TestHandle_StoreFailureIsReturned(t *testing.T) {
	users := &fakeUsers{users: []model.User{user(uuid.New())}}
	store := &fakeStore{err: errors.New("insert failed")}
	pusher := &fakePusher{}
	d := NewDispatcher(users, store, pusher, zap.NewNop(), 4)

	err := d.Handle(context.Background(), model.StockWarningRaised{Warnings: []model.StockWarning{warning()}})
	assert.Error(t, err)
	assert.Empty(t, pusher.sent)
}

func TestHandle_NoWarningsIsNoop(t *testing.T) {
	users := &fakeUsers{}
	d := NewDispatcher(users, &fakeStore{}, &fakePusher{}, zap.NewNop(), 4)

	require.NoError(t, d.Handle(context.Background(), model.StockWarningRaised{}))
	assert.Nil(t, users.codes)
}

func TestPublish_DropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(&fakeUsers{}, &fakeStore{}, &fakePusher{}, zap.NewNop(), 1)

	evt := model.StockWarningRaised{Warnings: []model.StockWarning{warning()}}
	d.Publish(evt)
	d.Publish(evt) // must not block

	assert.Len(t, d.events, 1)
}

func TestStart_DrainsOnShutdown(t *testing.T) {
	users := &fakeUsers{users: []model.User{user(uuid.New())}}
	store := &fakeStore{}
	d := NewDispatcher(users, store, &fakePusher{}, zap.NewNop(), 8)

	evt := model.StockWarningRaised{Warnings: []model.StockWarning{warning()}}
	for i := 0; i < 3; i++ {
		d.Publish(evt)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
	assert.Equal(t, 3, store.count())
}

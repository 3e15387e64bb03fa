package billing

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/billing_api/internal/testutil"
)

type recordedEvent struct {
	profileID uint
	event     Event
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Notify(_ context.Context, profileID uint, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{profileID: profileID, event: event.(Event)})
}

func (n *recordingNotifier) snapshot() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedEvent(nil), n.events...)
}

func newTestService(t *testing.T, opts ...Option) (*BillingService, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	svc := NewBillingService(
		gdb,
		ledger.NewLedgerService(gdb, zerolog.Nop()),
		contracts.NewContractService(gdb),
		zerolog.Nop(),
		opts...,
	)
	return svc, gdb
}

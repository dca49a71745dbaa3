package publishers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/platform/audit/publishers"
	"riskgate/pkg/platform/audit/publishers/compliance"
	"riskgate/pkg/platform/audit/publishers/ops"
	"riskgate/pkg/platform/audit/publishers/security"
	"riskgate/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) AppendAuditEvent(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func TestRouterDispatchesByCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	sec := security.New(store, security.WithFlushInterval(time.Hour))
	async := audit.NewPublisher(store)
	router := publishers.NewRouter(compliance.New(store), sec, ops.New(async))

	require.NoError(t, router.Emit(ctx, audit.Event{UserID: "u1", Action: string(audit.EventComplianceViolation)}))
	require.NoError(t, router.Emit(ctx, audit.Event{UserID: "u1", Action: string(audit.EventThreatDetected)}))
	require.NoError(t, router.Emit(ctx, audit.Event{UserID: "u1", Action: string(audit.EventSecurityEventProcessed)}))

	stored, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1, "only the compliance event is written synchronously")
	assert.Equal(t, audit.CategoryCompliance, stored[0].Category)
	assert.NotEmpty(t, stored[0].ID)

	assert.Equal(t, 1, sec.Pending())
	assert.Len(t, async.Inbox(), 1)

	sec.Flush(ctx)
	stored, _ = store.ListByUser(ctx, "u1")
	assert.Len(t, stored, 2)
}

func TestCompliancePublisherReturnsStoreErrors(t *testing.T) {
	pub := compliance.New(failingStore{})
	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventRiskAssessed)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.ErrorIs(t, pub.Emit(context.Background(), audit.Event{}), compliance.ErrMissingAction)
}

func TestOpsPublisherSwallowsDownstreamErrors(t *testing.T) {
	pub := ops.New(compliance.New(failingStore{}))
	assert.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventDeviceTrustUpdated)}))
}

func TestOpsPublisherSamplesOut(t *testing.T) {
	store := memory.NewInMemoryStore()
	sampler := ops.NewSampler(1)
	sampler.SetRate(string(audit.EventSecurityEventProcessed), 0)
	pub := ops.New(compliance.New(store), ops.WithSampler(sampler))
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: "u", Action: string(audit.EventSecurityEventProcessed)}))
	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: "u", Action: string(audit.EventDeviceTrustUpdated)}))

	stored, _ := store.ListByUser(ctx, "u")
	require.Len(t, stored, 1)
	assert.Equal(t, string(audit.EventDeviceTrustUpdated), stored[0].Action)
}

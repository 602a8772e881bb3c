package unitofwork_test

import (
	"context"
	"os"
	"testing"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/model"
	"customer-service-be/internal/repository/specification"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/pkg/database"
	"customer-service-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const embeddingDims = 768

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error)
	require.NoError(t, db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error)
	require.NoError(t, db.AutoMigrate(
		&model.Conversation{},
		&model.Customer{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Shipment{},
		&model.SupportTicket{},
		&model.PaymentEvent{},
	))
	return db
}

func unitVector(hot int) []float32 {
	v := make([]float32, embeddingDims)
	v[hot] = 1
	return v
}

func TestConversationLifecycle(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	user := "it-" + uuid.NewString()[:8]
	session := "sess-" + uuid.NewString()[:8]

	first, err := repo.Store(ctx, store.Turn{UserID: user, SessionID: session, Message: "where is order #10001?"}, unitVector(0))
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.NoError(t, repo.UpdateResponse(ctx, first, "It shipped yesterday.", map[string]float64{"neutral": 0.8}))

	time.Sleep(10 * time.Millisecond)
	// zero vector is stored without an embedding
	_, err = repo.Store(ctx, store.Turn{UserID: user, SessionID: session, Message: "thanks"}, make([]float32, embeddingDims))
	require.NoError(t, err)

	turns, err := repo.FetchBySession(ctx, session, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	var answered store.Turn
	for _, tr := range turns {
		if tr.ID == first {
			answered = tr
		}
	}
	assert.Equal(t, "It shipped yesterday.", answered.Response)
	assert.InDelta(t, 0.8, answered.Sentiment["neutral"], 1e-9)

	similar, err := repo.FetchSimilar(ctx, unitVector(0), 5, user)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, first, similar[0].Turn.ID)
	assert.InDelta(t, 1.0, similar[0].Score, 1e-6)

	recent, err := repo.FindByUserId(ctx, user, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "thanks", recent[0].Message)
}

func TestPaymentEventDedup(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).PaymentEventRepository()

	event := &entity.PaymentEvent{
		EventId:     "evt-" + uuid.NewString(),
		EventType:   "settlement",
		PaymentId:   "order-" + uuid.NewString()[:8],
		UserId:      "customer123",
		Status:      "settlement",
		GrossAmount: "25000.00",
		Payload:     map[string]interface{}{"transaction_status": "settlement"},
	}

	created, err := repo.Create(ctx, event)
	require.NoError(t, err)
	assert.True(t, created)

	dup := *event
	dup.Id = uuid.Nil
	created, err = repo.Create(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&model.PaymentEvent{}).Where("event_id = ?", event.EventId).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCustomerRollback(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	ref := "customer" + uuid.NewString()[:6]

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.CustomerRepository().Create(ctx, &entity.Customer{
		CustomerRef: ref,
		Email:       ref + "@example.com",
		FirstName:   "Temp",
		Status:      "active",
	}))

	inTx, err := uow.CustomerRepository().FindOne(ctx, specification.ByCustomerRef{CustomerRef: ref})
	require.NoError(t, err)
	require.NotNil(t, inTx)
	require.NoError(t, uow.Rollback())

	after, err := factory.NewUnitOfWork(ctx).CustomerRepository().FindOne(ctx, specification.ByCustomerEmail{Email: ref + "@example.com"})
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestUnitOfWorkCommitWithoutBegin(t *testing.T) {
	db := setupDB(t)
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(context.Background())
	assert.ErrorIs(t, uow.Commit(), unitofwork.ErrNoActiveTx)
	assert.NoError(t, uow.Rollback())
}

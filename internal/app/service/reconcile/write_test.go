package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bloomfeed/billing/internal/app/service/catalog"
	"github.com/bloomfeed/billing/internal/app/service/identity"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/internal/platform/paypalclient"
	"github.com/bloomfeed/billing/pkg/config"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func newWriteReconciler(db *gorm.DB, provider paypalclient.Client, lg ledger.Ledger, ids identity.Resolver) *Service {
	return NewService(testConfig(), db, zap.NewNop().Sugar(), provider, lg, ids)
}

func completedOrder() *paypalclient.Order {
	return &paypalclient.Order{
		ID:       "ORDER-OK",
		Status:   paypalclient.OrderStatusCompleted,
		Captures: []paypalclient.CapturedAmount{{CurrencyCode: "USD", Value: "39.99"}},
	}
}

// Replaying an order id collapses on the unique payment reference key before
// any credits move.
func TestPurchaseCredits_DuplicateOrderCollapses(t *testing.T) {
	db, mock := newMockDB(t)
	lg := &stubLedger{}
	s := newWriteReconciler(db, &stubProvider{order: completedOrder()}, lg, &stubIdentity{})

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transaction" \(`).WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	_, err := s.PurchaseCredits(context.Background(), &PurchaseCreditsRequest{
		Owner: testOwner, BundleName: "Neural Spark", OrderID: "ORDER-OK",
	})
	require.ErrorIs(t, err, ErrDuplicateTransaction)
	require.Zero(t, lg.grants, "a duplicate must never grant credits")
	require.NoError(t, mock.ExpectationsWereMet())
}

// A transaction collision after the subscription insert must undo the
// subscription in the same request: both rows land or neither does.
func TestCreateSubscription_CollisionRollsBackSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	p := &stubProvider{sub: &paypalclient.Subscription{
		ID: "I-1", Status: paypalclient.SubscriptionStatusActive, PlanID: "P-GROWTH-MONTHLY",
	}}
	s := newWriteReconciler(db, p, &stubLedger{}, &stubIdentity{owner: &testOwner})

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "subscription" \(`).
		WillReturnRows(sqlmock.NewRows([]string{"ads_used"}).AddRow(0))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transaction" \(`).WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subscription"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := s.CreateSubscription(context.Background(), &CreateSubscriptionRequest{
		ActorID: "user-1", Owner: testOwner,
		PackageID: catalog.PackageGrowth, PayPalSubscriptionID: "I-1",
	})
	require.ErrorIs(t, err, ErrDuplicateTransaction)
	require.NoError(t, mock.ExpectationsWereMet(), "the compensating delete must run")
}

// When the grant fails after the reference key is claimed, the transaction is
// finalized as failed for operator replay instead of being retried.
func TestPurchaseCredits_FailedGrantFinalizesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	// audit writes land on their own goroutines
	mock.MatchExpectationsInOrder(false)

	realLedger := ledger.NewService(&config.Config{StartingCredits: 25}, db, zap.NewNop().Sugar())
	s := newWriteReconciler(db, &stubProvider{order: completedOrder()}, realLedger, &stubIdentity{})

	// reserve
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transaction" \(`).
		WillReturnRows(sqlmock.NewRows([]string{"credits_applied"}).AddRow(false))
	mock.ExpectCommit()

	// profile seed inside the grant
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "owner_profile" .* ON CONFLICT .* DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// the grant itself fails
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "owner_profile" SET`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	// finalize to failed
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transaction" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// audit trail: one entry for the reservation, one for the failure
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "transaction_log"`).
			WillReturnRows(sqlmock.NewRows([]string{"extra"}))
		mock.ExpectCommit()
	}

	_, err := s.PurchaseCredits(context.Background(), &PurchaseCreditsRequest{
		Owner: testOwner, BundleName: "Neural Spark", OrderID: "ORDER-OK",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateTransaction)

	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestFinalizeTransaction_MarksFailed(t *testing.T) {
	db, mock := newMockDB(t)
	s := newWriteReconciler(db, &stubProvider{}, &stubLedger{}, &stubIdentity{})

	txn := &models.Transaction{
		ID:      "t-1",
		OwnerID: "user-1",
		Status:  types.TransactionStatusPending,
		Extra:   datatypes.NewJSONType(&models.TransactionExtra{FailureReason: ""}),
	}

	reserved := auditSnapshot(nil, txn, types.TransactionChangeReasonReserved)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transaction" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s.finalizeTransaction(context.Background(), txn, types.TransactionStatusFailed, func(extra *models.TransactionExtra) {
		extra.FailureReason = "grant failed"
	})

	require.Equal(t, types.TransactionStatusFailed, txn.Status)
	require.False(t, txn.CreditsApplied)
	require.Equal(t, "grant failed", txn.Extra.Data().FailureReason)

	// the earlier audit snapshot still reflects the reserved state
	require.Equal(t, types.TransactionStatusPending, reserved.After.Data().Status)
	require.Empty(t, reserved.After.Data().Extra.Data().FailureReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

package ledger

import (
	"context"
	"testing"

	"github.com/bloomfeed/billing/pkg/config"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService() *Service {
	return NewService(&config.Config{StartingCredits: 25}, nil, zap.NewNop().Sugar())
}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	return NewService(&config.Config{StartingCredits: 25}, db, zap.NewNop().Sugar()), mock
}

var testOwner = types.OwnerRef{ID: "user-1", Type: types.OwnerTypeUser}

func TestSpend_RejectsNonPositiveAmounts(t *testing.T) {
	s := newTestService()

	for _, amount := range []int64{0, -1, -100} {
		_, err := s.Spend(context.Background(), testOwner, amount)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestGrant_RejectsNonPositiveAmounts(t *testing.T) {
	s := newTestService()

	for _, amount := range []int64{0, -5} {
		_, err := s.Grant(context.Background(), testOwner, amount)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
}

// A first-time owner gets the starting grant seeded before the conditional
// update runs, so spending against the fresh balance works in one call.
func TestSpend_SeedsProfileThenSpends(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "owner_profile" .* ON CONFLICT .* DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "owner_profile" SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "owner_type", "credits", "credits_spent"}).
			AddRow("p-1", "user-1", "user", 15, 10))
	mock.ExpectCommit()

	change, err := s.Spend(context.Background(), testOwner, 10)
	require.NoError(t, err)
	require.Equal(t, int64(25), change.PreviousCredits)
	require.Equal(t, int64(15), change.NewCredits)
	require.Equal(t, int64(10), change.CreditsSpent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpend_InsufficientCredits(t *testing.T) {
	s, mock := newMockService(t)

	// existing profile: the seed insert hits the conflict and returns nothing
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "owner_profile" .* ON CONFLICT .* DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// the guarded update matches no row
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "owner_profile" SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "owner_type", "credits", "credits_spent"}))
	mock.ExpectCommit()

	_, err := s.Spend(context.Background(), testOwner, 9999)
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrant_SeedsProfileThenGrants(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "owner_profile" .* ON CONFLICT .* DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "owner_profile" SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "owner_type", "credits", "credits_spent"}).
			AddRow("p-1", "user-1", "user", 125, 0))
	mock.ExpectCommit()

	change, err := s.Grant(context.Background(), testOwner, 100)
	require.NoError(t, err)
	require.Equal(t, int64(25), change.PreviousCredits)
	require.Equal(t, int64(125), change.NewCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_SeedsOnFirstTouch(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "owner_profile" WHERE owner_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "owner_type", "credits", "credits_spent"}))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "owner_profile" .* ON CONFLICT .* DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "owner_profile" WHERE owner_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "owner_type", "credits", "credits_spent"}).
			AddRow("p-1", "user-1", "user", 25, 0))

	profile, err := s.GetProfile(context.Background(), testOwner)
	require.NoError(t, err)
	require.Equal(t, int64(25), profile.Credits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_ExistingRowIsNotReseeded(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "owner_profile" WHERE owner_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "owner_type", "credits", "credits_spent"}).
			AddRow("p-1", "user-1", "user", 3, 40))

	profile, err := s.GetProfile(context.Background(), testOwner)
	require.NoError(t, err)
	require.Equal(t, int64(3), profile.Credits)
	require.NoError(t, mock.ExpectationsWereMet())
}

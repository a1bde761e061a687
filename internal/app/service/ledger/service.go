package ledger

import (
	"context"
	"errors"
	"fmt"

	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/pkg/config"
	"github.com/bloomfeed/billing/pkg/logctx"
	"github.com/bloomfeed/billing/pkg/tool"
	types "github.com/bloomfeed/billing/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceChange reports the balance around a single mutation.
type BalanceChange struct {
	PreviousCredits int64 `json:"previous_credits"`
	NewCredits      int64 `json:"new_credits"`
	CreditsSpent    int64 `json:"credits_spent"`
}

// Ledger mutates owner credit balances. Both mutations are single
// conditional UPDATE statements; the datastore is the synchronization point,
// so two concurrent spends against the same balance can never both pass the
// predicate. The profile row is seeded with the starting grant on the owner's
// first touch of any operation.
type Ledger interface {
	Spend(ctx context.Context, owner types.OwnerRef, amount int64) (*BalanceChange, error)
	Grant(ctx context.Context, owner types.OwnerRef, amount int64) (*BalanceChange, error)
	GetProfile(ctx context.Context, owner types.OwnerRef) (*models.OwnerProfile, error)
}

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

// Spend decrements credits and increments credits_spent in one statement,
// guarded by credits >= amount. The profile is seeded first, so a zero row
// count means the balance was too small.
func (s *Service) Spend(ctx context.Context, owner types.OwnerRef, amount int64) (*BalanceChange, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.CreateProfile(ctx, owner); err != nil {
		return nil, err
	}

	var profile models.OwnerProfile
	res := s.db.WithContext(ctx).
		Model(&profile).
		Clauses(clause.Returning{}).
		Where("owner_id = ? AND owner_type = ? AND credits >= ?", owner.ID, owner.Type, amount).
		Updates(map[string]interface{}{
			"credits":       gorm.Expr("credits - ?", amount),
			"credits_spent": gorm.Expr("credits_spent + ?", amount),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to spend credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientCredits
	}

	change := &BalanceChange{
		PreviousCredits: profile.Credits + amount,
		NewCredits:      profile.Credits,
		CreditsSpent:    profile.CreditsSpent,
	}
	logctx.FromCtx(ctx, s.log).Infow("credits spent",
		"owner_id", owner.ID, "owner_type", owner.Type,
		"amount", amount, "new_credits", change.NewCredits)
	return change, nil
}

// Grant is the symmetric increment. There is deliberately no upper bound.
func (s *Service) Grant(ctx context.Context, owner types.OwnerRef, amount int64) (*BalanceChange, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.CreateProfile(ctx, owner); err != nil {
		return nil, err
	}

	var profile models.OwnerProfile
	res := s.db.WithContext(ctx).
		Model(&profile).
		Clauses(clause.Returning{}).
		Where("owner_id = ? AND owner_type = ?", owner.ID, owner.Type).
		Update("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to grant credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOwnerNotFound
	}

	change := &BalanceChange{
		PreviousCredits: profile.Credits - amount,
		NewCredits:      profile.Credits,
		CreditsSpent:    profile.CreditsSpent,
	}
	logctx.FromCtx(ctx, s.log).Infow("credits granted",
		"owner_id", owner.ID, "owner_type", owner.Type,
		"amount", amount, "new_credits", change.NewCredits)
	return change, nil
}

// CreateProfile inserts the owner's balance row with the configured starting
// grant. Safe to call twice; the second insert is a no-op.
func (s *Service) CreateProfile(ctx context.Context, owner types.OwnerRef) (*models.OwnerProfile, error) {
	profile := &models.OwnerProfile{
		ID:        tool.GenerateUUIDV7(),
		OwnerID:   owner.ID,
		OwnerType: owner.Type,
		Credits:   s.cfg.StartingCredits,
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "owner_type"}},
			DoNothing: true,
		}).
		Create(profile)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create owner profile: %w", res.Error)
	}
	return profile, nil
}

// GetProfile reads the owner's balance row, seeding it with the starting
// grant on first touch. The entitlement endpoint serves balances through
// this, so any authenticated owner has a profile before their first spend.
func (s *Service) GetProfile(ctx context.Context, owner types.OwnerRef) (*models.OwnerProfile, error) {
	profile, err := s.readProfile(ctx, owner)
	if err == nil || !errors.Is(err, ErrOwnerNotFound) {
		return profile, err
	}
	if _, err := s.CreateProfile(ctx, owner); err != nil {
		return nil, err
	}
	return s.readProfile(ctx, owner)
}

func (s *Service) readProfile(ctx context.Context, owner types.OwnerRef) (*models.OwnerProfile, error) {
	var profile models.OwnerProfile
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND owner_type = ?", owner.ID, owner.Type).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return &profile, nil
}

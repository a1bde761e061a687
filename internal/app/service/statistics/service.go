package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/pkg/types"
)

// Statistic types exposed through the admin dashboard
type StatisticType string

const (
	// Daily counts and revenue
	StatisticTypeDailyTransactionCount StatisticType = "daily_transaction_count"
	StatisticTypeDailyRevenue          StatisticType = "daily_revenue"
	StatisticTypeDailyCreditsGranted   StatisticType = "daily_credits_granted"

	// Subscription related
	StatisticTypeActiveSubscriptionCount           StatisticType = "active_subscription_count"
	StatisticTypeDailyNewSubscriptionCount         StatisticType = "daily_new_subscription_count"
	StatisticTypeDailyAccumulatedSubscriptionCount StatisticType = "daily_accumulated_subscription_count"
)

// Filter types supported by certain statistic types
type BillingStatisticFilterType string

const (
	BillingStatisticFilterTypeTransactionType BillingStatisticFilterType = "type"
	BillingStatisticFilterTypeOwnerType       BillingStatisticFilterType = "owner_type"
	BillingStatisticFilterTypePackageID       BillingStatisticFilterType = "package_id"
)

var filterTypes = []BillingStatisticFilterType{
	BillingStatisticFilterTypeTransactionType,
	BillingStatisticFilterTypeOwnerType,
	BillingStatisticFilterTypePackageID,
}

var validFilters = map[BillingStatisticFilterType][]StatisticType{
	BillingStatisticFilterTypeTransactionType: {StatisticTypeDailyTransactionCount, StatisticTypeDailyRevenue},
	BillingStatisticFilterTypeOwnerType:       {StatisticTypeDailyTransactionCount, StatisticTypeDailyRevenue, StatisticTypeActiveSubscriptionCount},
	BillingStatisticFilterTypePackageID:       {StatisticTypeActiveSubscriptionCount, StatisticTypeDailyNewSubscriptionCount},
}

type BillingStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type BillingStatisticRequest struct {
	Filters   []*types.CommonFilter       `json:"filters"`
	DataItems []*BillingStatisticDataItem `json:"data_items"`
}

// GetFilters drops filters that do not apply to the given statistic type.
// Unknown filter fields pass through untouched so date_range and friends
// still work.
func (f *BillingStatisticRequest) GetFilters(statisticType StatisticType) *BillingStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	var result BillingStatisticRequest
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[BillingStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause from the applicable filters.
func (f *BillingStatisticRequest) Build(builder clause.Builder) {
	if len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type BillingStatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type BillingStatisticResponse struct {
	DataItems map[StatisticType][]BillingStatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// Internal helpers for various stats
func (s *Service) getDailyTransactionCount(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Transaction{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", types.TransactionStatusCompleted).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyTransactionCount)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	// amount is stored as the provider's decimal string; cast for the sum
	q := s.db.WithContext(ctx).Table((models.Transaction{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, CAST(SUM(CAST(amount AS NUMERIC)) * 100 AS BIGINT) as value").
		Where("status = ?", types.TransactionStatusCompleted).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyRevenue)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyCreditsGranted(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Transaction{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, COALESCE(SUM(credits), 0) as value").
		Where("status = ? AND credits_applied = true", types.TransactionStatusCompleted).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyCreditsGranted)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select("count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeActiveSubscriptionCount)}}).
		Where("status = ?", types.SubscriptionStatusActive).
		Where("end_date IS NULL OR end_date > ?", time.Now())
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewSubscriptionCount(ctx context.Context, _ *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH distinct_dates AS (
    SELECT DISTINCT DATE(created_at) as date FROM subscription ORDER BY date
),
owner_date AS (
    SELECT owner_id, owner_type, DATE(created_at) as date FROM subscription
)
SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, COUNT(DISTINCT (s.owner_id, s.owner_type)) as value
FROM distinct_dates d
JOIN owner_date s ON s.date = d.date
GROUP BY d.date
ORDER BY d.date DESC
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyAccumulatedSubscriptionCount(ctx context.Context, _ *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(created_at)) as min_date, MAX(DATE(created_at)) as max_date FROM subscription
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
owner_date AS (
    SELECT owner_id, owner_type, DATE(created_at) as date FROM subscription
)
SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, COUNT(DISTINCT (s.owner_id, s.owner_type)) as value
FROM distinct_dates d
LEFT JOIN owner_date s ON s.date <= d.date
GROUP BY d.date
ORDER BY d.date DESC
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getBillingStatistic(ctx context.Context, request *BillingStatisticRequest, dataItem *BillingStatisticDataItem) ([]BillingStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyTransactionCount:
		return s.getDailyTransactionCount(ctx, request)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeDailyCreditsGranted:
		return s.getDailyCreditsGranted(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	case StatisticTypeDailyNewSubscriptionCount:
		return s.getDailyNewSubscriptionCount(ctx, request)
	case StatisticTypeDailyAccumulatedSubscriptionCount:
		return s.getDailyAccumulatedSubscriptionCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

func (s *Service) GetBillingStatistic(ctx context.Context, request *BillingStatisticRequest) (*BillingStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []BillingStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *BillingStatisticDataItem) {
			defer wg.Done()
			// check filter applicability
			for _, filter := range request.Filters {
				ft := BillingStatisticFilterType(filter.Field)
				if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], di.ID) {
					resChan <- &lo.Entry[StatisticType, []BillingStatisticResponseDataItem]{Key: di.ID, Value: nil}
					return
				}
			}
			res, err := s.getBillingStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []BillingStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]BillingStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &BillingStatisticResponse{DataItems: results}, nil
}

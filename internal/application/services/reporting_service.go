package services

import (
	"context"

	"kazi-marketplace/internal/application/query"
	"kazi-marketplace/internal/domain/policy"
)

// ReportingService orchestrates earnings and dashboard reporting
type ReportingService struct {
	earningsHandler  *query.EarningsHandler
	dashboardHandler *query.DashboardStatsHandler
	policies         *policy.Provider
}

func NewReportingService(
	earningsHandler *query.EarningsHandler,
	dashboardHandler *query.DashboardStatsHandler,
	policies *policy.Provider,
) *ReportingService {
	return &ReportingService{
		earningsHandler:  earningsHandler,
		dashboardHandler: dashboardHandler,
		policies:         policies,
	}
}

func (s *ReportingService) GetEarnings(ctx context.Context, q query.GetEarnings) (*query.EarningsSnapshot, error) {
	return s.earningsHandler.Handle(ctx, q)
}

func (s *ReportingService) GetDashboardStats(ctx context.Context, q query.GetDashboardStats) (*query.DashboardStats, error) {
	return s.dashboardHandler.Handle(ctx, q)
}

// ReloadCommissionPolicy refreshes the active commission policy from its
// source. Requests already in flight keep the rate they captured.
func (s *ReportingService) ReloadCommissionPolicy(ctx context.Context, src policy.Source) (policy.CommissionPolicy, error) {
	if err := s.policies.Reload(ctx, src); err != nil {
		return policy.CommissionPolicy{}, err
	}
	return s.policies.Current(), nil
}

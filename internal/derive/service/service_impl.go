// Package service implements the derived-field stage. It runs after cleaning
// and before any aggregation: subscription and ticket durations come from the
// already-parsed clean dates, and the account churn flag is recomputed from
// the current churn-event set on every run.
package service

import (
	"time"

	"github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func NewService(p ServiceParam) *Service {
	return &Service{log: p.Log.Named("derive.service")}
}

// ChurnIndex is the set of account IDs with at least one churn event,
// regardless of the event's date.
type ChurnIndex map[string]struct{}

func BuildChurnIndex(events []domain.ChurnEvent) ChurnIndex {
	index := make(ChurnIndex, len(events))
	for _, event := range events {
		index[event.AccountID] = struct{}{}
	}
	return index
}

func (i ChurnIndex) Contains(accountID string) bool {
	_, ok := i[accountID]
	return ok
}

// Apply computes every derived field in place and returns the churn index for
// downstream fact building. Negative durations are passed through uncorrected;
// they are a data-quality signal, not an error.
func (s *Service) Apply(snapshot *domain.CleanSnapshot) ChurnIndex {
	for i := range snapshot.Subscriptions {
		sub := &snapshot.Subscriptions[i]
		sub.SubscriptionDays = dayDiff(sub.StartDate, sub.EndDate)
	}

	for i := range snapshot.SupportTickets {
		ticket := &snapshot.SupportTickets[i]
		ticket.ResolutionDays = dayDiff(ticket.CreatedDate, ticket.ResolvedDate)
	}

	index := BuildChurnIndex(snapshot.ChurnEvents)
	churned := 0
	for i := range snapshot.Accounts {
		account := &snapshot.Accounts[i]
		account.ChurnFlagCalc = index.Contains(account.ID)
		if account.ChurnFlagCalc {
			churned++
		}
	}

	s.log.Info("derive stage complete",
		zap.Int("churned_accounts", churned),
		zap.Int("churn_index_size", len(index)),
	)
	return index
}

// dayDiff returns the calendar-day difference end-start, or nil when either
// side is null.
func dayDiff(start, end *time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	days := int(end.Sub(*start) / (24 * time.Hour))
	return &days
}

// Package domain describes the raw ingestion layer: every field arrives as an
// unparsed string exactly as the upstream extractor wrote it. The pipeline
// only ever reads these tables.
package domain

import "context"

type RawAccount struct {
	ID             string `gorm:"primaryKey" json:"id"`
	Name           string `json:"name"`
	Industry       string `json:"industry"`
	Country        string `json:"country"`
	SignupDate     string `json:"signup_date"`
	ReferralSource string `json:"referral_source"`
	PlanTier       string `json:"plan_tier"`
	Seats          string `json:"seats"`
	IsTrial        string `json:"is_trial"`
	ChurnFlag      string `json:"churn_flag"`
}

func (RawAccount) TableName() string { return "raw_accounts" }

type RawSubscription struct {
	ID                      string `gorm:"primaryKey" json:"id"`
	AccountID               string `json:"account_id"`
	PlanName                string `json:"plan_name"`
	StartDate               string `json:"start_date"`
	EndDate                 string `json:"end_date"`
	MonthlyRecurringRevenue string `json:"monthly_recurring_revenue"`
}

func (RawSubscription) TableName() string { return "raw_subscriptions" }

type RawFeatureUsageEvent struct {
	ID          string `gorm:"primaryKey" json:"id"`
	UsageDate   string `json:"usage_date"`
	FeatureName string `json:"feature_name"`
	UsageCount  string `json:"usage_count"`
}

func (RawFeatureUsageEvent) TableName() string { return "raw_feature_usage_events" }

type RawSupportTicket struct {
	ID                string `gorm:"primaryKey" json:"id"`
	AccountID         string `json:"account_id"`
	CreatedDate       string `json:"created_date"`
	ResolvedDate      string `json:"resolved_date"`
	SatisfactionScore string `json:"satisfaction_score"`
	Priority          string `json:"priority"`
}

func (RawSupportTicket) TableName() string { return "raw_support_tickets" }

type RawChurnEvent struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID       string `json:"account_id"`
	ChurnDate       string `json:"churn_date"`
	ReasonCode      string `json:"reason_code"`
	RefundAmountUSD string `json:"refund_amount_usd"`
}

func (RawChurnEvent) TableName() string { return "raw_churn_events" }

// Snapshot is one run's complete view of the raw layer.
type Snapshot struct {
	Accounts       []RawAccount
	Subscriptions  []RawSubscription
	FeatureUsage   []RawFeatureUsageEvent
	SupportTickets []RawSupportTicket
	ChurnEvents    []RawChurnEvent
}

// TableCounts reports row counts per raw table.
func (s Snapshot) TableCounts() map[string]int {
	return map[string]int{
		RawAccount{}.TableName():           len(s.Accounts),
		RawSubscription{}.TableName():      len(s.Subscriptions),
		RawFeatureUsageEvent{}.TableName(): len(s.FeatureUsage),
		RawSupportTicket{}.TableName():     len(s.SupportTickets),
		RawChurnEvent{}.TableName():        len(s.ChurnEvents),
	}
}

// Tables lists every raw-layer table name.
func Tables() []string {
	return []string{
		RawAccount{}.TableName(),
		RawSubscription{}.TableName(),
		RawFeatureUsageEvent{}.TableName(),
		RawSupportTicket{}.TableName(),
		RawChurnEvent{}.TableName(),
	}
}

// Store reads the raw layer. There is no write surface here: ingestion
// belongs to the upstream extractor.
type Store interface {
	Accounts(ctx context.Context) ([]RawAccount, error)
	Subscriptions(ctx context.Context) ([]RawSubscription, error)
	FeatureUsage(ctx context.Context) ([]RawFeatureUsageEvent, error)
	SupportTickets(ctx context.Context) ([]RawSupportTicket, error)
	ChurnEvents(ctx context.Context) ([]RawChurnEvent, error)
}

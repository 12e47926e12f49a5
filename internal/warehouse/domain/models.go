// Package domain contains the cleaned, typed projection of the raw SaaS
// records plus the derived fact tables built from it. Nullable columns are
// pointers; a nil pointer is the only representation of null.
package domain

import "time"

// Priority is the normalized support-ticket priority. Cleaned values are
// uppercase; anything outside the known set is preserved as-is so data-quality
// issues stay visible downstream.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Account is a cleaned customer account. ChurnFlag comes from the source
// system; ChurnFlagCalc is recomputed every run from churn-event membership
// and is the only churn signal the metric tables trust.
type Account struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	Name           *string    `json:"name"`
	Industry       string     `json:"industry"`
	Country        string     `json:"country"`
	SignupDate     *time.Time `json:"signup_date"`
	ReferralSource *string    `json:"referral_source"`
	PlanTier       *string    `json:"plan_tier"`
	Seats          int        `json:"seats"`
	IsTrial        bool       `json:"is_trial"`
	ChurnFlag      bool       `json:"churn_flag"`
	ChurnFlagCalc  bool       `json:"churn_flag_calc"`
}

func (Account) TableName() string { return "accounts" }

// Subscription links to its account by ID only; the relation is soft and
// orphans survive cleaning (they simply produce null-side join results).
type Subscription struct {
	ID                      string     `gorm:"primaryKey" json:"id"`
	AccountID               string     `gorm:"index" json:"account_id"`
	PlanName                string     `json:"plan_name"`
	StartDate               *time.Time `json:"start_date"`
	EndDate                 *time.Time `json:"end_date"`
	MonthlyRecurringRevenue float64    `json:"monthly_recurring_revenue"`
	SubscriptionDays        *int       `json:"subscription_days"`
}

func (Subscription) TableName() string { return "subscriptions" }

type FeatureUsageEvent struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	UsageDate   *time.Time `json:"usage_date"`
	FeatureName string     `gorm:"index" json:"feature_name"`
	UsageCount  int        `json:"usage_count"`
}

func (FeatureUsageEvent) TableName() string { return "feature_usage_events" }

type SupportTicket struct {
	ID                string     `gorm:"primaryKey" json:"id"`
	AccountID         string     `gorm:"index" json:"account_id"`
	CreatedDate       *time.Time `json:"created_date"`
	ResolvedDate      *time.Time `json:"resolved_date"`
	SatisfactionScore *int       `json:"satisfaction_score"`
	Priority          *Priority  `json:"priority"`
	ResolutionDays    *int       `json:"resolution_days"`
}

func (SupportTicket) TableName() string { return "support_tickets" }

// ChurnEvent rows get a deterministic ordinal ID during cleaning so repeated
// runs over unchanged input produce identical tables.
type ChurnEvent struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	AccountID       string     `gorm:"index" json:"account_id"`
	ChurnDate       *time.Time `json:"churn_date"`
	ReasonCode      string     `json:"reason_code"`
	RefundAmountUSD float64    `json:"refund_amount_usd"`
}

func (ChurnEvent) TableName() string { return "churn_events" }

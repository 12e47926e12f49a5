package domain

import "time"

// Fact and metric tables. Each is a pure projection of the clean layer as of
// the most recent pipeline run; rows carry no identity beyond their group key
// and every run replaces the table wholesale.

// AccountFact aggregates an account's subscriptions. Accounts without
// subscriptions keep a row (left-join semantics) with zero counts and a null
// average.
type AccountFact struct {
	AccountID           string   `gorm:"primaryKey" json:"account_id"`
	TotalSubscriptions  int      `json:"total_subscriptions"`
	TotalMRR            float64  `gorm:"column:total_mrr" json:"total_mrr"`
	AvgSubscriptionDays *float64 `json:"avg_subscription_days"`
}

func (AccountFact) TableName() string { return "account_facts" }

// SupportFact exists only for accounts with at least one ticket.
type SupportFact struct {
	AccountID             string   `gorm:"primaryKey" json:"account_id"`
	TotalTickets          int      `json:"total_tickets"`
	AvgResolutionDays     *float64 `json:"avg_resolution_days"`
	AvgSatisfactionScore  *float64 `json:"avg_satisfaction_score"`
	HighPriorityTickets   int      `json:"high_priority_tickets"`
	MediumPriorityTickets int      `json:"medium_priority_tickets"`
	LowPriorityTickets    int      `json:"low_priority_tickets"`
}

func (SupportFact) TableName() string { return "support_facts" }

// FeatureUsageFact groups usage by feature and calendar day. Events whose
// usage date failed to parse have no day to group under and are excluded.
type FeatureUsageFact struct {
	FeatureName string    `gorm:"primaryKey" json:"feature_name"`
	UsageDate   time.Time `gorm:"primaryKey" json:"usage_date"`
	TotalUsage  int       `json:"total_usage"`
}

func (FeatureUsageFact) TableName() string { return "feature_usage_facts" }

// MonthlyChurnFact counts distinct churned accounts per year-month. Churn
// events without a parseable date are excluded.
type MonthlyChurnFact struct {
	Month           string `gorm:"primaryKey" json:"month"`
	ChurnedAccounts int    `json:"churned_accounts"`
}

func (MonthlyChurnFact) TableName() string { return "monthly_churn_facts" }

// MrrByPlanFact sums MRR of currently-active subscriptions per plan tier.
// The activity predicate is configuration, see config.PipelineConfig.
type MrrByPlanFact struct {
	PlanTier string  `gorm:"primaryKey" json:"plan_tier"`
	TotalMRR float64 `gorm:"column:total_mrr" json:"total_mrr"`
}

func (MrrByPlanFact) TableName() string { return "mrr_by_plan_facts" }

type ChurnDurationFact struct {
	PlanTier           string  `gorm:"primaryKey" json:"plan_tier"`
	AvgDaysBeforeChurn float64 `json:"avg_days_before_churn"`
}

func (ChurnDurationFact) TableName() string { return "churn_duration_facts" }

// SupportVsChurnFact splits ticket load between churned and retained
// accounts. Exactly two rows, keyed by the recomputed churn flag.
type SupportVsChurnFact struct {
	Churned           bool     `gorm:"primaryKey" json:"churned"`
	TotalTickets      int      `json:"total_tickets"`
	AvgResolutionDays *float64 `json:"avg_resolution_days"`
	AvgSatisfaction   *float64 `json:"avg_satisfaction"`
}

func (SupportVsChurnFact) TableName() string { return "support_vs_churn_facts" }

// FeatureVolatilityFact reports mean and sample standard deviation (n-1) of
// usage counts per feature. Volatility is null with fewer than two
// observations.
type FeatureVolatilityFact struct {
	FeatureName     string   `gorm:"primaryKey" json:"feature_name"`
	AvgDailyUsage   float64  `json:"avg_daily_usage"`
	UsageVolatility *float64 `json:"usage_volatility"`
}

func (FeatureVolatilityFact) TableName() string { return "feature_volatility_facts" }

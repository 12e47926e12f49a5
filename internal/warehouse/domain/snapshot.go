package domain

// CleanSnapshot is one run's complete clean layer, passed by value between
// stages so stage ordering is enforced by data dependency rather than shared
// state.
type CleanSnapshot struct {
	Accounts       []Account
	Subscriptions  []Subscription
	FeatureUsage   []FeatureUsageEvent
	SupportTickets []SupportTicket
	ChurnEvents    []ChurnEvent
}

// FactSnapshot is one run's complete fact and metric layer.
type FactSnapshot struct {
	AccountFacts      []AccountFact
	SupportFacts      []SupportFact
	FeatureUsageFacts []FeatureUsageFact

	MonthlyChurn      []MonthlyChurnFact
	MrrByPlan         []MrrByPlanFact
	ChurnDuration     []ChurnDurationFact
	SupportVsChurn    []SupportVsChurnFact
	FeatureVolatility []FeatureVolatilityFact
}

// TableCounts reports row counts per clean table, used for the run log and
// the raw/clean parity check.
func (s CleanSnapshot) TableCounts() map[string]int {
	return map[string]int{
		Account{}.TableName():           len(s.Accounts),
		Subscription{}.TableName():      len(s.Subscriptions),
		FeatureUsageEvent{}.TableName(): len(s.FeatureUsage),
		SupportTicket{}.TableName():     len(s.SupportTickets),
		ChurnEvent{}.TableName():        len(s.ChurnEvents),
	}
}

// TableCounts reports row counts per fact table.
func (s FactSnapshot) TableCounts() map[string]int {
	return map[string]int{
		AccountFact{}.TableName():           len(s.AccountFacts),
		SupportFact{}.TableName():           len(s.SupportFacts),
		FeatureUsageFact{}.TableName():      len(s.FeatureUsageFacts),
		MonthlyChurnFact{}.TableName():      len(s.MonthlyChurn),
		MrrByPlanFact{}.TableName():         len(s.MrrByPlan),
		ChurnDurationFact{}.TableName():     len(s.ChurnDuration),
		SupportVsChurnFact{}.TableName():    len(s.SupportVsChurn),
		FeatureVolatilityFact{}.TableName(): len(s.FeatureVolatility),
	}
}

// CleanTables lists every clean-layer table name.
func CleanTables() []string {
	return []string{
		Account{}.TableName(),
		Subscription{}.TableName(),
		FeatureUsageEvent{}.TableName(),
		SupportTicket{}.TableName(),
		ChurnEvent{}.TableName(),
	}
}

// FactTables lists every fact- and metric-layer table name.
func FactTables() []string {
	return []string{
		AccountFact{}.TableName(),
		SupportFact{}.TableName(),
		FeatureUsageFact{}.TableName(),
		MonthlyChurnFact{}.TableName(),
		MrrByPlanFact{}.TableName(),
		ChurnDurationFact{}.TableName(),
		SupportVsChurnFact{}.TableName(),
		FeatureVolatilityFact{}.TableName(),
	}
}

package domain

import (
	"time"

	warehousedomain "github.com/smallbiznis/insight/internal/warehouse/domain"
)

// Discrepancy is a single validation finding. The validator only reports;
// acting on findings is the orchestrator's job.
type Discrepancy struct {
	Table  string `json:"table"`
	Detail string `json:"detail"`
}

// Report is the post-run health check across the raw, clean and fact layers.
type Report struct {
	GeneratedAt   time.Time                     `json:"generated_at"`
	Tables        []warehousedomain.TableStatus `json:"tables"`
	Discrepancies []Discrepancy                 `json:"discrepancies"`
}

func (r Report) Healthy() bool {
	return len(r.Discrepancies) == 0
}

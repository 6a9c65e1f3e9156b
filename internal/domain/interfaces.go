package domain

import "context"

// AnalyticsBackend computes metrics for a validated query. It is implemented
// in-process by the analytics service and remotely by the analytics HTTP
// client, so the chat agent does not care where the numbers come from.
type AnalyticsBackend interface {
	Compute(ctx context.Context, query AnalyticsQuery) (*AnalyticsReport, error)
}

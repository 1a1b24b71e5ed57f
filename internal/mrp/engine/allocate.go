package engine

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Allocation assigns a production quantity to a calendar day.
type Allocation struct {
	Date     time.Time       `json:"production_date"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AllocationResult is the day-by-day schedule for one product. Backlog is the
// net demand that found no capacity inside the date range; it is reported,
// never silently dropped.
type AllocationResult struct {
	Allocations []Allocation    `json:"allocations"`
	Backlog     decimal.Decimal `json:"backlog"`
}

// Allocate spreads net demand across calendar days under per-day capacity
// ceilings. Greedy single pass: demand entries are served earliest deadline
// first; each slice starts at its deadline minus the lead time (clipped to
// range start) and advances day by day whenever capacity on the working date
// is exhausted. Stock netted away earlier offsets the latest deadlines, so
// the pass stops once netDemand is fully assigned.
func Allocate(ctx context.Context, capBook CapacityBook, productID string, netDemand decimal.Decimal, entries []DemandEntry, from, to time.Time, leadDays int, defaultCapacity decimal.Decimal) (*AllocationResult, error) {
	result := &AllocationResult{Allocations: []Allocation{}}
	if !netDemand.IsPositive() {
		return result, nil
	}

	from, to = Day(from), Day(to)
	used := make(map[string]decimal.Decimal)
	allocated := make(map[string]decimal.Decimal)
	remaining := netDemand

	for _, entry := range SortByRequiredDate(entries) {
		if !remaining.IsPositive() {
			break
		}
		slice := decimal.Min(entry.Quantity, remaining)
		if !slice.IsPositive() {
			continue
		}

		day := Day(entry.RequiredDate).AddDate(0, 0, -leadDays)
		if day.Before(from) {
			day = from
		}

		for slice.IsPositive() && !day.After(to) {
			limit, err := dailyLimit(ctx, capBook, productID, day, defaultCapacity)
			if err != nil {
				return nil, err
			}
			available := limit.Sub(used[dayKey(day)])
			if available.IsPositive() {
				take := decimal.Min(slice, available)
				used[dayKey(day)] = used[dayKey(day)].Add(take)
				allocated[dayKey(day)] = allocated[dayKey(day)].Add(take)
				slice = slice.Sub(take)
				remaining = remaining.Sub(take)
			}
			if slice.IsPositive() {
				day = day.AddDate(0, 0, 1)
			}
		}

		// no capacity left inside the range for this slice
		result.Backlog = result.Backlog.Add(slice)
		remaining = remaining.Sub(slice)
	}

	// demand entries exhausted before netDemand: treat the rest as backlog too
	if remaining.IsPositive() {
		result.Backlog = result.Backlog.Add(remaining)
	}

	days := make([]string, 0, len(allocated))
	for key := range allocated {
		days = append(days, key)
	}
	sort.Strings(days)
	for _, key := range days {
		date, _ := time.ParseInLocation("2006-01-02", key, time.UTC)
		result.Allocations = append(result.Allocations, Allocation{Date: date, Quantity: allocated[key]})
	}
	return result, nil
}

func dailyLimit(ctx context.Context, capBook CapacityBook, productID string, day time.Time, defaultCapacity decimal.Decimal) (decimal.Decimal, error) {
	if capBook == nil {
		return defaultCapacity, nil
	}
	limit, err := capBook.DailyLimit(ctx, productID, day)
	if err != nil {
		return decimal.Zero, err
	}
	if limit == nil {
		return defaultCapacity, nil
	}
	return *limit, nil
}

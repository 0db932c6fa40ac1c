package calendar

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/keyxmakerx/clubcal/internal/metrics"
)

// Collection names, used in Snapshot.Degraded, logs and metrics.
const (
	CollectionEvents           = "events"
	CollectionInterest         = "interest"
	CollectionHolidays         = "holidays"
	CollectionBlockedWeekends  = "blocked-weekends"
	CollectionPriorityWeekends = "priority-weekends"
	CollectionUnified          = "unified"
)

// Fetcher loads one month of calendar data. Collections are requested
// concurrently and fail independently: a failed collection becomes empty
// and is listed in Snapshot.Degraded while the rest still render.
type Fetcher struct {
	repo           CalendarRepository
	metrics        *metrics.Metrics
	holidayCountry string
}

// NewFetcher creates a Fetcher. holidayCountry is the country whose public
// holidays a single club's calendar shows.
func NewFetcher(repo CalendarRepository, m *metrics.Metrics, holidayCountry string) *Fetcher {
	return &Fetcher{repo: repo, metrics: m, holidayCountry: holidayCountry}
}

// fetchGroup runs collection loaders concurrently and records which failed.
type fetchGroup struct {
	f     *Fetcher
	ctx   context.Context
	scope Scope
	month Month

	wg       sync.WaitGroup
	mu       sync.Mutex
	degraded []string
}

// run starts load in its own goroutine. load must only assign its result
// when it returns nil.
func (g *fetchGroup) run(collection string, load func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		start := time.Now()
		err := load(g.ctx)
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeDegraded
			g.mu.Lock()
			g.degraded = append(g.degraded, collection)
			g.mu.Unlock()

			slog.Warn("calendar collection degraded to empty",
				slog.String("collection", collection),
				slog.String("scope", string(g.scope)),
				slog.String("month", g.month.String()),
				slog.Any("error", err),
			)
		}
		g.f.metrics.ObserveFetch(collection, outcome, time.Since(start))
	}()
}

func (g *fetchGroup) wait() []string {
	g.wg.Wait()
	slices.Sort(g.degraded)
	return g.degraded
}

// FetchMonth loads every collection for scope and month. It never fails:
// the worst case is an empty, fully degraded snapshot.
func (f *Fetcher) FetchMonth(ctx context.Context, credential string, scope Scope, month Month) *Snapshot {
	snap := &Snapshot{Scope: scope, Month: month}
	g := &fetchGroup{f: f, ctx: ctx, scope: scope, month: month}

	if scope.IsUnified() {
		f.fetchUnified(g, snap, credential)
	} else {
		f.fetchClub(g, snap, credential)
	}

	snap.Degraded = g.wait()

	// A cancelled request (client gone, deadline hit) leaves nothing
	// trustworthy, so every collection degrades.
	if ctx.Err() != nil {
		return &Snapshot{Scope: scope, Month: month, Degraded: allCollections(scope)}
	}

	snap.Holidays = clipHolidays(snap.Holidays, month)
	return snap
}

func (f *Fetcher) fetchClub(g *fetchGroup, snap *Snapshot, credential string) {
	clubID := snap.Scope.ClubID()
	from, to := snap.Month.First(), snap.Month.Last()

	g.run(CollectionEvents, func(ctx context.Context) error {
		events, err := f.repo.ListEvents(ctx, credential, clubID, from, to)
		if err == nil {
			snap.Events = events
		}
		return err
	})
	g.run(CollectionInterest, func(ctx context.Context) error {
		interests, err := f.repo.ListInterest(ctx, credential, clubID, from, to)
		if err == nil {
			snap.Interests = interests
		}
		return err
	})
	g.run(CollectionHolidays, func(ctx context.Context) error {
		holidays, err := f.repo.ListHolidays(ctx, credential, f.holidayCountry, snap.Month.Year)
		if err == nil {
			snap.Holidays = holidays
		}
		return err
	})
	g.run(CollectionBlockedWeekends, func(ctx context.Context) error {
		blocked, err := f.repo.ListBlockedWeekends(ctx, credential, clubID)
		if err == nil {
			snap.BlockedWeekends = blocked
		}
		return err
	})
	g.run(CollectionPriorityWeekends, func(ctx context.Context) error {
		priority, err := f.repo.ListPriorityWeekends(ctx, credential, from, to)
		if err == nil {
			snap.PriorityWeekends = priority
		}
		return err
	})
}

// fetchUnified uses the combined endpoint for events, holidays and priority
// weekends. Interest comes from its own endpoint, falling back to the
// combined payload's copy when that fails. Blocked weekends are per club
// and have no place in the unified view.
func (f *Fetcher) fetchUnified(g *fetchGroup, snap *Snapshot, credential string) {
	from, to := snap.Month.First(), snap.Month.Last()

	var unified *UnifiedPayload
	var interestOK bool

	g.run(CollectionUnified, func(ctx context.Context) error {
		payload, err := f.repo.GetUnified(ctx, credential, from, to)
		if err == nil {
			unified = payload
		}
		return err
	})
	g.run(CollectionInterest, func(ctx context.Context) error {
		interests, err := f.repo.ListInterest(ctx, credential, "", from, to)
		if err == nil {
			snap.Interests = interests
			interestOK = true
		}
		return err
	})

	// Merge after both loaders finish.
	g.wg.Wait()
	if unified == nil {
		return
	}
	snap.Events = unified.Events
	snap.Holidays = unified.Holidays
	snap.PriorityWeekends = unified.PriorityWeekends
	if !interestOK && unified.Interests != nil {
		snap.Interests = unified.Interests
		g.degraded = slices.DeleteFunc(g.degraded, func(c string) bool { return c == CollectionInterest })
	}
}

func allCollections(scope Scope) []string {
	if scope.IsUnified() {
		return []string{CollectionInterest, CollectionUnified}
	}
	return []string{
		CollectionBlockedWeekends,
		CollectionEvents,
		CollectionHolidays,
		CollectionInterest,
		CollectionPriorityWeekends,
	}
}

// clipHolidays keeps the holidays that fall inside month.
func clipHolidays(holidays []Holiday, month Month) []Holiday {
	out := holidays[:0:0]
	for _, h := range holidays {
		if month.Contains(h.Date) {
			out = append(out, h)
		}
	}
	return out
}

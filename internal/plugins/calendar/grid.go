package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// ModalKind is which modal, if any, is open over the grid.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalEventList
	ModalInterest
	ModalCreateEvent
)

// Modal is the open modal and its contents.
type Modal struct {
	Kind ModalKind

	// Date is the day the modal was opened for. Zero for a create-event
	// modal opened without a preselected day.
	Date civil.Date

	// Events populates the event list modal.
	Events []Event
}

// Orchestrator is the month view's state machine. A handler builds one per
// request from the URL and drives it with the transitions below.
type Orchestrator struct {
	Scope   Scope
	Month   Month
	Filters Filters
	Facets  Facets
	Perms   Permissions
	Today   civil.Date

	Loading  bool
	Modal    Modal
	Snapshot *Snapshot
}

// NewOrchestrator starts on month with default filters and nothing loaded.
func NewOrchestrator(scope Scope, month Month, perms Permissions, today civil.Date) *Orchestrator {
	return &Orchestrator{
		Scope:   scope,
		Month:   month,
		Filters: DefaultFilters(),
		Perms:   perms,
		Today:   today,
	}
}

// PrevMonth moves back one month and starts a refetch.
func (o *Orchestrator) PrevMonth() {
	o.Month = o.Month.Prev()
	o.BeginFetch()
}

// NextMonth moves forward one month and starts a refetch.
func (o *Orchestrator) NextMonth() {
	o.Month = o.Month.Next()
	o.BeginFetch()
}

// BeginFetch drops the current data so nothing stale shows mid-fetch.
func (o *Orchestrator) BeginFetch() {
	o.Loading = true
	o.Snapshot = nil
	o.Modal = Modal{}
}

// ApplySnapshot installs a finished fetch. A snapshot for a month or scope
// the view has since moved away from is discarded and false is returned.
func (o *Orchestrator) ApplySnapshot(snap *Snapshot) bool {
	if snap == nil || snap.Scope != o.Scope || snap.Month != o.Month {
		return false
	}
	o.Snapshot = snap
	o.Loading = false
	return true
}

// CellClick opens the modal for a projected day. Days with events list
// them. Otherwise the interest modal opens for viewers who may submit
// interest, except on blocked days and on past days the viewer cannot edit.
func (o *Orchestrator) CellClick(proj DayProjection) Modal {
	switch {
	case len(proj.Events) > 0:
		o.Modal = Modal{Kind: ModalEventList, Date: proj.Date, Events: proj.Events}
	case proj.Blocked:
		o.Modal = Modal{}
	case proj.Date.Before(o.Today) && !o.Perms.CanEditAllEvents:
		o.Modal = Modal{}
	case o.Perms.CanSubmitInterest:
		o.Modal = Modal{Kind: ModalInterest, Date: proj.Date}
	case o.CanCreateEvents():
		o.Modal = Modal{Kind: ModalCreateEvent, Date: proj.Date}
	default:
		o.Modal = Modal{}
	}
	return o.Modal
}

// CreateEvent opens the event creation modal, optionally on a day. Only a
// single club's calendar creates events, and only for viewers allowed to.
func (o *Orchestrator) CreateEvent(day *civil.Date) bool {
	if !o.CanCreateEvents() {
		return false
	}
	o.Modal = Modal{Kind: ModalCreateEvent}
	if day != nil {
		o.Modal.Date = *day
	}
	return true
}

// CanCreateEvents reports whether the viewer may add events to this calendar.
func (o *Orchestrator) CanCreateEvents() bool {
	return !o.Scope.IsUnified() && o.Perms.CanCreateEvents
}

// CloseModal closes whatever modal is open.
func (o *Orchestrator) CloseModal() {
	o.Modal = Modal{}
}

// GridSlot is one position in the month grid: a leading blank or a day.
type GridSlot struct {
	Blank bool
	Date  civil.Date
}

// BuildGrid lays out month in Sunday-first weeks: one blank per weekday
// before the 1st, then every day. The grid ends on the last day of the
// month without trailing padding.
func BuildGrid(month Month) []GridSlot {
	first := month.First()
	lead := int(first.In(time.UTC).Weekday())
	days := month.Days()

	slots := make([]GridSlot, 0, lead+days)
	for range lead {
		slots = append(slots, GridSlot{Blank: true})
	}
	for d := first; month.Contains(d); d = d.AddDays(1) {
		slots = append(slots, GridSlot{Date: d})
	}
	return slots
}

// GridCell is a laid-out slot with its cell, when it is a day.
type GridCell struct {
	Blank bool
	Cell  CellView
}

// Cells projects the loaded snapshot into grid cells. It returns nil while
// loading so the view shows a spinner instead of stale data.
func (o *Orchestrator) Cells() []GridCell {
	if o.Loading || o.Snapshot == nil {
		return nil
	}
	p := NewProjector(o.Snapshot, o.Filters, o.Facets)
	slots := BuildGrid(o.Month)
	cells := make([]GridCell, len(slots))
	for i, slot := range slots {
		if slot.Blank {
			cells[i] = GridCell{Blank: true}
			continue
		}
		cells[i] = GridCell{Cell: BuildCell(p.Day(slot.Date), o.Today, o.Filters, o.Perms)}
	}
	return cells
}

// Project returns the projection of a single day of the loaded snapshot.
func (o *Orchestrator) Project(d civil.Date) DayProjection {
	if o.Snapshot == nil {
		return DayProjection{Date: d, Interest: InterestAggregate{Date: d}}
	}
	return NewProjector(o.Snapshot, o.Filters, o.Facets).Day(d)
}

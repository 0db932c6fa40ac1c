// Package auth identifies the viewer of a calendar request and resolves what
// they may see and do. Identity lives with the external club platform: this
// package only reads the viewer's bearer credential and asks the platform
// for the matching capability record.
package auth

// Permissions is the capability record the platform grants a viewer for one
// scope (a club, or the unified cross-club view). It is resolved once per
// request and passed down explicitly; nothing reads it from globals.
type Permissions struct {
	CanViewCalendar           bool `json:"canViewCalendar"`
	CanCreateEvents           bool `json:"canCreateEvents"`
	CanEditAllEvents          bool `json:"canEditAllEvents"`
	CanBlockWeekends          bool `json:"canBlockWeekends"`
	CanFlagPriorityWeekends   bool `json:"canFlagPriorityWeekends"`
	CanViewInterestIdentities bool `json:"canViewInterestIdentities"`
	CanSubmitInterest         bool `json:"canSubmitInterest"`
	CanViewAllCalendars       bool `json:"canViewAllCalendars"`
	CanManageHolidays         bool `json:"canManageHolidays"`
	CanAccessDigest           bool `json:"canAccessDigest"`
	CanViewInterest           bool `json:"canViewInterest"`
}

// Viewer is the caller of the current request.
type Viewer struct {
	// Credential is the opaque bearer token issued by the identity provider.
	// Empty for anonymous viewers.
	Credential string

	Permissions Permissions
}

// Anonymous reports whether the viewer presented no credential.
func (v Viewer) Anonymous() bool {
	return v.Credential == ""
}

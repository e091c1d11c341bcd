package crud

// ScopeMode fixes, per entity at route-generation time, whether list/query
// operations are restricted to rows created by the caller.
type ScopeMode string

const (
	// ScopeAllOnly always returns all rows; the per-request override is ignored.
	ScopeAllOnly ScopeMode = "ALL_ONLY"
	// ScopeAllDefault returns all rows unless the request asks for SELF_DATA.
	ScopeAllDefault ScopeMode = "ALL_DEFAULT"
	// ScopeSelfOnly always restricts to the caller's own rows.
	ScopeSelfOnly ScopeMode = "SELF_ONLY"
	// ScopeSelfDefault restricts to the caller's rows unless the request asks
	// for ALL_DATA.
	ScopeSelfDefault ScopeMode = "SELF_DEFAULT"
)

// Wire values of the per-request user_data_filter override.
const (
	FilterAllData  = "ALL_DATA"
	FilterSelfData = "SELF_DATA"
)

// Scope is the row-visibility restriction an adapter applies to every read.
type Scope struct {
	// SelfOnly restricts results to rows whose created_by equals UserID.
	SelfOnly bool
	UserID   string
	// IncludeDisabled lifts the implicit enabled_flag filter. Generated
	// endpoints never set it; it exists for maintenance callers.
	IncludeDisabled bool
}

// Resolve combines the entity's scope mode with the per-request override.
// Overrides only take effect in the *_DEFAULT modes; the *_ONLY modes are
// fixed at route-generation time.
func (m ScopeMode) Resolve(override string, caller Caller) Scope {
	self := false
	switch m {
	case ScopeSelfOnly:
		self = true
	case ScopeSelfDefault:
		self = override != FilterAllData
	case ScopeAllDefault:
		self = override == FilterSelfData
	}
	// an anonymous caller has no rows of its own to scope to
	if caller.UserID == "" {
		self = false
	}
	return Scope{SelfOnly: self, UserID: caller.UserID}
}

package authz

// Action is an enumerated operation requested against a resource.
type Action string

// Enumerated actions. Coarse actions such as Manage expand through the
// hierarchy table; the rest are granted individually.
const (
	ActionManage Action = "MANAGE"

	ActionCreate      Action = "CREATE"
	ActionRead        Action = "READ"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionApprove     Action = "APPROVE"
	ActionReject      Action = "REJECT"
	ActionViewReports Action = "VIEW_REPORTS"
	ActionDownload    Action = "DOWNLOAD_DATA"
	ActionExport      Action = "EXPORT"
	ActionImport      Action = "IMPORT"
	ActionArchive     Action = "ARCHIVE"
	ActionRestore     Action = "RESTORE"
	ActionPublish     Action = "PUBLISH"
	ActionUnpublish   Action = "UNPUBLISH"
	ActionAssign      Action = "ASSIGN"
	ActionTransfer    Action = "TRANSFER"
)

// Wildcard is the reserved sentinel meaning "any resource" or "any action".
const Wildcard = "*"

// Permission is a declared (resource, action) grant. It is a declaration,
// not a decision.
type Permission struct {
	Resource string `json:"resource"`
	Action   Action `json:"action"`
}

// PermissionSet is the deduplicated flat set of grants reachable from a
// principal's roles.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from a slice of grants, dropping duplicates.
func NewPermissionSet(perms []Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether the exact (resource, action) pair is granted.
func (s PermissionSet) Has(resource string, action Action) bool {
	_, ok := s[Permission{Resource: resource, Action: action}]
	return ok
}

// Slice returns the set's grants in unspecified order.
func (s PermissionSet) Slice() []Permission {
	perms := make([]Permission, 0, len(s))
	for p := range s {
		perms = append(perms, p)
	}
	return perms
}

// Options tunes a single authorization check.
type Options struct {
	// BypassEnabled lets principals carrying an elevated role label through
	// unconditionally.
	BypassEnabled bool
	// OwnershipCheckEnabled consults the ownership fallback when every other
	// rule denies. Requires InstanceID.
	OwnershipCheckEnabled bool
	// InstanceID identifies the concrete resource instance for ownership
	// checks. Empty when the call targets a resource family.
	InstanceID string
}

// DefaultOptions returns the options applied when the caller passes none.
func DefaultOptions() Options {
	return Options{BypassEnabled: true}
}

// DenyCode is the single externally visible error code for every denial,
// regardless of cause.
const DenyCode = "AUTH_INSUFFICIENT_PERMISSIONS"

// DenyReason carries structured metadata about a denial for the caller to
// embed in its own error representation.
type DenyReason struct {
	Code        string `json:"errorCode"`
	Resource    string `json:"resource"`
	Action      Action `json:"action"`
	PrincipalID int64  `json:"principalId"`
}

// Outcome is the gate's verdict: proceed, or deny with a reason.
type Outcome struct {
	Allowed bool
	Reason  *DenyReason
}

// Proceed builds an allowing outcome.
func Proceed() Outcome {
	return Outcome{Allowed: true}
}

// Deny builds a denying outcome with the uniform deny code.
func Deny(resource string, action Action, principalID int64) Outcome {
	return Outcome{Reason: &DenyReason{
		Code:        DenyCode,
		Resource:    resource,
		Action:      action,
		PrincipalID: principalID,
	}}
}

package authz

// Hierarchy declares which coarse actions imply which finer actions.
// Expansion is a single lookup: implications never chain through another
// coarse action.
type Hierarchy struct {
	implied map[Action]map[Action]struct{}
}

// NewHierarchy copies the given table into an immutable Hierarchy. The
// caller's map is not retained.
func NewHierarchy(table map[Action][]Action) Hierarchy {
	implied := make(map[Action]map[Action]struct{}, len(table))
	for coarse, fine := range table {
		set := make(map[Action]struct{}, len(fine))
		for _, a := range fine {
			set[a] = struct{}{}
		}
		implied[coarse] = set
	}
	return Hierarchy{implied: implied}
}

// DefaultHierarchy returns the deployment's action implication table.
func DefaultHierarchy() Hierarchy {
	return NewHierarchy(map[Action][]Action{
		ActionManage: {
			ActionCreate,
			ActionRead,
			ActionUpdate,
			ActionApprove,
			ActionReject,
			ActionViewReports,
			ActionDownload,
			ActionExport,
			ActionImport,
			ActionArchive,
			ActionRestore,
			ActionPublish,
			ActionUnpublish,
			ActionAssign,
			ActionTransfer,
		},
	})
}

// Implies reports whether holding coarse grants fine. An action absent from
// the table implies nothing; that is not an error.
func (h Hierarchy) Implies(coarse, fine Action) bool {
	set, ok := h.implied[coarse]
	if !ok {
		return false
	}
	_, ok = set[fine]
	return ok
}

package conversation

// AllowList is the fixed set of user identities permitted to talk to the
// bot. Every entry point checks it before touching session state.
type AllowList map[int64]struct{}

func NewAllowList(ids []int64) AllowList {
	a := make(AllowList, len(ids))
	for _, id := range ids {
		a[id] = struct{}{}
	}
	return a
}

func (a AllowList) Allowed(userID int64) bool {
	_, ok := a[userID]
	return ok
}

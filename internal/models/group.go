package models

// Member is one entry in a group's membership set.
type Member struct {
	UserID string

	// Position is the join order. Lower positions joined earlier; positions
	// are never reused after a removal.
	Position int

	// JoinedAt is the Unix timestamp when the user joined.
	JoinedAt int64
}

// Group is a named set of members that owns a ledger.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// CreatorID is the user who created the group. The creator may later be
	// removed; the field is never updated.
	CreatorID string

	// Members is the current membership, ordered by Position.
	Members []Member
	// Joins counts positions handed out so far, including those of members
	// who were later removed.
	Joins int

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID is a current member.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the current member ids in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// Admin returns the user allowed to remove members: the creator while they
// remain a member, otherwise the earliest-joined current member.
// It returns "" for a group with no members.
func (g *Group) Admin() string {
	if g.HasMember(g.CreatorID) {
		return g.CreatorID
	}
	admin, best := "", -1
	for _, m := range g.Members {
		if best == -1 || m.Position < best {
			admin, best = m.UserID, m.Position
		}
	}
	return admin
}

// IsAdmin reports whether userID is the group's admin.
func (g *Group) IsAdmin(userID string) bool {
	return userID != "" && g.Admin() == userID
}

// NextPosition returns the join position for the next member.
func (g *Group) NextPosition() int {
	next := g.Joins
	for _, m := range g.Members {
		if m.Position >= next {
			next = m.Position + 1
		}
	}
	return next
}

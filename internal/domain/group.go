package domain

import "slices"

// GroupInfo identifies a group a device has joined at some point.
// The ID is opaque: generated on creation or supplied as an invite code.
type GroupInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// KnownGroups is the locally remembered list of previously joined groups.
type KnownGroups []GroupInfo

// Upsert appends the group or, if an entry with the same id exists,
// refreshes its cached display name. Returns the updated list.
func (k KnownGroups) Upsert(g GroupInfo) KnownGroups {
	for i := range k {
		if k[i].ID == g.ID {
			k[i].Name = g.Name
			return k
		}
	}
	return append(k, g)
}

// Remove deletes the entry with the given id, if present.
func (k KnownGroups) Remove(id string) KnownGroups {
	return slices.DeleteFunc(slices.Clone(k), func(g GroupInfo) bool {
		return g.ID == id
	})
}

// Contains reports whether the list has an entry with the given id.
func (k KnownGroups) Contains(id string) bool {
	return slices.ContainsFunc(k, func(g GroupInfo) bool { return g.ID == id })
}

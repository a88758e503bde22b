package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// SupersetRef marks a routine item as either standalone or part of a
// superset group. Items sharing a group ID are intended to be performed
// back-to-back; membership carries no ordering beyond each item's own
// order index.
type SupersetRef struct {
	groupID uuid.UUID
	member  bool
}

// Standalone returns a SupersetRef for an item that belongs to no group.
func Standalone() SupersetRef {
	return SupersetRef{}
}

// PartOfSuperset returns a SupersetRef tying an item to the given group.
func PartOfSuperset(groupID uuid.UUID) SupersetRef {
	return SupersetRef{groupID: groupID, member: true}
}

// Group returns the superset group ID and whether the item is in a group.
func (s SupersetRef) Group() (uuid.UUID, bool) {
	return s.groupID, s.member
}

// MarshalJSON encodes as the group ID string, or null for standalone items.
func (s SupersetRef) MarshalJSON() ([]byte, error) {
	if !s.member {
		return []byte("null"), nil
	}
	return json.Marshal(s.groupID.String())
}

// UnmarshalJSON accepts a group ID string or null.
func (s *SupersetRef) UnmarshalJSON(data []byte) error {
	var id *uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == nil {
		*s = Standalone()
	} else {
		*s = PartOfSuperset(*id)
	}
	return nil
}

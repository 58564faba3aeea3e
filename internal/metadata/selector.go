package metadata

import (
	"fmt"
	"time"
)

// TagSelector names a single tag of a single object by explicit version,
// latest flag, or as-of timestamp; exactly one variant must be set on each
// of the object-version and tag-version criteria.
type TagSelector struct {
	ObjectType ObjectType `json:"objectType"`
	ObjectID   string     `json:"objectId"`

	ObjectVersion *int64     `json:"objectVersion,omitempty"`
	LatestObject  bool       `json:"latestObject,omitempty"`
	ObjectAsOf    *time.Time `json:"objectAsOf,omitempty"`

	TagVersion *int64     `json:"tagVersion,omitempty"`
	LatestTag  bool       `json:"latestTag,omitempty"`
	TagAsOf    *time.Time `json:"tagAsOf,omitempty"`
}

// Validate enforces "exactly one variant on each criterion side" (§3).
func (s TagSelector) Validate() error {
	if s.ObjectID == "" {
		return fmt.Errorf("metadata: selector missing objectId")
	}
	objectCriteria := 0
	if s.ObjectVersion != nil {
		objectCriteria++
	}
	if s.LatestObject {
		objectCriteria++
	}
	if s.ObjectAsOf != nil {
		objectCriteria++
	}
	if objectCriteria != 1 {
		return fmt.Errorf("metadata: selector must set exactly one of objectVersion/latestObject/objectAsOf, got %d", objectCriteria)
	}

	tagCriteria := 0
	if s.TagVersion != nil {
		tagCriteria++
	}
	if s.LatestTag {
		tagCriteria++
	}
	if s.TagAsOf != nil {
		tagCriteria++
	}
	if tagCriteria != 1 {
		return fmt.Errorf("metadata: selector must set exactly one of tagVersion/latestTag/tagAsOf, got %d", tagCriteria)
	}

	if s.ObjectVersion != nil && *s.ObjectVersion < 1 {
		return fmt.Errorf("metadata: objectVersion must be >= 1")
	}
	if s.TagVersion != nil && *s.TagVersion < 1 {
		return fmt.Errorf("metadata: tagVersion must be >= 1")
	}
	return nil
}

// IsPinned reports whether the selector pins an exact objectVersion rather
// than resolving via latestObject/objectAsOf. External SCHEMA references
// from DATA must be pinned (§3 invariant 6).
func (s TagSelector) IsPinned() bool {
	return s.ObjectVersion != nil
}

// SelectorFor returns a selector that pins exactly the given header,
// including its tagVersion.
func SelectorFor(h TagHeader) TagSelector {
	ov, tv := h.ObjectVersion, h.TagVersion
	return TagSelector{
		ObjectType:    h.ObjectType,
		ObjectID:      h.ObjectID,
		ObjectVersion: &ov,
		TagVersion:    &tv,
	}
}

// SelectorForLatest returns a selector for the object's latest object
// version and latest tag version, used for live back-references such as
// DATA/FILE.storageId (§3 invariant 5).
func SelectorForLatest(h TagHeader) TagSelector {
	return TagSelector{
		ObjectType:   h.ObjectType,
		ObjectID:     h.ObjectID,
		LatestObject: true,
		LatestTag:    true,
	}
}

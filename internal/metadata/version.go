package metadata

import "time"

// NewObjectHeader starts the version/tag sequence for a brand-new object:
// objectVersion=1, tagVersion=1, both timestamps set to now.
func NewObjectHeader(objectType ObjectType, objectID string, now time.Time) TagHeader {
	return TagHeader{
		ObjectType:      objectType,
		ObjectID:        objectID,
		ObjectVersion:   1,
		TagVersion:      1,
		ObjectTimestamp: now,
		TagTimestamp:    now,
	}
}

// NextObjectHeader advances prior to a new object version: objectVersion+1,
// tagVersion reset to 1 (§3 invariants 2 and 3).
func NextObjectHeader(prior TagHeader, now time.Time) TagHeader {
	return TagHeader{
		ObjectType:      prior.ObjectType,
		ObjectID:        prior.ObjectID,
		ObjectVersion:   prior.ObjectVersion + 1,
		TagVersion:      1,
		ObjectTimestamp: now,
		TagTimestamp:    now,
	}
}

// NextTagHeader advances prior to a new tag-only version: same objectVersion,
// tagVersion+1, objectTimestamp preserved, tagTimestamp refreshed.
func NextTagHeader(prior TagHeader, now time.Time) TagHeader {
	return TagHeader{
		ObjectType:      prior.ObjectType,
		ObjectID:        prior.ObjectID,
		ObjectVersion:   prior.ObjectVersion,
		TagVersion:      prior.TagVersion + 1,
		ObjectTimestamp: prior.ObjectTimestamp,
		TagTimestamp:    now,
	}
}

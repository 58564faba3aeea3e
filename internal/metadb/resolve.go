package metadb

import (
	"time"

	"github.com/tracplatform/trac/internal/metadata"
)

// ResolveObjectVersion picks the objectVersion selected by sel out of
// candidates, which must contain one header per committed objectVersion
// (objectTimestamp set to that version's creation time). Precedence is
// explicit objectVersion, else objectAsOf, else latestObject — the max
// objectVersion committed at/before now (§4.B "Selector resolution").
func ResolveObjectVersion(candidates []metadata.TagHeader, sel metadata.TagSelector, now time.Time) (metadata.TagHeader, bool) {
	switch {
	case sel.ObjectVersion != nil:
		for _, c := range candidates {
			if c.ObjectVersion == *sel.ObjectVersion {
				return c, true
			}
		}
		return metadata.TagHeader{}, false

	case sel.ObjectAsOf != nil:
		return latestAtOrBefore(candidates, *sel.ObjectAsOf, func(h metadata.TagHeader) time.Time { return h.ObjectTimestamp })

	case sel.LatestObject:
		return latestAtOrBefore(candidates, now, func(h metadata.TagHeader) time.Time { return h.ObjectTimestamp })

	default:
		return metadata.TagHeader{}, false
	}
}

// ResolveTagVersion picks the tagVersion selected by sel out of candidates,
// which must contain one header per committed tagVersion within a single
// objectVersion. tagAsOf resolves to the max tagVersion whose tagTimestamp
// is <= asOf (§4.B).
func ResolveTagVersion(candidates []metadata.TagHeader, sel metadata.TagSelector, now time.Time) (metadata.TagHeader, bool) {
	switch {
	case sel.TagVersion != nil:
		for _, c := range candidates {
			if c.TagVersion == *sel.TagVersion {
				return c, true
			}
		}
		return metadata.TagHeader{}, false

	case sel.TagAsOf != nil:
		return latestAtOrBefore(candidates, *sel.TagAsOf, func(h metadata.TagHeader) time.Time { return h.TagTimestamp })

	case sel.LatestTag:
		return latestAtOrBefore(candidates, now, func(h metadata.TagHeader) time.Time { return h.TagTimestamp })

	default:
		return metadata.TagHeader{}, false
	}
}

func latestAtOrBefore(candidates []metadata.TagHeader, cutoff time.Time, at func(metadata.TagHeader) time.Time) (metadata.TagHeader, bool) {
	var best metadata.TagHeader
	found := false
	for _, c := range candidates {
		ts := at(c)
		if ts.After(cutoff) {
			continue
		}
		if !found || ts.After(at(best)) {
			best = c
			found = true
		}
	}
	return best, found
}

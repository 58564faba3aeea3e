package metadb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tracplatform/trac/internal/metadata"
)

func TestResolveObjectVersionLatest(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []metadata.TagHeader{
		{ObjectVersion: 1, ObjectTimestamp: base},
		{ObjectVersion: 2, ObjectTimestamp: base.Add(time.Hour)},
		{ObjectVersion: 3, ObjectTimestamp: base.Add(2 * time.Hour)},
	}

	sel := metadata.TagSelector{LatestObject: true}
	got, ok := ResolveObjectVersion(candidates, sel, base.Add(3*time.Hour))
	require.True(t, ok)
	require.Equal(t, int64(3), got.ObjectVersion)
}

func TestResolveObjectVersionAsOf(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []metadata.TagHeader{
		{ObjectVersion: 1, ObjectTimestamp: base},
		{ObjectVersion: 2, ObjectTimestamp: base.Add(time.Hour)},
	}

	asOf := base.Add(30 * time.Minute)
	sel := metadata.TagSelector{ObjectAsOf: &asOf}
	got, ok := ResolveObjectVersion(candidates, sel, time.Now())
	require.True(t, ok)
	require.Equal(t, int64(1), got.ObjectVersion)
}

func TestResolveObjectVersionAsOfBeforeFirstCommit(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []metadata.TagHeader{
		{ObjectVersion: 1, ObjectTimestamp: base},
	}
	asOf := base.Add(-time.Hour)
	sel := metadata.TagSelector{ObjectAsOf: &asOf}
	_, ok := ResolveObjectVersion(candidates, sel, time.Now())
	require.False(t, ok)
}

func TestResolveObjectVersionExplicit(t *testing.T) {
	candidates := []metadata.TagHeader{
		{ObjectVersion: 1},
		{ObjectVersion: 2},
	}
	v := int64(2)
	sel := metadata.TagSelector{ObjectVersion: &v}
	got, ok := ResolveObjectVersion(candidates, sel, time.Now())
	require.True(t, ok)
	require.Equal(t, int64(2), got.ObjectVersion)
}

func TestResolveTagVersionLatest(t *testing.T) {
	base := time.Now()
	candidates := []metadata.TagHeader{
		{TagVersion: 1, TagTimestamp: base},
		{TagVersion: 2, TagTimestamp: base.Add(time.Minute)},
	}
	sel := metadata.TagSelector{LatestTag: true}
	got, ok := ResolveTagVersion(candidates, sel, base.Add(time.Hour))
	require.True(t, ok)
	require.Equal(t, int64(2), got.TagVersion)
}

package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTagSelectorValidate(t *testing.T) {
	v1 := int64(1)
	asOf := time.Now()

	t.Run("valid pinned selector", func(t *testing.T) {
		s := TagSelector{ObjectType: ObjectTypeData, ObjectID: "id-1", ObjectVersion: &v1, TagVersion: &v1}
		require.NoError(t, s.Validate())
		require.True(t, s.IsPinned())
	})

	t.Run("valid latest selector", func(t *testing.T) {
		s := TagSelector{ObjectType: ObjectTypeData, ObjectID: "id-1", LatestObject: true, LatestTag: true}
		require.NoError(t, s.Validate())
		require.False(t, s.IsPinned())
	})

	t.Run("rejects zero criteria", func(t *testing.T) {
		s := TagSelector{ObjectType: ObjectTypeData, ObjectID: "id-1"}
		require.Error(t, s.Validate())
	})

	t.Run("rejects multiple criteria", func(t *testing.T) {
		s := TagSelector{ObjectType: ObjectTypeData, ObjectID: "id-1", ObjectVersion: &v1, LatestObject: true, LatestTag: true}
		require.Error(t, s.Validate())
	})

	t.Run("asOf selector valid", func(t *testing.T) {
		s := TagSelector{ObjectType: ObjectTypeData, ObjectID: "id-1", ObjectAsOf: &asOf, TagAsOf: &asOf}
		require.NoError(t, s.Validate())
	})

	t.Run("rejects missing objectId", func(t *testing.T) {
		s := TagSelector{ObjectType: ObjectTypeData, LatestObject: true, LatestTag: true}
		require.Error(t, s.Validate())
	})
}

func TestSelectorForAndLatest(t *testing.T) {
	h := TagHeader{ObjectType: ObjectTypeStorage, ObjectID: "obj-1", ObjectVersion: 3, TagVersion: 2}

	pinned := SelectorFor(h)
	require.True(t, pinned.IsPinned())
	require.Equal(t, int64(3), *pinned.ObjectVersion)
	require.Equal(t, int64(2), *pinned.TagVersion)

	latest := SelectorForLatest(h)
	require.False(t, latest.IsPinned())
	require.True(t, latest.LatestObject)
	require.True(t, latest.LatestTag)
}

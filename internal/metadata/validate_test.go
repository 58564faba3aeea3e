package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAttrName(t *testing.T) {
	require.NoError(t, ValidateAttrName("business_key", false))
	require.Error(t, ValidateAttrName("1_leading_digit", false))
	require.Error(t, ValidateAttrName("trac_data_x", false))
	require.Error(t, ValidateAttrName("_private", false))
	require.Error(t, ValidateAttrName("__dunder", false))
	require.NoError(t, ValidateAttrName("trac_data_schema", true))
}

func TestValidateFileName(t *testing.T) {
	require.NoError(t, ValidateFileName("report.txt"))
	require.Error(t, ValidateFileName(" report.txt"))
	require.Error(t, ValidateFileName("report.txt "))
	require.Error(t, ValidateFileName("report."))
	require.Error(t, ValidateFileName("a/b.txt"))
	require.Error(t, ValidateFileName("con.txt"))
	require.Error(t, ValidateFileName("trac_report.txt"))
	require.Error(t, ValidateFileName(""))
}

func TestApplyTagUpdatesReplaceMissing(t *testing.T) {
	existing := map[string]*Value{}
	s := "x"
	_, ok, attr := ApplyTagUpdates(existing, []TagUpdate{
		{AttrName: "owner", Operation: OpReplaceAttr, Value: &Value{Type: TypeString, String: &s}},
	})
	require.False(t, ok)
	require.Equal(t, "owner", attr)
}

func TestApplyTagUpdatesCreateAndDelete(t *testing.T) {
	s := "x"
	existing := map[string]*Value{}
	updated, ok, _ := ApplyTagUpdates(existing, []TagUpdate{
		{AttrName: "owner", Operation: OpCreateAttr, Value: &Value{Type: TypeString, String: &s}},
	})
	require.True(t, ok)
	require.Contains(t, updated, "owner")

	cleared, ok, _ := ApplyTagUpdates(updated, []TagUpdate{
		{AttrName: "owner", Operation: OpDeleteAttr},
	})
	require.True(t, ok)
	require.NotContains(t, cleared, "owner")
}

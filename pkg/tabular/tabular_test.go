package tabular

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInfersKinds(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		text string
	}{
		{raw: "", kind: KindNull, text: ""},
		{raw: "12", kind: KindNumber, text: "12"},
		{raw: "-3.5", kind: KindNumber, text: "-3.5"},
		{raw: "007", kind: KindString, text: "007"},
		{raw: "12.50", kind: KindString, text: "12.50"},
		{raw: "1e3", kind: KindString, text: "1e3"},
		{raw: "NaN", kind: KindString, text: "NaN"},
		{raw: "Class 6A", kind: KindString, text: "Class 6A"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := Parse(tt.raw)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.Text())
		})
	}
}

func TestValueJSONKeepsKind(t *testing.T) {
	rec := Record{"a": String("42x"), "b": Number(42), "c": Null()}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(rec, decoded); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestValueOrderingAndSearch(t *testing.T) {
	assert.True(t, Number(10).Less(String("1")))
	assert.True(t, Number(2).Less(Number(10)))
	assert.True(t, String("A").Less(String("B")))
	assert.True(t, String("Maths Teacher").ContainsFold("TEACH"))
	assert.False(t, Null().ContainsFold(""))
}

func TestConcatPreservesOrderAndDuplicates(t *testing.T) {
	a := Dataset{Columns: []string{"Class", "Subject"}, Records: []Record{
		{"Class": String("6A"), "Subject": String("Maths")},
	}}
	b := Dataset{Columns: []string{"Subject", "Teacher"}, Records: []Record{
		{"Subject": String("Hindi"), "Teacher": String("Rao")},
	}}

	merged := Concat("merged", a, a, b)

	require.Equal(t, 3, merged.Len())
	assert.Equal(t, []string{"Class", "Subject", "Teacher"}, merged.Columns)
	assert.Equal(t, "Maths", merged.Records[0].Text("Subject"))
	assert.Equal(t, "Maths", merged.Records[1].Text("Subject"))
	assert.True(t, merged.Records[2].Get("Class").IsNull())
}

func TestDistinctSkipsNullsAndSorts(t *testing.T) {
	ds := Dataset{Columns: []string{"Class"}, Records: []Record{
		{"Class": String("7B")}, {"Class": Null()}, {"Class": Number(6)}, {"Class": String("7B")}, {},
	}}
	got := ds.Distinct("Class")
	require.Len(t, got, 2)
	assert.Equal(t, "6", got[0].Text())
	assert.Equal(t, "7B", got[1].Text())
}

func TestSliceBounds(t *testing.T) {
	ds := Dataset{Columns: []string{"n"}, Records: []Record{{"n": Number(1)}, {"n": Number(2)}, {"n": Number(3)}}}
	assert.Equal(t, 2, ds.Slice(1, 5).Len())
	assert.Equal(t, 0, ds.Slice(9, 5).Len())
	assert.Equal(t, 3, ds.Slice(0, 0).Len())
}

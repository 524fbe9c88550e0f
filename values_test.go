package agpconf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{StringValue("plain"), `"plain"`},
		{StringValue(`a"b\c$d`), `"a\"b\\c\$d"`},
		{StringValue("line\n\ttab\r"), `"line\n\ttab\r"`},
		{IntValue(-3), "-3"},
		{BoolValue(true), "true"},
		{RefValue("JavaVersion.VERSION_17"), "JavaVersion.VERSION_17"},
		{ListValue(StringValue("a"), IntValue(1)), `listOf("a", 1)`},
		{ListValue(), "listOf()"},
		{ExternalValue("file", StringValue("a.jks")), `file("a.jks")`},
		{Value{}, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(RefValue("a")))
	assert.False(t, IntValue(1).Equal(IntValue(2)))
	assert.True(t, ListValue(StringValue("a")).Equal(ListValue(StringValue("a"))))
	assert.False(t, ListValue(StringValue("a")).Equal(ListValue(StringValue("a"), StringValue("b"))))
	assert.False(t, ExternalValue("file", StringValue("a")).Equal(ExternalValue("rootProject.file", StringValue("a"))))
	assert.True(t, Value{}.Equal(Value{}))
}

func TestValueItems(t *testing.T) {
	assert.Nil(t, Value{}.Items())
	assert.Equal(t, []Value{StringValue("a")}, StringValue("a").Items())
	assert.Equal(t, []Value{IntValue(1), IntValue(2)}, ListValue(IntValue(1), IntValue(2)).Items())
}

func TestValueCty(t *testing.T) {
	assert.True(t, StringValue("a").Cty().RawEquals(cty.StringVal("a")))
	assert.True(t, IntValue(7).Cty().RawEquals(cty.NumberIntVal(7)))
	assert.True(t, BoolValue(false).Cty().RawEquals(cty.False))
	assert.True(t, ListValue().Cty().RawEquals(cty.EmptyTupleVal))
	assert.True(t, ListValue(StringValue("a"), IntValue(1)).Cty().RawEquals(cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)})))
	assert.False(t, RefValue("a.b").Cty().IsKnown())
	assert.False(t, ExternalValue("file").Cty().IsKnown())
	assert.True(t, Value{}.Cty().IsNull())
}

func TestValueMarshal(t *testing.T) {
	v := ListValue(
		StringValue("a"),
		IntValue(2),
		BoolValue(true),
		RefValue("x.y"),
		ExternalValue("file", StringValue("k.jks")),
		ListValue(),
		Value{},
	)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `["a", 2, true, {"ref": "x.y"}, {"call": "file", "args": ["k.jks"]}, [], null]`, string(b))

	y, err := yaml.Marshal(v)
	require.NoError(t, err)

	var got any
	require.NoError(t, yaml.Unmarshal(y, &got))
	assert.Equal(t, []any{
		"a",
		2,
		true,
		map[string]any{"ref": "x.y"},
		map[string]any{"call": "file", "args": []any{"k.jks"}},
		[]any{},
		nil,
	}, got)
}

package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func tunedSpec() *Spec {
	return &Spec{
		Type:   "test",
		Action: "tuned",
		Params: []ParamSpec{
			Required("field", cty.String, ""),
			Optional("limit", cty.Number, cty.NumberIntVal(10), ""),
			Required("target", cty.Number, ""),
			OneOfStrings("mode", []string{"fast", "slow"}, ""),
		},
	}
}

func TestBindArgs_PositionalMapping(t *testing.T) {
	t.Parallel()

	// Positionals fill required params in declaration order: field, target.
	args, err := BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "_arg0", Value: cty.StringVal("amount")},
		{Name: "_arg1", Value: cty.NumberIntVal(5)},
		{Name: "mode", Value: cty.StringVal("fast")},
	})
	require.NoError(t, err)

	assert.Equal(t, "amount", args.String("field"))
	assert.Equal(t, 5, args.Int("target"))
	assert.Equal(t, 10, args.Int("limit"), "optional default applied")
	assert.Equal(t, "fast", args.String("mode"))
}

func TestBindArgs_NamedWinsOverPositional(t *testing.T) {
	t.Parallel()

	args, err := BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "field", Value: cty.StringVal("named")},
		{Name: "_arg0", Value: cty.StringVal("positional")},
		{Name: "target", Value: cty.NumberIntVal(1)},
		{Name: "mode", Value: cty.StringVal("slow")},
	})
	require.NoError(t, err)
	assert.Equal(t, "named", args.String("field"))
}

func TestBindArgs_MissingRequired(t *testing.T) {
	t.Parallel()

	_, err := BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "field", Value: cty.StringVal("amount")},
		{Name: "mode", Value: cty.StringVal("fast")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required parameter "target" is missing`)
}

func TestBindArgs_CollectsAllProblems(t *testing.T) {
	t.Parallel()

	_, err := BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "mode", Value: cty.StringVal("warp")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"field" is missing`)
	assert.Contains(t, err.Error(), `"target" is missing`)
	assert.Contains(t, err.Error(), `"mode" must be one of ["fast", "slow"]`)
}

func TestBindArgs_TypeMismatch(t *testing.T) {
	t.Parallel()

	_, err := BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "field", Value: cty.StringVal("amount")},
		{Name: "target", Value: cty.StringVal("not a number")},
		{Name: "mode", Value: cty.StringVal("fast")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `parameter "target"`)
}

func TestBindArgs_NumericStringConverts(t *testing.T) {
	t.Parallel()

	// cty's conversion rules accept "5" where a number is declared, the
	// same leniency the parser applies at validation time.
	args, err := BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "field", Value: cty.StringVal("amount")},
		{Name: "target", Value: cty.StringVal("5")},
		{Name: "mode", Value: cty.StringVal("fast")},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, args.Int("target"))
}

func TestArgs_Getters(t *testing.T) {
	t.Parallel()

	spec := &Spec{
		Type: "t", Action: "a",
		Params: []ParamSpec{
			Required("name", cty.String, ""),
			Required("count", cty.Number, ""),
			Required("on", cty.Bool, ""),
			Required("tags", cty.DynamicPseudoType, ""),
			Optional("missing", cty.String, cty.NullVal(cty.String), ""),
		},
	}
	args, err := BindArgs(spec, []ResolvedParam{
		{Name: "name", Value: cty.StringVal("x")},
		{Name: "count", Value: cty.NumberFloatVal(3)},
		{Name: "on", Value: cty.True},
		{Name: "tags", Value: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})},
	})
	require.NoError(t, err)

	assert.Equal(t, "x", args.String("name"))
	assert.Equal(t, 3, args.Int("count"))
	assert.Equal(t, 3.0, args.Float("count"))
	assert.True(t, args.Bool("on"))
	assert.Equal(t, []string{"a", "b"}, args.Strings("tags"))

	assert.False(t, args.Has("missing"), "null default reads as absent")
	assert.Nil(t, args.Go("missing"))
	assert.Equal(t, "", args.String("missing"))
}

func TestBindArgs_OneOfDefaultApplied(t *testing.T) {
	t.Parallel()

	spec := &Spec{
		Type:   "test",
		Action: "styled",
		Params: []ParamSpec{
			OneOfStringsDefault("style", []string{"bar", "line"}, "bar", ""),
		},
	}

	args, err := BindArgs(spec, nil)
	require.NoError(t, err)
	assert.Equal(t, "bar", args.String("style"), "enum default applied when absent")

	args, err = BindArgs(spec, []ResolvedParam{
		{Name: "style", Value: cty.StringVal("line")},
	})
	require.NoError(t, err)
	assert.Equal(t, "line", args.String("style"))

	// A supplied value is still validated against the enum.
	_, err = BindArgs(spec, []ResolvedParam{
		{Name: "style", Value: cty.StringVal("donut")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"style" must be one of`)

	// Without a default the enum parameter stays mandatory.
	_, err = BindArgs(tunedSpec(), []ResolvedParam{
		{Name: "field", Value: cty.StringVal("amount")},
		{Name: "target", Value: cty.NumberIntVal(1)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required parameter "mode" is missing`)
}

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/framespec"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/variables"
)

type blurKind struct{ NoHooks }

func (blurKind) Name() string  { return "Blur" }
func (blurKind) PerItem() bool { return true }
func (blurKind) Inputs() []InputDef {
	return []InputDef{{Name: "Source", Type: "Image", Required: true}}
}
func (blurKind) Outputs() []OutputDef {
	return []OutputDef{{Name: "Result", Type: "Image", From: "Source"}}
}
func (blurKind) Attributes() []AttributeDef {
	return []AttributeDef{{Name: "radius", Default: "2"}}
}
func (blurKind) Execute(*Node, Packets, bool) ([]Command, error) { return nil, nil }

func TestNew(t *testing.T) {
	t.Parallel()

	n := New(blurKind{}, "my blur!", packet.NewTypes())

	assert.Equal(t, "my_blur_", n.Name())
	assert.Equal(t, "Blur", n.KindName())
	require.Len(t, n.Inputs(), 1)
	require.Len(t, n.Outputs(), 1)

	out := n.Outputs()[0]
	assert.Equal(t, []string{"filename", "transform"}, out.Slots)
	assert.Equal(t, map[string]string{"filename": "", "transform": ""}, out.Values)

	v, err := n.AttributeValue("radius")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestCleanName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Read_1.v2", CleanName("Read 1.v2"))
	assert.Equal(t, "a_b_c", CleanName("a/b:c"))
}

func TestNode_Properties(t *testing.T) {
	t.Parallel()

	vars := variables.New()
	require.NoError(t, vars.Set("SHOT", "sh010", false))
	require.NoError(t, vars.Set("LAST", "24", false))

	n := New(blurKind{}, "Blur", packet.NewTypes())
	n.SetVars(vars)

	require.NoError(t, n.SetOutputValue("Result", "filename", "/out/$SHOT/blur.####.exr"))
	require.NoError(t, n.SetOutputRange("Result", &Range{Start: "1", End: "$LAST"}))

	spec, err := n.OutputSpec("Result", "filename")
	require.NoError(t, err)
	assert.Equal(t, framespec.Spec{Template: "/out/sh010/blur.####.exr", Range: &framespec.Range{Start: 1, End: 24}}, spec)

	t.Run("unknown properties", func(t *testing.T) {
		_, err := n.Input("Nope")
		assert.ErrorIs(t, err, ErrNoSuchInput)
		_, err = n.Output("Nope")
		assert.ErrorIs(t, err, ErrNoSuchOutput)
		_, err = n.Attribute("Nope")
		assert.ErrorIs(t, err, ErrNoSuchAttribute)
		assert.ErrorIs(t, n.SetOutputValue("Result", "nope", "x"), ErrNoSuchSlot)
	})

	t.Run("non numeric range", func(t *testing.T) {
		require.NoError(t, n.SetInputRange("Source", &Range{Start: "1", End: "$UNDEFINED"}))
		_, err := n.InputRange("Source")
		assert.Error(t, err)
	})

	t.Run("half empty range resolves to none", func(t *testing.T) {
		require.NoError(t, n.SetAttributeRange("radius", &Range{Start: "1"}))
		r, err := n.AttributeRange("radius")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("derivation mapping", func(t *testing.T) {
		assert.Equal(t, "Result", n.AffectedOutput("Source").Name)
		assert.Equal(t, "Source", n.AffectingInput("Result").Name)
		assert.Nil(t, n.AffectedOutput("Nope"))
	})

	t.Run("variable references", func(t *testing.T) {
		workflow, env := n.VariableRefs()
		assert.ElementsMatch(t, []string{"UNDEFINED", "SHOT", "LAST"}, workflow)
		assert.Empty(t, env)
	})
}

func TestNode_Duplicate(t *testing.T) {
	t.Parallel()

	n := New(blurKind{}, "Blur", packet.NewTypes())
	require.NoError(t, n.SetOutputValue("Result", "filename", "a.exr"))
	require.NoError(t, n.SetAttributeValue("radius", "5"))

	dup := n.Duplicate("Blur_Dupe")
	assert.NotEqual(t, n.ID(), dup.ID())
	assert.Equal(t, "Blur_Dupe", dup.Name())

	v, err := dup.OutputValue("Result", "filename")
	require.NoError(t, err)
	assert.Equal(t, "a.exr", v)

	// The copy is independent of the original.
	require.NoError(t, dup.SetAttributeValue("radius", "9"))
	orig, err := n.AttributeValue("radius")
	require.NoError(t, err)
	assert.Equal(t, "5", orig)
}

func TestNode_ItemRange(t *testing.T) {
	t.Parallel()

	n := New(blurKind{}, "Blur", packet.NewTypes())
	r, err := n.ItemRange()
	require.NoError(t, err)
	assert.Nil(t, r)

	require.NoError(t, n.SetOutputRange("Result", &Range{Start: "5", End: "8"}))
	r, err = n.ItemRange()
	require.NoError(t, err)
	assert.Equal(t, &framespec.Range{Start: 5, End: 8}, r)

	// A ranged input wins over the outputs.
	require.NoError(t, n.SetInputRange("Source", &Range{Start: "1", End: "3"}))
	r, err = n.ItemRange()
	require.NoError(t, err)
	assert.Equal(t, &framespec.Range{Start: 1, End: 3}, r)
}

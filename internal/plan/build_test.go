package plan

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/node"
)

func labels(steps []Step) []string {
	var out []string
	for _, s := range steps {
		out = append(out, s.Label)
	}
	return out
}

func commands(steps []Step) []node.Command {
	var out []node.Command
	for _, s := range steps {
		out = append(out, s.Command)
	}
	return out
}

func TestBuild_GroupInterleave(t *testing.T) {
	t.Parallel()

	// Arrange: A -> B -> C over frames 1-3 with B and C grouped.
	f := newFixture(t)
	a, b, c := f.chain(t, stepKind{perItem: true})
	require.NoError(t, f.g.AddGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))
	recipe := &recordingRecipe{}

	// Act
	plan, err := f.p.Build(context.Background(), c, Options{Recipe: recipe, Destination: "/tmp/out.sh", RunNow: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []*node.Node{a, b, c}, plan.Order)
	assert.Equal(t, []node.Command{
		{"B", "1"}, {"C", "1"},
		{"B", "2"}, {"C", "2"},
		{"B", "3"}, {"C", "3"},
	}, commands(plan.Steps))
	for _, l := range labels(plan.Steps) {
		assert.Equal(t, "grp1", l)
	}
	assert.Equal(t, plan.Steps, recipe.steps)
	assert.Equal(t, "/tmp/out.sh", recipe.destination)
	assert.True(t, recipe.runNow)
}

func TestBuild_Ungrouped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, c := f.chain(t, stepKind{perItem: true, pre: true, post: true})

	plan, err := f.p.Build(context.Background(), c, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"B [Pre-execution]", "B", "B [Post-execution]",
		"C [Pre-execution]", "C", "C [Post-execution]",
	}, labels(plan.Steps))
	assert.Equal(t, node.Command{"B"}, plan.Steps[1].Command)
}

func TestBuild_GroupMembersWithHooks(t *testing.T) {
	t.Parallel()

	// Every member's pre command runs before the first interleaved item and
	// every post command after the last one.
	f := newFixture(t)
	_, b, c := f.chain(t, stepKind{perItem: true, pre: true, post: true})
	require.NoError(t, f.g.AddGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))

	plan, err := f.p.Build(context.Background(), c, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"B [Pre-execution]", "C [Pre-execution]",
		"grp1", "grp1", "grp1", "grp1", "grp1", "grp1",
		"B [Post-execution]", "C [Post-execution]",
	}, labels(plan.Steps))
	assert.Equal(t, node.Command{"mkdir", "C"}, plan.Steps[1].Command)
	assert.Equal(t, node.Command{"C", "3"}, plan.Steps[7].Command)
	assert.Equal(t, node.Command{"cleanup", "B"}, plan.Steps[8].Command)
}

// joinKind reads two images and writes one.
type joinKind struct{ node.NoHooks }

func (joinKind) Name() string  { return "Join" }
func (joinKind) PerItem() bool { return false }
func (joinKind) Inputs() []node.InputDef {
	return []node.InputDef{{Name: "Left", Type: "Image", Required: true}, {Name: "Right", Type: "Image", Required: true}}
}
func (joinKind) Outputs() []node.OutputDef       { return []node.OutputDef{{Name: "Out", Type: "Image", From: "Left"}} }
func (joinKind) Attributes() []node.AttributeDef { return nil }
func (joinKind) Execute(n *node.Node, _ node.Packets, _ bool) ([]node.Command, error) {
	return []node.Command{{n.Name()}}, nil
}

func TestBuild_GroupConsumerPlannedBetweenMembers(t *testing.T) {
	t.Parallel()

	// A -> B -> X -> J and A -> C -> J, with B and C grouped. X is planned
	// between B and C but reads B, so it moves behind the group.
	f := newFixture(t)
	a := f.add(t, readKind{typ: "Image"}, "A")
	b := f.add(t, stepKind{perItem: true}, "B")
	x := f.add(t, stepKind{perItem: true}, "X")
	c := f.add(t, stepKind{perItem: true}, "C")
	j := f.add(t, joinKind{}, "J")
	f.output(t, a, "Image", "a.#.exr", 1, 3)
	f.output(t, b, "Out", "b.#.exr", 1, 3)
	f.output(t, x, "Out", "x.#.exr", 1, 3)
	f.output(t, c, "Out", "c.#.exr", 1, 3)
	f.bind(t, b, "In", a, "Image")
	f.bind(t, c, "In", a, "Image")
	f.bind(t, x, "In", b, "Out")
	f.bind(t, j, "Left", x, "Out")
	f.bind(t, j, "Right", c, "Out")
	require.NoError(t, f.g.AddGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))

	plan, err := f.p.Build(context.Background(), j, Options{})
	require.NoError(t, err)
	assert.Equal(t, []*node.Node{a, b, x, c, j}, plan.Order)
	assert.Equal(t, []node.Command{
		{"B", "1"}, {"C", "1"},
		{"B", "2"}, {"C", "2"},
		{"B", "3"}, {"C", "3"},
		{"X"}, {"J"},
	}, commands(plan.Steps))
}

func TestBuild_GroupSplitByOutsider(t *testing.T) {
	t.Parallel()

	// A -> B -> X -> C with B and C grouped: X needs B's items and C needs
	// X's, so no order satisfies the group.
	f := newFixture(t)
	_, b, c := f.chain(t, stepKind{perItem: true})
	x := f.add(t, stepKind{perItem: true}, "X")
	f.output(t, x, "Out", "x.#.exr", 1, 3)
	f.bind(t, x, "In", b, "Out")
	f.bind(t, c, "In", x, "Out")
	require.NoError(t, f.g.AddGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))
	recipe := &recordingRecipe{}

	_, err := f.p.Build(context.Background(), c, Options{Recipe: recipe})
	require.ErrorIs(t, err, ErrGroupSplit)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "X", verr.Node)
	assert.Nil(t, recipe.steps)
}

func TestBuild_ValidationFailureStopsPlanning(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, b, c := f.chain(t, stepKind{perItem: true})
	f.g.Unbind(b.ID(), "In")
	recipe := &recordingRecipe{}

	_, err := f.p.Build(context.Background(), c, Options{Recipe: recipe})
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Nil(t, recipe.steps)
}

func TestRoundRobin(t *testing.T) {
	t.Parallel()

	got := roundRobin([][]node.Command{{{"a1"}, {"a2"}, {"a3"}}, {{"b1"}}})
	assert.Equal(t, []node.Command{{"a1"}, {"b1"}, {"a2"}, {"a3"}}, got)
	assert.Nil(t, roundRobin(nil))
}

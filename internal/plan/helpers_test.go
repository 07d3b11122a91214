package plan

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

// readKind stands for a node reading existing data of one packet type.
type readKind struct {
	node.NoHooks
	typ string
}

func (k readKind) Name() string                  { return k.typ + "Read" }
func (readKind) PerItem() bool                   { return false }
func (readKind) ReadsExisting() bool             { return true }
func (readKind) Inputs() []node.InputDef         { return nil }
func (readKind) Attributes() []node.AttributeDef { return nil }
func (k readKind) Outputs() []node.OutputDef     { return []node.OutputDef{{Name: k.typ, Type: k.typ}} }
func (readKind) Execute(*node.Node, node.Packets, bool) ([]node.Command, error) {
	return nil, nil
}

// stepKind turns an image into an image. Split execution emits one
// command per frame, [name, frame].
type stepKind struct {
	perItem   bool
	pre, post bool
	fail      error
}

func (stepKind) Name() string    { return "Step" }
func (k stepKind) PerItem() bool { return k.perItem }
func (stepKind) Inputs() []node.InputDef {
	return []node.InputDef{{Name: "In", Type: "Image", Required: true}}
}
func (stepKind) Outputs() []node.OutputDef {
	return []node.OutputDef{{Name: "Out", Type: "Image", From: "In"}}
}
func (stepKind) Attributes() []node.AttributeDef {
	return []node.AttributeDef{{Name: "flag"}}
}

func (k stepKind) PreProcess(n *node.Node, _ node.Packets) (node.Command, error) {
	if !k.pre {
		return nil, nil
	}
	return node.Command{"mkdir", n.Name()}, nil
}

func (k stepKind) PostProcess(n *node.Node, _ node.Packets) (node.Command, error) {
	if !k.post {
		return nil, nil
	}
	return node.Command{"cleanup", n.Name()}, nil
}

func (k stepKind) Execute(n *node.Node, in node.Packets, split bool) ([]node.Command, error) {
	src := in["In"]
	if src == nil {
		return nil, errors.New("no input")
	}
	if !split || src.Range == nil {
		return []node.Command{{n.Name()}}, nil
	}
	var cmds []node.Command
	for f := src.Range.Start; f <= src.Range.End; f++ {
		cmds = append(cmds, node.Command{n.Name(), strconv.Itoa(f)})
	}
	return cmds, nil
}

func (k stepKind) Validate(*node.Node) error { return k.fail }

type fixture struct {
	g   *dag.DAG
	p   *Planner
	dir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := dag.New(packet.NewTypes())
	return &fixture{g: g, p: New(g), dir: t.TempDir()}
}

func (f *fixture) add(t *testing.T, k node.Kind, name string) *node.Node {
	t.Helper()
	n := node.New(k, name, f.g.Types())
	require.NoError(t, f.g.AddNode(n, false))
	return n
}

func (f *fixture) bind(t *testing.T, consumer *node.Node, input string, provider *node.Node, output string) {
	t.Helper()
	require.NoError(t, f.g.Bind(consumer.ID(), input, provider.ID(), output))
}

// output points an output at <dir>/<file> over frames start..end.
func (f *fixture) output(t *testing.T, n *node.Node, output, file string, start, end int) {
	t.Helper()
	require.NoError(t, n.SetOutputValue(output, "filename", filepath.Join(f.dir, file)))
	require.NoError(t, n.SetOutputRange(output, &node.Range{Start: strconv.Itoa(start), End: strconv.Itoa(end)}))
}

// chain builds A (image read) -> B -> C with every range set to 1-3.
func (f *fixture) chain(t *testing.T, k stepKind) (a, b, c *node.Node) {
	t.Helper()
	a = f.add(t, readKind{typ: "Image"}, "A")
	b = f.add(t, k, "B")
	c = f.add(t, k, "C")
	f.output(t, a, "Image", "a.#.exr", 1, 3)
	f.output(t, b, "Out", "b.#.exr", 1, 3)
	f.output(t, c, "Out", "c.#.exr", 1, 3)
	f.bind(t, b, "In", a, "Image")
	f.bind(t, c, "In", b, "Out")
	require.NoError(t, b.SetInputRange("In", &node.Range{Start: "1", End: "3"}))
	require.NoError(t, c.SetInputRange("In", &node.Range{Start: "1", End: "3"}))
	return a, b, c
}

type recordingRecipe struct {
	steps       []Step
	destination string
	runNow      bool
}

func (r *recordingRecipe) Name() string { return "record" }

func (r *recordingRecipe) Generate(_ context.Context, steps []Step, destination string, runNow bool) error {
	r.steps, r.destination, r.runNow = steps, destination, runNow
	return nil
}

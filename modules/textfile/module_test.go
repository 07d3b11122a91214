package textfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/registry"
)

func TestModule_Register(t *testing.T) {
	t.Parallel()
	r := registry.New()
	(&Module{}).Register(r)
	assert.NoError(t, r.ValidateRegistry(t.Context()))
	_, ok := r.Kind(LsName)
	assert.True(t, ok)
	_, ok = r.Kind(AwkName)
	assert.True(t, ok)
}

func TestLs(t *testing.T) {
	t.Parallel()
	n := node.New(Ls{}, "list", packet.NewTypes())
	require.NoError(t, n.SetOutputValue(port, "filename", "/tmp/listing.txt"))
	require.NoError(t, n.SetAttributeValue("listPath", "/shots"))

	cmds, err := Ls{}.Execute(n, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []node.Command{{"ls", "-la", "/shots", ">", "/tmp/listing.txt"}}, cmds)

	require.NoError(t, n.SetAttributeValue("long", "False"))
	cmds, err = Ls{}.Execute(n, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []node.Command{{"ls", "/shots", ">", "/tmp/listing.txt"}}, cmds)
}

func TestAwk(t *testing.T) {
	t.Parallel()
	n := node.New(Awk{}, "filter", packet.NewTypes())
	require.NoError(t, n.SetOutputValue(port, "filename", "/tmp/exr.txt"))
	require.NoError(t, n.SetAttributeValue("command", "/exr/ {print $9}"))
	in := node.Packets{port: {Type: "TextFile", Filenames: map[string]string{"filename": "/tmp/listing.txt"}}}

	cmds, err := Awk{}.Execute(n, in, false)

	require.NoError(t, err)
	assert.Equal(t, []node.Command{{"awk", "'/exr/ {print $9}'", "/tmp/listing.txt", ">", "/tmp/exr.txt"}}, cmds)
}

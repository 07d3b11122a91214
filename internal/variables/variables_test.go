package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(env map[string]string) *Table {
	t := New()
	t.LookupEnv = func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	return t
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	table := newTestTable(map[string]string{"HOME": "/home/me"})
	require.NoError(t, table.Set("SHOT", "sh010", false))
	require.NoError(t, table.Set("DEPENDS_DIR", "/opt/depends", true))
	require.NoError(t, table.Set("PRICE", `cost \$5`, false))

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"no references", "plain/path.exr", "plain/path.exr"},
		{"workflow variable", "/shots/$SHOT/img.exr", "/shots/sh010/img.exr"},
		{"environment variable", "$$HOME/out", "/home/me/out"},
		{"both kinds", "$$HOME/$SHOT", "/home/me/sh010"},
		{"unresolved workflow variable", "/shots/$MISSING/x", "/shots/$MISSING/x"},
		{"unresolved environment variable", "$$NOPE/x", "$$NOPE/x"},
		{"escaped dollar", `cost \$SHOT`, "cost $SHOT"},
		{"escaped double dollar", `\$$HOME`, "$$HOME"},
		{"lower case is not a name", "$shot", "$shot"},
		{"bare dollar", "a $ b", "a $ b"},
		{"triple dollar is literal", "$$$SHOT", "$$$SHOT"},
		{"read-only variable", "$DEPENDS_DIR/bin", "/opt/depends/bin"},
		{"escape inside a value is kept", "$PRICE", `cost \$5`},
		{"escape next to a value", `\$SHOT=$PRICE`, `$SHOT=cost \$5`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, table.Substitute(tc.in))
		})
	}
}

func TestTable_Env(t *testing.T) {
	t.Setenv("DEPENDS_TEST_ENV", "from-process")

	table := New()
	table.LookupEnv = nil
	v, ok := table.Env("DEPENDS_TEST_ENV")
	require.True(t, ok)
	assert.Equal(t, "from-process", v)
	assert.Equal(t, "from-process/x", table.Substitute("$$DEPENDS_TEST_ENV/x"))

	table = newTestTable(map[string]string{"DEPENDS_TEST_ENV": "stubbed"})
	v, ok = table.Env("DEPENDS_TEST_ENV")
	require.True(t, ok)
	assert.Equal(t, "stubbed", v)
}

func TestPresent(t *testing.T) {
	t.Parallel()

	workflow, env := Present(`$A/$$B/\$C/$D_2/$$$E`)
	assert.Equal(t, []string{"A", "D_2"}, workflow)
	assert.Equal(t, []string{"B"}, env)

	workflow, env = Present("nothing here")
	assert.Empty(t, workflow)
	assert.Empty(t, env)
}

func TestTable_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("add, set, remove", func(t *testing.T) {
		table := New()
		require.NoError(t, table.Add("X"))
		assert.ErrorIs(t, table.Add("X"), ErrExists)

		require.NoError(t, table.Set("X", "1", false))
		v, err := table.Value("X")
		require.NoError(t, err)
		assert.Equal(t, "1", v)

		require.NoError(t, table.Remove("X"))
		_, err = table.Value("X")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, table.Remove("X"), ErrNotFound)
	})

	t.Run("read-only entries are protected", func(t *testing.T) {
		table := New()
		require.NoError(t, table.Set("DIR", "/a", true))
		assert.ErrorIs(t, table.Set("DIR", "/b", false), ErrReadOnly)
		assert.NoError(t, table.Set("DIR", "/a", false))
		assert.ErrorIs(t, table.Remove("DIR"), ErrReadOnly)
	})

	t.Run("changeable list and clone", func(t *testing.T) {
		table := New()
		require.NoError(t, table.Set("B", "2", false))
		require.NoError(t, table.Set("A", "1", false))
		require.NoError(t, table.Set("DIR", "/a", true))

		assert.Equal(t, []Variable{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, table.Changeable())
		assert.Equal(t, []string{"A", "B", "DIR"}, table.Names())

		clone := table.CloneReadOnly()
		assert.Equal(t, []string{"DIR"}, clone.Names())

		table.ClearChangeable()
		assert.Equal(t, []string{"DIR"}, table.Names())
	})
}

func TestValidName(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidName("SHOT_010"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("shot"))
	assert.False(t, ValidName("A-B"))
}

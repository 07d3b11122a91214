package plan

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/node"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	testCases := []struct {
		name    string
		mutate  func(t *testing.T, f *fixture, a, b, c *node.Node)
		wantErr error
	}{
		{
			name:   "valid chain",
			mutate: func(*testing.T, *fixture, *node.Node, *node.Node, *node.Node) {},
		},
		{
			name: "undefined workflow variable",
			mutate: func(t *testing.T, _ *fixture, _, b, _ *node.Node) {
				require.NoError(t, b.SetAttributeValue("flag", "$NOT_SET"))
			},
			wantErr: ErrUndefinedVariable,
		},
		{
			name: "undefined environment variable",
			mutate: func(t *testing.T, f *fixture, _, b, _ *node.Node) {
				f.g.Vars().LookupEnv = func(string) (string, bool) { return "", false }
				require.NoError(t, b.SetAttributeValue("flag", "$$DEPENDS_TEST_NOT_SET"))
			},
			wantErr: ErrUndefinedEnv,
		},
		{
			name: "defined variables pass",
			mutate: func(t *testing.T, f *fixture, _, b, _ *node.Node) {
				require.NoError(t, f.g.Vars().Set("LAST", "3", false))
				require.NoError(t, b.SetOutputRange("Out", &node.Range{Start: "1", End: "$LAST"}))
			},
		},
		{
			name: "missing required input",
			mutate: func(_ *testing.T, f *fixture, _, b, _ *node.Node) {
				f.g.Unbind(b.ID(), "In")
			},
			wantErr: ErrMissingInput,
		},
		{
			name: "input range exceeds upstream",
			mutate: func(t *testing.T, _ *fixture, _, b, _ *node.Node) {
				require.NoError(t, b.SetInputRange("In", &node.Range{Start: "0", End: "3"}))
			},
			wantErr: ErrRangeExceeded,
		},
		{
			name: "non numeric range",
			mutate: func(t *testing.T, _ *fixture, _, b, _ *node.Node) {
				require.NoError(t, b.SetInputRange("In", &node.Range{Start: "one", End: "3"}))
			},
			wantErr: ErrBadRange,
		},
		{
			name: "frame symbols without range",
			mutate: func(t *testing.T, _ *fixture, _, _, c *node.Node) {
				require.NoError(t, c.SetOutputRange("Out", nil))
			},
			wantErr: ErrFrameRangeMissing,
		},
		{
			name: "output directory missing",
			mutate: func(t *testing.T, f *fixture, _, _, c *node.Node) {
				require.NoError(t, c.SetOutputValue("Out", "filename", filepath.Join(f.dir, "missing", "c.#.exr")))
			},
			wantErr: ErrOutputDir,
		},
		{
			name: "incompatible packet type",
			mutate: func(t *testing.T, f *fixture, _, b, _ *node.Node) {
				cloud := f.add(t, readKind{typ: "Pointcloud"}, "Cloud")
				f.bind(t, b, "In", cloud, "Pointcloud")
			},
			wantErr: ErrTypeMismatch,
		},
		{
			name: "subtype is accepted",
			mutate: func(t *testing.T, f *fixture, _, b, _ *node.Node) {
				probe := f.add(t, readKind{typ: "Lightprobe"}, "Probe")
				f.output(t, probe, "Lightprobe", "p.#.exr", 1, 3)
				f.bind(t, b, "In", probe, "Lightprobe")
			},
		},
		{
			name: "grouped node with trimmed range",
			mutate: func(t *testing.T, f *fixture, _, b, c *node.Node) {
				require.NoError(t, f.g.AddGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))
				require.NoError(t, b.SetInputRange("In", &node.Range{Start: "2", End: "3"}))
			},
			wantErr: ErrRangeMismatch,
		},
		{
			name: "group ranges differ",
			mutate: func(t *testing.T, f *fixture, _, b, c *node.Node) {
				require.NoError(t, f.g.AddGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))
				require.NoError(t, c.SetInputRange("In", nil))
				require.NoError(t, c.SetOutputRange("Out", &node.Range{Start: "1", End: "2"}))
			},
			wantErr: ErrGroupRangeMismatch,
		},
		{
			name: "group member cannot run per item",
			mutate: func(t *testing.T, f *fixture, a, b, _ *node.Node) {
				require.NoError(t, f.g.LoadGroup("grp1", []uuid.UUID{a.ID(), b.ID()}))
			},
			wantErr: ErrGroupNotPerItem,
		},
		{
			name: "node in two groups",
			mutate: func(t *testing.T, f *fixture, _, b, c *node.Node) {
				require.NoError(t, f.g.LoadGroup("grp1", []uuid.UUID{b.ID(), c.ID()}))
				require.NoError(t, f.g.LoadGroup("grp2", []uuid.UUID{c.ID()}))
			},
			wantErr: ErrMultipleGroups,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			a, b, c := f.chain(t, stepKind{perItem: true})
			tc.mutate(t, f, a, b, c)

			err := f.p.Validate(ctx, []*node.Node{a, b, c})
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Node)
		})
	}
}

func TestValidate_EnvWithoutLookup(t *testing.T) {
	t.Setenv("DEPENDS_TEST_ENV", "/scratch")

	f := newFixture(t)
	a, b, c := f.chain(t, stepKind{perItem: true})
	f.g.Vars().LookupEnv = nil

	require.NoError(t, b.SetAttributeValue("flag", "$$DEPENDS_TEST_ENV"))
	assert.NoError(t, f.p.Validate(context.Background(), []*node.Node{a, b, c}))

	require.NoError(t, b.SetAttributeValue("flag", "$$DEPENDS_TEST_NOT_SET_ANYWHERE"))
	assert.ErrorIs(t, f.p.Validate(context.Background(), []*node.Node{a, b, c}), ErrUndefinedEnv)
}

func TestValidate_KindCheck(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	boom := errors.New("radius must be positive")
	a, b, c := f.chain(t, stepKind{fail: boom})

	err := f.p.Validate(context.Background(), []*node.Node{a, b, c})
	assert.ErrorIs(t, err, ErrKindValidation)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "node B: kind validation failed: radius must be positive")
}

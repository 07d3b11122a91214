package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/plan"
	"github.com/vk/depends/internal/registry"
	"github.com/vk/depends/internal/testutil"
	"github.com/vk/depends/modules/colorspaceapply"
	"github.com/vk/depends/modules/textfile"
)

// TestErrorHandling_ValidationFailsPlan checks that an invalid node aborts
// planning before anything reaches the recipe.
func TestErrorHandling_ValidationFailsPlan(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		build    func(b *testutil.Builder)
		wantErr  error
		wantNode string
	}{
		{
			name: "undefined variable",
			build: func(b *testutil.Builder) {
				ls := b.Node(textfile.LsName, "List")
				b.Output(ls, "File", "filename", "$SHOT_DIR/listing.txt")
			},
			wantErr:  plan.ErrUndefinedVariable,
			wantNode: "List",
		},
		{
			name: "required input not connected",
			build: func(b *testutil.Builder) {
				awk := b.Node(textfile.AwkName, "Count")
				b.Output(awk, "File", "filename", "count.txt")
			},
			wantErr:  plan.ErrMissingInput,
			wantNode: "Count",
		},
		{
			name: "output directory missing",
			build: func(b *testutil.Builder) {
				ls := b.Node(textfile.LsName, "List")
				b.Output(ls, "File", "filename", "missing/listing.txt")
			},
			wantErr:  plan.ErrOutputDir,
			wantNode: "List",
		},
		{
			name: "frame symbols without a range",
			build: func(b *testutil.Builder) {
				ls := b.Node(textfile.LsName, "List")
				b.Output(ls, "File", "filename", "listing.#.txt")
			},
			wantErr:  plan.ErrFrameRangeMissing,
			wantNode: "List",
		},
		{
			name: "kind rejects its settings",
			build: func(b *testutil.Builder) {
				plate := b.Node(registry.ReadKindName("Image"), "Plate")
				grade := b.Node(colorspaceapply.KindName, "Grade")
				b.Output(plate, "Image", "filename", "plate.exr")
				b.Output(grade, "ImageTypes", "filename", "graded.exr")
				b.Link(plate, "Image", grade, "ImageTypes")
			},
			wantErr:  plan.ErrKindValidation,
			wantNode: "Grade",
		},
		{
			name: "upstream node is checked too",
			build: func(b *testutil.Builder) {
				ls := b.Node(textfile.LsName, "List")
				awk := b.Node(textfile.AwkName, "Count")
				b.Output(ls, "File", "filename", "$$DEPENDS_TEST_UNSET_ENV/listing.txt")
				b.Output(awk, "File", "filename", "count.txt")
				b.Link(ls, "File", awk, "File")
			},
			wantErr:  plan.ErrUndefinedEnv,
			wantNode: "List",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, testutil.Scenario{
				Modules: []registry.Module{&textfile.Module{}, &colorspaceapply.Module{}},
				Build:   tc.build,
			})

			require.Error(t, result.Err)
			assert.ErrorIs(t, result.Err, tc.wantErr)
			var verr *plan.ValidationError
			require.True(t, errors.As(result.Err, &verr), "got %v", result.Err)
			assert.Equal(t, tc.wantNode, verr.Node)
			assert.Empty(t, result.Plan)
		})
	}
}

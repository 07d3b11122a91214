package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/testutil"
)

// TestErrorHandling_InvalidManifest_IsRejected checks that manifests which
// cannot be parsed or do not add up stop the app at startup.
func TestErrorHandling_InvalidManifest_IsRejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{
			name: "syntax error",
			manifest: `
				kind "Blur" {
					per_item = true
				// Missing closing brace here
			`,
			wantErr: "failed to parse",
		},
		{
			name: "unknown packet type",
			manifest: `
				kind "Blur" {
					input "Source" {
						type = "Volume"
					}
				}
			`,
			wantErr: "kind 'Blur', input 'Source': unknown packet type 'Volume'",
		},
		{
			name: "output derived from an undeclared input",
			manifest: `
				kind "Blur" {
					output "Result" {
						type = "Image"
						from = "Source"
					}
				}
			`,
			wantErr: "registry validation failed",
		},
		{
			name: "template references an undeclared attribute",
			manifest: `
				kind "Blur" {
					command = ["blur", attr.radius]
				}
			`,
			wantErr: `reference to undeclared attr "radius"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, testutil.Scenario{
				Files: map[string]string{"manifests/blur.hcl": tc.manifest},
			})

			require.Error(t, result.Err)
			assert.Nil(t, result.App)
			assert.Contains(t, result.Err.Error(), "application startup panicked")
			assert.Contains(t, result.Err.Error(), tc.wantErr)
		})
	}
}

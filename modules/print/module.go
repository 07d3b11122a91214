// Package print provides the "print" recipe, which writes a plan as
// commented shell lines to a writer, stdout by default.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/plan"
	"github.com/vk/depends/internal/registry"
)

const RecipeName = "print"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the plan. Nil means os.Stdout.
	Out io.Writer
}

// Recipe writes every step it is given. It ignores the destination and
// never runs anything.
type Recipe struct {
	out io.Writer
}

func NewRecipe(out io.Writer) *Recipe {
	if out == nil {
		out = os.Stdout
	}
	return &Recipe{out: out}
}

func (r *Recipe) Name() string { return RecipeName }

func (r *Recipe) Generate(ctx context.Context, steps []plan.Step, _ string, runNow bool) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Printing plan", "steps", len(steps))
	if runNow {
		logger.Warn("The print recipe cannot run a plan, printing only.")
	}
	return WriteSteps(r.out, steps)
}

// WriteSteps writes each non-empty step as a comment naming its label
// followed by the command line.
func WriteSteps(w io.Writer, steps []plan.Step) error {
	for _, s := range steps {
		if len(s.Command) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "# Node '%s' generated the following line...\n%s\n\n", s.Label, strings.Join(s.Command, " ")); err != nil {
			return err
		}
	}
	return nil
}

// Register registers the recipe with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRecipe(NewRecipe(m.Out))
}

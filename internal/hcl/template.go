package hcl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/depends/internal/config"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// functions are available to every command template.
var functions = map[string]function.Function{
	"concat": stdlib.ConcatFunc,
	"format": stdlib.FormatFunc,
	"join":   stdlib.JoinFunc,
	"lower":  stdlib.LowerFunc,
	"upper":  stdlib.UpperFunc,
}

// exprTemplate is a command template backed by an HCL expression that must
// evaluate to a list of strings, or null for no command.
type exprTemplate struct {
	kind string
	expr hcl.Expression
}

var _ config.Template = (*exprTemplate)(nil)

func (t *exprTemplate) Render(ctx context.Context, scope *config.Scope) ([]string, error) {
	evalCtx := &hcl.EvalContext{
		Variables: scopeVariables(scope),
		Functions: functions,
	}
	val, diags := t.expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("kind %s: %w", t.kind, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	var out []string
	if err := decode(ctx, val, &out); err != nil {
		return nil, fmt.Errorf("kind %s: command: %w", t.kind, err)
	}
	return out, nil
}

// decode converts val to the cty type implied by goVal and stores it there.
func decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, goVal)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(converted, goVal)
}

var rangeType = cty.Object(map[string]cty.Type{"start": cty.Number, "end": cty.Number})

func scopeVariables(s *config.Scope) map[string]cty.Value {
	vars := map[string]cty.Value{
		"attr":   stringObject(s.Attributes),
		"input":  nestedObject(s.Inputs),
		"output": nestedObject(s.Outputs),
		"range":  cty.NullVal(rangeType),
		"frame":  cty.NullVal(cty.Number),
	}
	if s.Range != nil {
		vars["range"] = cty.ObjectVal(map[string]cty.Value{
			"start": cty.NumberIntVal(int64(s.Range.Start)),
			"end":   cty.NumberIntVal(int64(s.Range.End)),
		})
	}
	if s.Frame != nil {
		vars["frame"] = cty.NumberIntVal(int64(*s.Frame))
	}
	return vars
}

func stringObject(m map[string]string) cty.Value {
	attrs := make(map[string]cty.Value, len(m))
	for k, v := range m {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}

func nestedObject(m map[string]map[string]string) cty.Value {
	attrs := make(map[string]cty.Value, len(m))
	for k, v := range m {
		attrs[k] = stringObject(v)
	}
	return cty.ObjectVal(attrs)
}

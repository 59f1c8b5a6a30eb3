package genx

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// InvokeFunc is the body of a tool. C is the per-run context the caller
// passes to Agent.Run; A is the decoded tool argument.
type InvokeFunc[C, A any] func(ctx context.Context, cc C, arg A) (any, error)

// FuncTool is a function the model may call. The argument schema is
// derived from the Go argument type.
type FuncTool[C any] struct {
	Name        string
	Description string
	Argument    *jsonschema.Schema

	invoke func(ctx context.Context, cc C, args string) (any, error)
}

// ToolOption customizes schema generation for a FuncTool.
type ToolOption func(*jsonschema.ForOptions)

// WithSchema overrides the schema generated for values of type T.
func WithSchema[T any](s *jsonschema.Schema) ToolOption {
	return func(o *jsonschema.ForOptions) {
		if o.TypeSchemas == nil {
			o.TypeSchemas = make(map[reflect.Type]*jsonschema.Schema)
		}
		o.TypeSchemas[reflect.TypeFor[T]()] = s
	}
}

func NewFuncTool[C, A any](name, description string, fn InvokeFunc[C, A], opts ...ToolOption) (*FuncTool[C], error) {
	var fo jsonschema.ForOptions
	for _, opt := range opts {
		opt(&fo)
	}
	arg, err := jsonschema.For[A](&fo)
	if err != nil {
		return nil, fmt.Errorf("genx: schema for tool %s: %w", name, err)
	}
	return &FuncTool[C]{
		Name:        name,
		Description: description,
		Argument:    arg,
		invoke: func(ctx context.Context, cc C, args string) (any, error) {
			var v A
			if args != "" {
				if err := unmarshalJSON([]byte(args), &v); err != nil {
					return nil, fmt.Errorf("unmarshal %q error: %w", args, err)
				}
			}
			return fn(ctx, cc, v)
		},
	}, nil
}

func MustNewFuncTool[C, A any](name, description string, fn InvokeFunc[C, A], opts ...ToolOption) *FuncTool[C] {
	tool, err := NewFuncTool(name, description, fn, opts...)
	if err != nil {
		panic(err)
	}
	return tool
}

// Invoke decodes args and runs the tool.
func (t *FuncTool[C]) Invoke(ctx context.Context, cc C, args string) (any, error) {
	return t.invoke(ctx, cc, args)
}

func (t *FuncTool[C]) Spec() Spec {
	return Spec{Name: t.Name, Description: t.Description, Schema: t.Argument}
}

// OutputOf builds a structured output Spec from the Go type T.
func OutputOf[T any](name, description string) (*Spec, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("genx: schema for output %s: %w", name, err)
	}
	return &Spec{Name: name, Description: description, Schema: s}, nil
}

func MustOutputOf[T any](name, description string) *Spec {
	s, err := OutputOf[T](name, description)
	if err != nil {
		panic(err)
	}
	return s
}

// toolResultString renders a tool return value for the model.
func toolResultString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

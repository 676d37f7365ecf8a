package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ToolCall is the wire shape the Intent Source emits:
// {"tool_name": "add_card", "args": {...}}.
type ToolCall struct {
	ToolName string         `json:"tool_name" yaml:"tool_name" mapstructure:"tool_name"`
	Args     map[string]any `json:"args" yaml:"args" mapstructure:"args"`
}

type addArgs struct {
	Name     string `mapstructure:"name"`
	Color    string `mapstructure:"color"`
	Quantity *int   `mapstructure:"quantity"`
}

type removeArgs struct {
	Name      string `mapstructure:"name"`
	Quantity  *int   `mapstructure:"quantity"`
	RemoveAll bool   `mapstructure:"remove_all"`
}

// updateArgs accepts both the declared parameter names (new_color,
// new_quantity) and the short keys the tool echoes back (color, quantity).
type updateArgs struct {
	Name        string  `mapstructure:"name"`
	NewColor    *string `mapstructure:"new_color"`
	NewQuantity *int    `mapstructure:"new_quantity"`
	Color       *string `mapstructure:"color"`
	Quantity    *int    `mapstructure:"quantity"`
}

// DecodeToolCall converts a wire tool call into an Intent.
// Unknown tool names yield an UnrecognizedIntent; argument errors yield a
// MalformedIntent together with the error, so the caller can still record
// an outcome for the call.
func DecodeToolCall(call ToolCall) (Intent, error) {
	switch IntentKind(call.ToolName) {
	case KindAdd:
		var args addArgs
		if err := decodeArgs(call.Args, &args); err != nil {
			return malformed(call, err)
		}
		intent := AddItem{Name: args.Name, Color: args.Color, Quantity: intOr(args.Quantity, 1)}
		if err := intent.Validate(); err != nil {
			return malformed(call, err)
		}
		return intent, nil

	case KindRemove:
		var args removeArgs
		if err := decodeArgs(call.Args, &args); err != nil {
			return malformed(call, err)
		}
		intent := RemoveItem{Name: args.Name, Quantity: intOr(args.Quantity, 1), RemoveAll: args.RemoveAll}
		if err := intent.Validate(); err != nil {
			return malformed(call, err)
		}
		return intent, nil

	case KindUpdate:
		var args updateArgs
		if err := decodeArgs(call.Args, &args); err != nil {
			return malformed(call, err)
		}
		intent := UpdateItem{Name: args.Name, NewColor: args.NewColor, NewQuantity: args.NewQuantity}
		if intent.NewColor == nil {
			intent.NewColor = args.Color
		}
		if intent.NewQuantity == nil {
			intent.NewQuantity = args.Quantity
		}
		// An empty color means "leave unchanged".
		if intent.NewColor != nil && *intent.NewColor == "" {
			intent.NewColor = nil
		}
		if err := intent.Validate(); err != nil {
			return malformed(call, err)
		}
		return intent, nil

	default:
		return UnrecognizedIntent{ToolName: call.ToolName, Args: call.Args}, nil
	}
}

// DecodeToolCalls decodes calls in order. Every call produces exactly one
// intent, so outcomes line up with the emitted calls.
func DecodeToolCalls(calls []ToolCall) []Intent {
	intents := make([]Intent, 0, len(calls))
	for _, call := range calls {
		intent, _ := DecodeToolCall(call)
		intents = append(intents, intent)
	}
	return intents
}

// EncodeIntent converts an intent back into its wire form.
func EncodeIntent(intent Intent) ToolCall {
	switch i := intent.(type) {
	case AddItem:
		return ToolCall{ToolName: string(KindAdd), Args: map[string]any{
			"name": i.Name, "color": i.Color, "quantity": i.Quantity,
		}}
	case RemoveItem:
		return ToolCall{ToolName: string(KindRemove), Args: map[string]any{
			"name": i.Name, "quantity": i.Quantity, "remove_all": i.RemoveAll,
		}}
	case UpdateItem:
		args := map[string]any{"name": i.Name}
		if i.NewColor != nil {
			args["new_color"] = *i.NewColor
		}
		if i.NewQuantity != nil {
			args["new_quantity"] = *i.NewQuantity
		}
		return ToolCall{ToolName: string(KindUpdate), Args: args}
	case UnrecognizedIntent:
		return ToolCall{ToolName: i.ToolName, Args: i.Args}
	case MalformedIntent:
		return ToolCall{ToolName: i.ToolName}
	default:
		return ToolCall{}
	}
}

func decodeArgs(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	return nil
}

func malformed(call ToolCall, err error) (Intent, error) {
	return MalformedIntent{ToolName: call.ToolName, Err: err}, err
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

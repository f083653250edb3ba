package types

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-framework/types/basetypes"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
)

// Felt is a string attribute holding a Starknet field element.
type Felt struct {
	state attr.ValueState

	*felt.Felt
}

var (
	_ basetypes.StringValuable = (*Felt)(nil)
)

func NewFeltValue(v *felt.Felt) Felt {
	if v == nil {
		return NewFeltNull()
	}
	return Felt{state: attr.ValueStateKnown, Felt: v}
}

func NewFeltNull() Felt {
	return Felt{state: attr.ValueStateNull}
}

func NewFeltUnknown() Felt {
	return Felt{state: attr.ValueStateUnknown}
}

func (f Felt) Type(context.Context) attr.Type {
	return FeltType{}
}

func (f Felt) Equal(o attr.Value) bool {
	other, ok := o.(Felt)

	if !ok {
		return false
	}

	if f.state != other.state {
		return false
	}

	if f.state != attr.ValueStateKnown {
		return true
	}

	return f.Felt.Equal(other.Felt)
}

func (f Felt) ToTerraformValue(ctx context.Context) (tftypes.Value, error) {
	t := FeltType{}.TerraformType(ctx)

	switch f.state {
	case attr.ValueStateKnown:
		return tftypes.NewValue(t, f.Felt.String()), nil
	case attr.ValueStateNull:
		return tftypes.NewValue(t, nil), nil
	case attr.ValueStateUnknown:
		return tftypes.NewValue(t, tftypes.UnknownValue), nil
	default:
		panic(fmt.Sprintf("unhandled Felt state in ToTerraformValue: %s", f.state))
	}
}

func (f Felt) IsNull() bool {
	return f.state == attr.ValueStateNull
}

func (f Felt) IsUnknown() bool {
	return f.state == attr.ValueStateUnknown
}

func (f Felt) String() string {
	switch f.state {
	case attr.ValueStateNull:
		return attr.NullValueString
	case attr.ValueStateUnknown:
		return attr.UnknownValueString
	}
	return f.Felt.String()
}

// ValueFelt returns the field element, nil unless the value is known.
func (f Felt) ValueFelt() *felt.Felt {
	if f.state != attr.ValueStateKnown {
		return nil
	}
	return f.Felt
}

func (f Felt) ToStringValue(ctx context.Context) (basetypes.StringValue, diag.Diagnostics) {
	switch f.state {
	case attr.ValueStateKnown:
		return types.StringValue(f.Felt.String()), nil
	case attr.ValueStateNull:
		return types.StringNull(), nil
	case attr.ValueStateUnknown:
		return types.StringUnknown(), nil
	default:
		return types.StringUnknown(), diag.Diagnostics{
			diag.NewErrorDiagnostic(fmt.Sprintf("unhandled Felt state in ToStringValue: %s", f.state), ""),
		}
	}
}

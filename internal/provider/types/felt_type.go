package types

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types/basetypes"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
)

type FeltType struct {
	basetypes.StringType
}

var (
	_ basetypes.StringTypable = (*FeltType)(nil)
)

// String implements basetypes.StringTypable.
func (t FeltType) String() string {
	return "starknet.Felt"
}

// ValueType implements basetypes.StringTypable.
func (t FeltType) ValueType(context.Context) attr.Value {
	return Felt{}
}

// Equal returns true if the given type is equivalent.
func (t FeltType) Equal(o attr.Type) bool {
	_, ok := o.(FeltType)
	return ok
}

// TerraformType implements basetypes.StringTypable.
func (t FeltType) TerraformType(ctx context.Context) tftypes.Type {
	return tftypes.String
}

func parseFelt(s string) (*felt.Felt, error) {
	return new(felt.Felt).SetString(s)
}

// ValueFromString implements basetypes.StringTypable.
func (t FeltType) ValueFromString(_ context.Context, in basetypes.StringValue) (basetypes.StringValuable, diag.Diagnostics) {
	if in.IsUnknown() {
		return NewFeltUnknown(), nil
	}

	if in.IsNull() {
		return NewFeltNull(), nil
	}

	value, err := parseFelt(in.ValueString())
	if err != nil {
		var diags diag.Diagnostics
		diags.AddError("Failed to convert string to Felt", err.Error())
		return nil, diags
	}

	return NewFeltValue(value), nil
}

// ValueFromTerraform returns a Value given a tftypes.Value.
func (t FeltType) ValueFromTerraform(ctx context.Context, in tftypes.Value) (attr.Value, error) {
	if !in.IsKnown() {
		return NewFeltUnknown(), nil
	}

	if in.IsNull() {
		return NewFeltNull(), nil
	}

	var s string
	if err := in.As(&s); err != nil {
		return nil, err
	}

	v, err := parseFelt(s)
	if err != nil {
		return nil, err
	}

	return NewFeltValue(v), nil
}

// ApplyTerraform5AttributePathStep implements basetypes.StringTypable.
func (t FeltType) ApplyTerraform5AttributePathStep(step tftypes.AttributePathStep) (interface{}, error) {
	return nil, fmt.Errorf("cannot apply AttributePathStep %T to %s", step, t.String())
}

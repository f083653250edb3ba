// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/booldefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/boolplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/listplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	framework_types "github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/baitcode/starknet-deploy/internal/provider/types"
	"github.com/baitcode/starknet-deploy/internal/starknet"
)

// Contract not found, as reported by starknet_getClassHashAt.
const rpcContractNotFound = 20

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &DeployResource{}
var _ resource.ResourceWithConfigure = &DeployResource{}
var _ resource.ResourceWithImportState = &DeployResource{}

func NewDeployResource() resource.Resource {
	return &DeployResource{}
}

// DeployResource deploys a declared class through the Universal Deployer.
type DeployResource struct {
	client *starknet.Client
}

// DeployResourceModel describes the resource data model.
type DeployResourceModel struct {
	Id                  framework_types.String `tfsdk:"id"`
	ClassHash           types.Felt             `tfsdk:"class_hash"`
	ConstructorCalldata framework_types.List   `tfsdk:"constructor_calldata"`
	Salt                types.Felt             `tfsdk:"salt"`
	Unique              framework_types.Bool   `tfsdk:"unique"`
	Address             types.Felt             `tfsdk:"address"`
	TransactionHash     framework_types.String `tfsdk:"transaction_hash"`
}

func (r *DeployResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_deploy"
}

func (r *DeployResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Deploys a declared class with the Universal Deployer Contract.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Deployed contract address",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"class_hash": schema.StringAttribute{
				CustomType:          types.FeltType{},
				Required:            true,
				MarkdownDescription: "Class hash of a declared class",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"constructor_calldata": schema.ListAttribute{
				ElementType:         framework_types.StringType,
				Optional:            true,
				MarkdownDescription: "Constructor arguments as felts",
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
			},
			"salt": schema.StringAttribute{
				CustomType:          types.FeltType{},
				Optional:            true,
				Computed:            true,
				MarkdownDescription: "Deployment salt, random when omitted",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
					stringplanmodifier.RequiresReplaceIfConfigured(),
				},
			},
			"unique": schema.BoolAttribute{
				Optional:            true,
				Computed:            true,
				Default:             booldefault.StaticBool(true),
				MarkdownDescription: "Mix the deployer address into the salt",
				PlanModifiers: []planmodifier.Bool{
					boolplanmodifier.RequiresReplace(),
				},
			},
			"address": schema.StringAttribute{
				CustomType:          types.FeltType{},
				Computed:            true,
				MarkdownDescription: "Deployed contract address",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"transaction_hash": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Deploy transaction hash",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *DeployResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	data, err := providerData(req.ProviderData)
	if err != nil {
		resp.Diagnostics.AddError("Unexpected Resource Configure Type", err.Error())
		return
	}

	r.client = data.client
}

func (m DeployResourceModel) calldata(ctx context.Context) ([]*felt.Felt, error) {
	var raw []string
	if !m.ConstructorCalldata.IsNull() && !m.ConstructorCalldata.IsUnknown() {
		if diags := m.ConstructorCalldata.ElementsAs(ctx, &raw, false); diags.HasError() {
			return nil, fmt.Errorf("constructor_calldata: %v", diags)
		}
	}

	calldata := make([]*felt.Felt, 0, len(raw))
	for i, s := range raw {
		f, err := utils.HexToFelt(s)
		if err != nil {
			return nil, fmt.Errorf("constructor_calldata[%d]: %w", i, err)
		}
		calldata = append(calldata, f)
	}
	return calldata, nil
}

func (r *DeployResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data DeployResourceModel

	// Read Terraform plan data into the model
	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	calldata, err := data.calldata(ctx)
	if err != nil {
		resp.Diagnostics.AddAttributeError(path.Root("constructor_calldata"), "Invalid calldata", err.Error())
		return
	}

	result, err := r.client.Deploy(ctx, starknet.DeployRequest{
		ClassHash: data.ClassHash.ValueFelt(),
		Salt:      data.Salt.ValueFelt(),
		Unique:    data.Unique.ValueBool(),
		Calldata:  calldata,
	})
	if err != nil {
		resp.Diagnostics.AddError(
			"Can't deploy contract",
			fmt.Sprintf("Failed with error: %s", err),
		)
		return
	}

	if err := r.client.WaitForTransaction(ctx, result.TransactionHash); err != nil {
		resp.Diagnostics.AddError(
			"Transaction failed",
			fmt.Sprintf("Unable to deploy contract, got error: %s", err),
		)
		return
	}

	data.Salt = types.NewFeltValue(result.Salt)
	data.Address = types.NewFeltValue(result.Address)
	data.Id = framework_types.StringValue(result.Address.String())
	data.TransactionHash = framework_types.StringValue(result.TransactionHash.String())

	tflog.Trace(ctx, "deployed a contract", map[string]interface{}{
		"address":    result.Address.String(),
		"class_hash": data.ClassHash.String(),
	})

	// Save data into Terraform state
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DeployResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data DeployResourceModel

	// Read Terraform prior state data into the model
	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	address := data.Address.ValueFelt()
	if address == nil {
		// Imported by id only.
		f, err := utils.HexToFelt(data.Id.ValueString())
		if err != nil {
			resp.Diagnostics.AddAttributeError(path.Root("id"), "Invalid contract address", err.Error())
			return
		}
		address = f
		data.Address = types.NewFeltValue(f)
	}

	classHash, err := r.client.ClassHashAt(ctx, address)
	if err != nil {
		var rpcErr *rpc.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == rpcContractNotFound {
			tflog.Warn(ctx, "contract not found, removing from state", map[string]interface{}{
				"address": address.String(),
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError(
			"Client Error",
			fmt.Sprintf("Error reading contract %s class hash: %s", address.String(), err),
		)
		return
	}

	data.ClassHash = types.NewFeltValue(classHash)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DeployResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data DeployResourceModel

	// Every input requires replacement, so only computed values can differ.
	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DeployResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data DeployResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Warn(ctx, "contracts cannot be removed from chain, removing from state only", map[string]interface{}{
		"address": data.Address.String(),
	})
}

func (r *DeployResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
}

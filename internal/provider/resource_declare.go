// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	framework_types "github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/baitcode/starknet-deploy/internal/artifact"
	"github.com/baitcode/starknet-deploy/internal/provider/types"
	"github.com/baitcode/starknet-deploy/internal/starknet"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &DeclareResource{}
var _ resource.ResourceWithConfigure = &DeclareResource{}
var _ resource.ResourceWithImportState = &DeclareResource{}

func NewDeclareResource() resource.Resource {
	return &DeclareResource{}
}

// DeclareResource declares a compiled contract class.
type DeclareResource struct {
	client *starknet.Client
}

// DeclareResourceModel describes the resource data model.
type DeclareResourceModel struct {
	Id              framework_types.String `tfsdk:"id"`
	Casm            framework_types.String `tfsdk:"compiled_casm"`
	File            framework_types.String `tfsdk:"compiled_class"`
	ClassHash       types.Felt             `tfsdk:"class_hash"`
	TransactionHash framework_types.String `tfsdk:"transaction_hash"`
}

func (r *DeclareResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_declare"
}

func (r *DeclareResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Declares a compiled Cairo contract class. Classes cannot be undeclared, " +
			"destroying the resource only removes it from state.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Class hash of the declared class",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"compiled_casm": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "Contract casm class path",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"compiled_class": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "Contract file class path",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"class_hash": schema.StringAttribute{
				CustomType:          types.FeltType{},
				Computed:            true,
				MarkdownDescription: "ClassHash for contract",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"transaction_hash": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Declare transaction hash, null when the class was already declared",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *DeclareResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
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

func (r *DeclareResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data DeclareResourceModel

	// Read Terraform plan data into the model
	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	pair, err := artifact.LoadFiles(data.File.ValueString(), data.Casm.ValueString())
	if err != nil {
		resp.Diagnostics.AddError(
			"Can't read compiled class.",
			fmt.Sprintf("Unable to declare contract, got error: %s", err),
		)
		return
	}

	result, err := r.client.Declare(ctx, pair)
	if err != nil {
		resp.Diagnostics.AddError(
			"Can't declare contract",
			fmt.Sprintf("Failed with error: %s", err),
		)
		return
	}

	data.TransactionHash = framework_types.StringNull()
	if !result.AlreadyDeclared() {
		if err := r.client.WaitForTransaction(ctx, result.TransactionHash); err != nil {
			resp.Diagnostics.AddError(
				"Transaction failed",
				fmt.Sprintf("Unable to declare contract, got error: %s", err),
			)
			return
		}
		data.TransactionHash = framework_types.StringValue(result.TransactionHash.String())
	}

	data.ClassHash = types.NewFeltValue(result.ClassHash)
	data.Id = framework_types.StringValue(result.ClassHash.String())

	tflog.Trace(ctx, "declared a class", map[string]interface{}{
		"class_hash": result.ClassHash.String(),
	})

	// Save data into Terraform state
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DeclareResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data DeclareResourceModel

	// Read Terraform prior state data into the model
	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	// Declared classes are permanent, state is authoritative.
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DeclareResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data DeclareResourceModel

	// Every input requires replacement, so only computed values can differ.
	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DeclareResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data DeclareResourceModel

	// Read Terraform prior state data into the model
	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Warn(ctx, "declared classes stay on chain, removing from state only", map[string]interface{}{
		"class_hash": data.ClassHash.String(),
	})
}

func (r *DeclareResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
}

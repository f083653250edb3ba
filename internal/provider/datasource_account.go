// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"

	"github.com/baitcode/starknet-deploy/internal/provider/types"
	"github.com/baitcode/starknet-deploy/internal/starknet"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &AccountDataSource{}
var _ datasource.DataSourceWithConfigure = &AccountDataSource{}

func NewAccountDataSource() datasource.DataSource {
	return &AccountDataSource{}
}

// AccountDataSource exposes the account the provider signs with.
type AccountDataSource struct {
	client  *starknet.Client
	address *felt.Felt
}

// AccountDataSourceModel describes the data source data model.
type AccountDataSourceModel struct {
	Address   types.Felt `tfsdk:"address"`
	ClassHash types.Felt `tfsdk:"class_hash"`
}

func (d *AccountDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_account"
}

func (d *AccountDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Starknet account the provider signs with",

		Attributes: map[string]schema.Attribute{
			"address": schema.StringAttribute{
				CustomType:          types.FeltType{},
				MarkdownDescription: "Account address",
				Computed:            true,
			},
			"class_hash": schema.StringAttribute{
				CustomType:          types.FeltType{},
				MarkdownDescription: "Class hash of the account contract",
				Computed:            true,
			},
		},
	}
}

func (d *AccountDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	data, err := providerData(req.ProviderData)
	if err != nil {
		resp.Diagnostics.AddError("Unexpected Data Source Configure Type", err.Error())
		return
	}

	d.client = data.client
	d.address = data.address
}

func (d *AccountDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data AccountDataSourceModel

	// Read Terraform configuration data into the model
	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	classHash, err := d.client.ClassHashAt(ctx, d.address)
	if err != nil {
		resp.Diagnostics.AddError(
			"Client Error",
			fmt.Sprintf("Error reading account %s class hash: %s", d.address.String(), err),
		)
		return
	}

	data.Address = types.NewFeltValue(d.address)
	data.ClassHash = types.NewFeltValue(classHash)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

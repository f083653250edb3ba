// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/spf13/viper"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/function"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/baitcode/starknet-deploy/internal/account"
	"github.com/baitcode/starknet-deploy/internal/config"
	"github.com/baitcode/starknet-deploy/internal/starknet"
)

// Ensure StarknetProvider satisfies various provider interfaces.
var _ provider.Provider = &StarknetProvider{}
var _ provider.ProviderWithFunctions = &StarknetProvider{}

// StarknetProvider defines the provider implementation.
type StarknetProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// StarknetProviderModel describes the provider data model.
type StarknetProviderModel struct {
	RpcEndpoint    types.String `tfsdk:"rpc_endpoint"`
	ChainId        types.String `tfsdk:"chain_id"`
	AccountAddress types.String `tfsdk:"account_address"`
	PrivateKey     types.String `tfsdk:"private_key"`
	CairoVersion   types.Int64  `tfsdk:"cairo_version"`
}

type ProviderData struct {
	client  *starknet.Client
	address *felt.Felt
}

func (p *StarknetProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "starknet"
	resp.Version = p.version
}

func (p *StarknetProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Declares and deploys Starknet contracts from a single account.",
		Attributes: map[string]schema.Attribute{
			"rpc_endpoint": schema.StringAttribute{
				MarkdownDescription: "Node API endpoint. Defaults to `STARKNET_RPC_ENDPOINT` or the public sepolia node.",
				Optional:            true,
			},
			"chain_id": schema.StringAttribute{
				MarkdownDescription: "Expected Starknet chain identifier, e.g. `SN_SEPOLIA`.",
				Optional:            true,
			},
			"account_address": schema.StringAttribute{
				MarkdownDescription: "Admin account address. Defaults to `ACCOUNT_ADDRESS`.",
				Optional:            true,
			},
			"private_key": schema.StringAttribute{
				MarkdownDescription: "Admin account private key. Defaults to `PRIVATE_KEY`.",
				Optional:            true,
				Sensitive:           true,
			},
			"cairo_version": schema.Int64Attribute{
				MarkdownDescription: "Cairo version of the account contract, 0 or 2.",
				Optional:            true,
			},
		},
	}
}

// settings merges the provider block over the environment.
func settings(data StarknetProviderModel) (*config.Config, error) {
	cfg, err := config.Load(viper.New(), "")
	if err != nil {
		return nil, err
	}

	if v := data.RpcEndpoint.ValueString(); v != "" {
		cfg.RPCEndpoint = v
	}
	if v := data.AccountAddress.ValueString(); v != "" {
		cfg.Credentials.AccountAddress = v
	}
	if v := data.PrivateKey.ValueString(); v != "" {
		cfg.Credentials.PrivateKey = v
	}
	if !data.CairoVersion.IsNull() && !data.CairoVersion.IsUnknown() {
		v := int(data.CairoVersion.ValueInt64())
		if err := config.CheckCairoVersion(v); err != nil {
			return nil, err
		}
		cfg.CairoVersion = v
	}
	return cfg, nil
}

func (p *StarknetProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data StarknetProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	cfg, err := settings(data)
	if err != nil {
		resp.Diagnostics.AddError("Invalid provider configuration", err.Error())
		return
	}

	// Create RPC client
	client, err := rpc.NewProvider(cfg.RPCEndpoint)
	if err != nil {
		resp.Diagnostics.AddError(
			"Failed to create Starknet provider",
			err.Error(),
		)
		return
	}

	// Check ChainID
	chainId, err := client.ChainID(ctx)
	if err != nil {
		resp.Diagnostics.AddError(
			"Failed to obtain ChainId from rpc endpoint",
			err.Error(),
		)
		return
	}

	if expected := data.ChainId.ValueString(); expected != "" && chainId != expected {
		resp.Diagnostics.AddWarning(
			"ChainId mismatch",
			fmt.Sprintf("rpc endpoint reports chain %q while %q is configured. "+
				"Transactions are signed for the endpoint's chain.", chainId, expected),
		)
	}

	a, err := account.Resolve(ctx, client, cfg.Credentials, cfg.CairoVersion)
	if err != nil {
		resp.Diagnostics.AddError(
			"Can't create account",
			err.Error(),
		)
		return
	}

	tflog.Debug(ctx, "configured starknet provider", map[string]interface{}{
		"chain_id": chainId,
		"address":  a.AccountAddress.String(),
	})

	providerData := &ProviderData{
		client:  starknet.NewClient(a, client, cfg.PollInterval),
		address: a.AccountAddress,
	}

	resp.DataSourceData = providerData
	resp.ResourceData = providerData
}

func (p *StarknetProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewDeclareResource,
		NewDeployResource,
	}
}

func (p *StarknetProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewAccountDataSource,
	}
}

func (p *StarknetProvider) Functions(ctx context.Context) []func() function.Function {
	return []func() function.Function{
		NewRandomSaltFunction,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &StarknetProvider{
			version: version,
		}
	}
}

// providerData unpacks the value handed to resources and data sources.
func providerData(v any) (*ProviderData, error) {
	data, ok := v.(*ProviderData)
	if !ok {
		return nil, fmt.Errorf("expected *ProviderData, got: %T. Please report this issue to the provider developers.", v)
	}
	return data, nil
}

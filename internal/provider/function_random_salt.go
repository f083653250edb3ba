// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/function"

	"github.com/baitcode/starknet-deploy/internal/starknet"
)

var _ function.Function = RandomSaltFunction{}

func NewRandomSaltFunction() function.Function {
	return RandomSaltFunction{}
}

type RandomSaltFunction struct{}

func (r RandomSaltFunction) Metadata(_ context.Context, req function.MetadataRequest, resp *function.MetadataResponse) {
	resp.Name = "random_salt"
}

func (r RandomSaltFunction) Definition(_ context.Context, _ function.DefinitionRequest, resp *function.DefinitionResponse) {
	resp.Definition = function.Definition{
		Summary:             "Random Salt generator",
		MarkdownDescription: "Generates 252 random bits as a hex felt, usable as a deploy `salt`.",
		Parameters:          []function.Parameter{},
		Return:              function.StringReturn{},
	}
}

func (r RandomSaltFunction) Run(ctx context.Context, req function.RunRequest, resp *function.RunResponse) {
	salt, err := starknet.RandomSalt()
	if err != nil {
		resp.Error = function.NewFuncError(err.Error())
		return
	}

	resp.Error = function.ConcatFuncErrors(resp.Result.Set(ctx, salt.String()))
}

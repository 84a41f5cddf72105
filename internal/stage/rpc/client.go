// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     rpc
// Description: Client for a remote stage service
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/msto63/dramatica/foundation/scene"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// StageClient calls dramatica.v1.Stage
type StageClient struct {
	cc grpc.ClientConnInterface
}

// NewStageClient creates a client on an open connection
func NewStageClient(cc grpc.ClientConnInterface) *StageClient {
	return &StageClient{cc: cc}
}

func (c *StageClient) invoke(ctx context.Context, name string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+name, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Analyze calls Stage.Analyze
func (c *StageClient) Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Analyze", in, opts...)
}

// Run calls Stage.Run
func (c *StageClient) Run(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Run", in, opts...)
}

// Begin calls Stage.Begin
func (c *StageClient) Begin(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Begin", in, opts...)
}

// Resume calls Stage.Resume
func (c *StageClient) Resume(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Resume", in, opts...)
}

// AnalyzeSource checks source on the remote stage
func (c *StageClient) AnalyzeSource(ctx context.Context, source string) (*scene.Analysis, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"source": source})
	if err != nil {
		return nil, err
	}
	out, err := c.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}

	var analysis scene.Analysis
	if err := fromStruct(out, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// RunSource runs source in batch mode on the remote stage. Reals with an
// integral value come back as INTEGER since Struct numbers carry no kind.
func (c *StageClient) RunSource(ctx context.Context, source string, inputs []string) (*scene.RunReport, error) {
	list := make([]interface{}, len(inputs))
	for i, in := range inputs {
		list[i] = in
	}
	in, err := structpb.NewStruct(map[string]interface{}{"source": source, "inputs": list})
	if err != nil {
		return nil, err
	}
	out, err := c.Run(ctx, in)
	if err != nil {
		return nil, err
	}

	var report scene.RunReport
	if err := fromStruct(out, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// fromStruct decodes a Struct into a JSON-tagged value
func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

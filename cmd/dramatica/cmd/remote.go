// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     cmd
// Description: Remote execution of run and check against a stage server
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/stage/rpc"
	coregrpc "github.com/msto63/dramatica/pkg/core/grpc"
)

// withStage dials addr, confirms the stage service is serving and calls fn
func withStage(ctx context.Context, addr string, fn func(ctx context.Context, client *rpc.StageClient) error) error {
	conn, err := coregrpc.Dial(coregrpc.DefaultClientConfig(addr))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := coregrpc.CheckServing(ctx, conn, rpc.ServiceName); err != nil {
		return fmt.Errorf("remote stage %s: %w", addr, err)
	}

	requestID := uuid.NewString()
	mdwlog.GetDefault().Debug("Calling remote stage", mdwlog.Fields{"addr": addr, "request_id": requestID})
	return fn(coregrpc.WithRequestID(ctx, requestID), rpc.NewStageClient(conn))
}

func remoteRun(ctx context.Context, addr, source string, inputs []string) (*scene.RunReport, error) {
	var report *scene.RunReport
	err := withStage(ctx, addr, func(ctx context.Context, client *rpc.StageClient) error {
		var err error
		report, err = client.RunSource(ctx, source, inputs)
		return err
	})
	return report, err
}

func remoteAnalyze(ctx context.Context, addr, source string) (*scene.Analysis, error) {
	var analysis *scene.Analysis
	err := withStage(ctx, addr, func(ctx context.Context, client *rpc.StageClient) error {
		var err error
		analysis, err = client.AnalyzeSource(ctx, source)
		return err
	})
	return analysis, err
}

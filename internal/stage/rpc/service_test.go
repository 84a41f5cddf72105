package rpc

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/foundation/scene/interpreter"
	"github.com/msto63/dramatica/internal/session"
	coregrpc "github.com/msto63/dramatica/pkg/core/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const twoReads = `SCENE Names:
  CHARACTER Clown:
    MEMORY:
      first: TEXT;
      ratio: REAL;
    END_MEMORY
  READ first;
  Clown SAYS "hello " + first;
  READ ratio;
  Clown SAYS ratio * 2;
END_SCENE`

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := mdwlog.NewNop()
	manager := session.NewManager(session.Options{Logger: logger})
	t.Cleanup(func() { manager.Close() })
	return NewService(Options{Manager: manager, Logger: logger})
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}
	return s
}

func str(s *structpb.Struct, field string) string {
	return s.GetFields()[field].GetStringValue()
}

func TestService_Analyze(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		source   string
		status   string
		category string
	}{
		{"valid", twoReads, "success", ""},
		{"lexical", "SCENE A: @", "error", "lexical"},
		{"syntax", "SCENE A:", "error", "syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Analyze(ctx, mustStruct(t, map[string]interface{}{"source": tt.source}))
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if str(out, "status") != tt.status || str(out, "category") != tt.category {
				t.Errorf("analysis = %v", out)
			}
		})
	}
}

func TestService_MissingSource(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Analyze(context.Background(), mustStruct(t, map[string]interface{}{}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}

	_, err = svc.Run(context.Background(), mustStruct(t, map[string]interface{}{"source": true}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestService_Run(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Run(context.Background(), mustStruct(t, map[string]interface{}{
		"source": twoReads,
		"inputs": []interface{}{"Sebastian", 0.5},
	}))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if str(out, "status") != "success" {
		t.Fatalf("report = %v", out)
	}
	if !strings.Contains(str(out, "output"), "Clown says: 1.0") {
		t.Errorf("output = %q", str(out, "output"))
	}

	_, err = svc.Run(context.Background(), mustStruct(t, map[string]interface{}{
		"source": twoReads,
		"inputs": "Sebastian",
	}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestService_BeginResume(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	out, err := svc.Begin(ctx, mustStruct(t, map[string]interface{}{"source": twoReads}))
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if str(out, "status") != "suspended" || str(out, "awaiting") != "first" {
		t.Fatalf("begin = %v", out)
	}
	id := str(out, "session_id")

	out, err = svc.Resume(ctx, mustStruct(t, map[string]interface{}{"session_id": id, "value": "Sebastian"}))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if str(out, "awaiting") != "ratio" {
		t.Fatalf("resume = %v", out)
	}

	out, err = svc.Resume(ctx, mustStruct(t, map[string]interface{}{"session_id": id, "value": 0.5}))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if str(out, "status") != "completed" {
		t.Fatalf("final = %v", out)
	}

	_, err = svc.Resume(ctx, mustStruct(t, map[string]interface{}{"session_id": id, "value": "x"}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("code = %v, want NotFound", status.Code(err))
	}
}

func TestService_BeginCompileError(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Begin(context.Background(), mustStruct(t, map[string]interface{}{"source": "SCENE A:"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestStage_OverGRPC(t *testing.T) {
	logger := mdwlog.NewNop()

	cfg := coregrpc.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.Logger = logger

	srv := coregrpc.NewServer(cfg)
	Register(srv.GRPCServer(), newTestService(t))
	srv.SetServing(ServiceName, true)

	if err := srv.StartAsync(); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}
	defer srv.Stop()

	if _, _, err := net.SplitHostPort(srv.Address()); err != nil {
		t.Fatalf("Address() = %q", srv.Address())
	}

	conn, err := coregrpc.Dial(coregrpc.DefaultClientConfig(srv.Address()))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := coregrpc.CheckServing(ctx, conn, ServiceName); err != nil {
		t.Fatalf("CheckServing() error = %v", err)
	}
	if err := coregrpc.CheckServing(ctx, conn, "dramatica.v1.Missing"); err == nil {
		t.Error("unknown service reported as serving")
	}

	client := NewStageClient(conn)
	out, err := client.Begin(ctx, mustStruct(t, map[string]interface{}{"source": twoReads}))
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	out, err = client.Resume(ctx, mustStruct(t, map[string]interface{}{
		"session_id": str(out, "session_id"),
		"value":      "Sebastian",
	}))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if str(out, "awaiting") != "ratio" {
		t.Errorf("resume = %v", out)
	}

	_, err = client.Resume(ctx, mustStruct(t, map[string]interface{}{"session_id": "missing", "value": "x"}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("code = %v, want NotFound", status.Code(err))
	}

	an, err := client.Analyze(ctx, mustStruct(t, map[string]interface{}{"source": "SCENE A:"}))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if str(an, "category") != "syntax" {
		t.Errorf("analysis = %v", an)
	}

	report, err := client.RunSource(ctx, twoReads, []string{"Sebastian", "0.5"})
	if err != nil {
		t.Fatalf("RunSource() error = %v", err)
	}
	if report.Status != scene.StatusSuccess || !strings.Contains(report.Output, "Clown says: 1.0") {
		t.Errorf("report = %+v", report)
	}
	if len(report.Variables) != 2 || report.Variables[1].Value != interpreter.Real(0.5) {
		t.Errorf("variables = %v", report.Variables)
	}

	analysis, err := client.AnalyzeSource(ctx, twoReads)
	if err != nil {
		t.Fatalf("AnalyzeSource() error = %v", err)
	}
	if analysis.Status != scene.StatusSuccess {
		t.Errorf("analysis = %+v", analysis)
	}
}

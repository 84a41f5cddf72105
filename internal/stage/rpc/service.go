// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     rpc
// Description: gRPC stage service on google.protobuf.Struct messages
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package rpc

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/session"
	coregrpc "github.com/msto63/dramatica/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "dramatica.v1.Stage"

// StageServer is the server API of the stage service
type StageServer interface {
	Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Begin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Resume(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Options configures a Service
type Options struct {
	Engine     *scene.Engine
	Manager    *session.Manager
	Logger     *mdwlog.Logger
	RunTimeout time.Duration
}

// Service implements StageServer on top of the engine and a session manager
type Service struct {
	engine  *scene.Engine
	manager *session.Manager
	logger  *mdwlog.Logger
	timeout time.Duration
}

// NewService creates the stage service
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Engine == nil {
		opts.Engine = scene.New(scene.Options{Logger: opts.Logger})
	}
	if opts.Manager == nil {
		opts.Manager = session.NewManager(session.Options{Engine: opts.Engine, Logger: opts.Logger})
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Second
	}

	return &Service{
		engine:  opts.Engine,
		manager: opts.Manager,
		logger:  opts.Logger.WithField("component", "stage-rpc"),
		timeout: opts.RunTimeout,
	}
}

// Register adds the service to a gRPC server
func Register(s *grpc.Server, srv StageServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Analyze checks a source text: {source} -> Analysis
func (s *Service) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := stringField(req, "source", true)
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}
	return toStruct(s.engine.Analyze(source))
}

// Run executes a source text in batch mode: {source, inputs} -> RunReport
func (s *Service) Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := stringField(req, "source", true)
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}
	inputs, err := listField(req, "inputs")
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return toStruct(s.engine.Run(ctx, source, inputs))
}

// Begin starts an interactive session: {source} -> Response
func (s *Service) Begin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := stringField(req, "source", true)
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}

	resp, err := s.manager.BeginSource(ctx, source)
	if err != nil {
		return nil, coregrpc.StatusError(classified(err))
	}
	return toStruct(resp)
}

// Resume supplies the awaited value: {session_id, value} -> Response
func (s *Service) Resume(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "session_id", true)
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}
	value, err := stringField(req, "value", true)
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}

	resp, err := s.manager.Resume(ctx, id, value)
	if err != nil {
		return nil, coregrpc.StatusError(err)
	}
	return toStruct(resp)
}

// classified attaches the language error code to compile errors
func classified(err error) error {
	code := scene.Classify(err)
	if mdwerror.HasCode(err, code) {
		return err
	}
	return mdwerror.Wrap(err, "compile failed").WithCode(code)
}

func invalidField(field, reason string) error {
	return mdwerror.Newf("field '%s' %s", field, reason).
		WithCode(mdwerror.CodeValidationFailed).
		WithDetail("field", field)
}

// stringField reads a string field; numbers are rendered as typed text
func stringField(req *structpb.Struct, field string, required bool) (string, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		if required {
			return "", invalidField(field, "is required")
		}
		return "", nil
	}
	return scalarString(field, v)
}

func listField(req *structpb.Struct, field string) ([]string, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, invalidField(field, "must be a list")
	}

	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		s, err := scalarString(field, item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func scalarString(field string, v *structpb.Value) (string, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), nil
	default:
		return "", invalidField(field, "must be a string or number")
	}
}

// toStruct converts a JSON-tagged value into a Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, coregrpc.StatusError(mdwerror.Wrap(err, "encode response").WithCode(mdwerror.CodeInternal))
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, coregrpc.StatusError(mdwerror.Wrap(err, "encode response").WithCode(mdwerror.CodeInternal))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, coregrpc.StatusError(mdwerror.Wrap(err, "encode response").WithCode(mdwerror.CodeInternal))
	}
	return out, nil
}

package grpc

import (
	"context"
	"errors"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CodeFor maps an error code to the gRPC status code
func CodeFor(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeInvalidInput, mdwerror.CodeValidationFailed,
		mdwerror.CodeLexical, mdwerror.CodeSyntax, mdwerror.CodeSemantic:
		return codes.InvalidArgument
	case mdwerror.CodeRuntimeType, mdwerror.CodeRuntimeEval:
		return codes.FailedPrecondition
	case mdwerror.CodeSessionNotFound:
		return codes.NotFound
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeDatabaseError:
		return codes.Unavailable
	case mdwerror.CodeInternal, mdwerror.CodeConfigError:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// StatusError converts err into a gRPC status error. Errors that already
// carry a status pass through unchanged.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(CodeFor(mdwerror.GetCode(err)), err.Error())
}

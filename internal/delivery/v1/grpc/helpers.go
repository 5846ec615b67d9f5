package grpc

import (
	"context"
	"errors"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, e.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, e.ErrUnauthenticated.Error())
	case errors.Is(err, e.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, e.ErrUnauthorized.Error())
	case errors.Is(err, e.ErrConfigurationMissing):
		return status.Error(codes.FailedPrecondition, e.ErrConfigurationMissing.Error())
	case errors.Is(err, e.ErrRunInProgress), errors.Is(err, e.ErrOrderAlreadyFulfilled):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, e.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, e.ErrNotFound.Error())
	case errors.Is(err, e.ErrTransportFailure):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// unaryErrorInterceptor переводит доменные ошибки в статусы gRPC и логирует внутренние.
func unaryErrorInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		mapped := GRPCErrorResponse(err)
		if status.Code(mapped) == codes.Internal {
			log.Errorf(err, "%s", info.FullMethod)
		}
		return resp, mapped
	}
}

package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
)

// RPCObserver records finished calls.
type RPCObserver interface {
	ObserveRPC(procedure, code string, elapsed time.Duration)
}

// MetricsInterceptor reports the procedure, result code and latency of every
// unary call to observer. Successful calls use the code "ok".
func MetricsInterceptor(observer RPCObserver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			observer.ObserveRPC(req.Spec().Procedure, code, time.Since(start))
			return resp, err
		}
	}
}

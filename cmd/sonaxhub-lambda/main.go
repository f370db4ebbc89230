package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"sonaxhub/internal/app"
	"sonaxhub/internal/functions"
	"sonaxhub/internal/logging"
	"sonaxhub/internal/observability"
)

// Event mirrors the CRM's serverless invocation: a function name plus its
// parameters.
type Event struct {
	Name       string               `json:"name"`
	Parameters functions.Parameters `json:"parameters"`
}

var registry *functions.Registry

func init() {
	a, err := app.Load()
	if err != nil {
		logging.Op().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := a.InitTelemetry(context.Background()); err != nil {
		logging.Op().Warn("tracing disabled", "error", err)
	}
	registry = a.Registry
}

// HandleRequest runs one function. Failures are reported in the response
// envelope, never as a Lambda error, so the caller always gets the
// {success, message} shape.
func HandleRequest(ctx context.Context, evt Event) (functions.Response, error) {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = logging.WithRequestID(ctx, lc.AwsRequestID)
	}
	resp, _ := registry.Invoke(ctx, evt.Name, evt.Parameters)
	if err := observability.ForceFlush(ctx); err != nil {
		logging.FromContext(ctx).Warn("flush spans", "error", err)
	}
	return resp, nil
}

func main() {
	lambda.Start(HandleRequest)
}

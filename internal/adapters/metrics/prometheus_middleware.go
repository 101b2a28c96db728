package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/portsim-go/internal/application/common"
)

// acceptance is implemented by responses that can report a rejected action
type acceptance interface {
	Accepted() bool
}

// PrometheusMiddleware records latency and outcome for every mediator
// dispatch. A nil collector passes requests straight through.
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		collector.started()
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordCommand(commandName(request), commandOutcome(response, err), time.Since(start).Seconds())
		return response, err
	}
}

func commandOutcome(response common.Response, err error) string {
	if err != nil {
		return commandFailed
	}
	if a, ok := response.(acceptance); ok && !a.Accepted() {
		return commandRejected
	}
	return commandSucceeded
}

// commandName strips the pointer and package prefix: "*types.SailShipCommand"
// becomes "SailShipCommand"
func commandName(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

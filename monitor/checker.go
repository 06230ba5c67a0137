package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yongjun823/sagemaker-example/inference"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/metrics"
	"github.com/yongjun823/sagemaker-example/shared/registry"
	"github.com/yongjun823/sagemaker-example/shared/serving"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

const (
	defaultContentType = "application/json"
	defaultInputKey    = "inputs_input"
)

// ErrOutputDrifted when the canary output is not within tolerance of the
// expected values
var ErrOutputDrifted = errors.New("canary output drifted from the expected values")

// CanaryChecker performs canary checks on the endpoints of the registry
type CanaryChecker struct {
	Invoker          inference.Invoker
	DefaultInput     []float32
	DefaultTolerance float64
	MetricsRecorder  *metrics.Recorder
	RequestID        string
}

// CanaryResult is the outcome of a canary check on a single endpoint
type CanaryResult struct {
	Endpoint       string
	Model          string
	Healthy        bool
	LatencySeconds float32
	OutputSize     int
	Err            error
}

// Check invokes the endpoint with its canary input and compares the output
// against the expected values when the endpoint declares them
func (cc *CanaryChecker) Check(ctx context.Context, endpoint *registry.Endpoint) *CanaryResult {
	result := &CanaryResult{
		Endpoint: endpoint.Name,
		Model:    endpoint.Model,
	}

	input := cc.DefaultInput
	tolerance := cc.DefaultTolerance
	var expected []float32

	if endpoint.Canary != nil {
		input = endpoint.Canary.Input
		expected = endpoint.Canary.Expected
		if endpoint.Canary.Tolerance > 0 {
			tolerance = endpoint.Canary.Tolerance
		}
	}

	inputKey := endpoint.InputKey
	if inputKey == "" {
		inputKey = defaultInputKey
	}
	contentType := endpoint.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	payload, err := inference.BuildPayload(inputKey, input)
	if err != nil {
		result.Err = err
		return cc.recordFailure(ctx, endpoint, result, "INVOKE_ERROR", 0, 0)
	}

	start := time.Now()
	body, err := cc.invokerFor(endpoint).InvokeEndpoint(ctx, endpoint.Name, contentType, payload)
	result.LatencySeconds = float32(time.Since(start).Seconds())
	if err != nil {
		result.Err = err
		return cc.recordFailure(ctx, endpoint, result, "INVOKE_ERROR", time.Since(start).Seconds(), len(payload))
	}

	response, err := inference.DecodeResponse(body)
	if err != nil {
		result.Err = err
		return cc.recordFailure(ctx, endpoint, result, "DECODE_ERROR", time.Since(start).Seconds(), len(body))
	}

	values, err := response.FloatValues(endpoint.OutputTensor)
	if err != nil {
		result.Err = err
		return cc.recordFailure(ctx, endpoint, result, "DECODE_ERROR", time.Since(start).Seconds(), len(body))
	}

	result.OutputSize = len(values)

	if expected != nil && !withinTolerance(values, expected, tolerance) {
		result.Err = ErrOutputDrifted
		logger.Log.WithFields(log.Fields{
			"requestID":     cc.RequestID,
			"endpoint":      endpoint.Name,
			"model":         endpoint.Model,
			"servingDomain": utils.GetDomainFromURL(endpoint.ServingURL),
			"outputs":       fmt.Sprintf("%v", values),
			"expected":      fmt.Sprintf("%v", expected),
			"tolerance":     tolerance,
		}).Warn("CANARY CHECK FAILURE: " + endpoint.Name + " output drifted")

		cc.writeMetric(ctx, endpoint, "DRIFT", result.Err.Error(), time.Since(start).Seconds(), len(body))
		return result
	}

	result.Healthy = true

	logger.Log.WithFields(log.Fields{
		"requestID":     cc.RequestID,
		"endpoint":      endpoint.Name,
		"model":         endpoint.Model,
		"servingDomain": utils.GetDomainFromURL(endpoint.ServingURL),
		"latency":       result.LatencySeconds,
	}).Info(fmt.Sprintf("CANARY CHECK HEALTHY: %s outputs: %d", endpoint.Name, len(values)))

	return result
}

// invokerFor favors the plain serving host of the endpoint when it declares
// one, otherwise the shared invoker is used
func (cc *CanaryChecker) invokerFor(endpoint *registry.Endpoint) inference.Invoker {
	if endpoint.ServingURL != "" {
		return serving.NewClient(endpoint.ServingURL)
	}
	return cc.Invoker
}

func (cc *CanaryChecker) recordFailure(ctx context.Context, endpoint *registry.Endpoint, result *CanaryResult, code string, elapsed float64, bytes int) *CanaryResult {
	logger.Log.WithFields(log.Fields{
		"requestID":     cc.RequestID,
		"endpoint":      endpoint.Name,
		"model":         endpoint.Model,
		"servingDomain": utils.GetDomainFromURL(endpoint.ServingURL),
		"code":          code,
		"error":         result.Err.Error(),
	}).Error("canary check: error checking endpoint: " + result.Err.Error())

	cc.writeMetric(ctx, endpoint, code, result.Err.Error(), elapsed, bytes)
	return result
}

func (cc *CanaryChecker) writeMetric(ctx context.Context, endpoint *registry.Endpoint, code, message string, elapsed float64, bytes int) {
	if cc.MetricsRecorder == nil {
		return
	}

	cc.MetricsRecorder.WriteErrorMetric(ctx, &metrics.Metric{
		Timestamp:   time.Now(),
		Endpoint:    endpoint.Name,
		Model:       endpoint.Model,
		ElapsedTime: elapsed,
		Bytes:       bytes,
		Method:      "canarycheck",
		Message:     message,
		Code:        code,
		RequestID:   cc.RequestID,
	})
}

func withinTolerance(values, expected []float32, tolerance float64) bool {
	if len(values) != len(expected) {
		return false
	}

	for i := range expected {
		if math.Abs(float64(values[i])-float64(expected[i])) > tolerance {
			return false
		}
	}

	return true
}

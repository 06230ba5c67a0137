package apigateway

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/yongjun823/sagemaker-example/shared/logger"
)

// ErrorResponse is the JSON body returned on failed invocations
type ErrorResponse struct {
	HTTPCode int    `json:"http_code"`
	Message  string `json:"message"`
}

// NewJSONResponse builds a proxy response carrying the value serialized as JSON
func NewJSONResponse(statusCode int, val any) *events.APIGatewayProxyResponse {
	body, _ := json.Marshal(val)

	return &events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
	}
}

// NewErrorResponse builds a proxy response carrying the error message
func NewErrorResponse(statusCode int, err error) *events.APIGatewayProxyResponse {
	return NewJSONResponse(statusCode, ErrorResponse{
		HTTPCode: statusCode,
		Message:  err.Error(),
	})
}

// LogAndReturnError logs the error along the request id and returns it as an
// internal server error response
func LogAndReturnError(requestID string, err error) *events.APIGatewayProxyResponse {
	logger.Log.WithFields(logrus.Fields{
		"requestID": requestID,
		"error":     err.Error(),
	}).Error(err)

	return NewErrorResponse(http.StatusInternalServerError, err)
}

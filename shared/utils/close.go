package utils

import (
	"io"
	"net/http"

	"github.com/yongjun823/sagemaker-example/shared/logger"
)

// CloseOrLog drains and closes a response body so the underlying connection
// can be reused, errors on close are only logged
func CloseOrLog(response *http.Response) {
	if response == nil || response.Body == nil {
		return
	}

	io.Copy(io.Discard, response.Body)
	if err := response.Body.Close(); err != nil {
		logger.Log.Error("error closing response body: " + err.Error())
	}
}

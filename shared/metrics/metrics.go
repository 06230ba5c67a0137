package metrics

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/yongjun823/sagemaker-example/shared/database"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	"github.com/yongjun823/sagemaker-example/shared/logger"
)

var errorTableName = environment.GetString("METRICS_ERROR_TABLE_NAME", "error")

// Recorder writes invocation error records to the metrics database
type Recorder struct {
	db *database.Postgres
}

// NewMetricsRecorder connects to the metrics database with the given pool options
func NewMetricsRecorder(ctx context.Context, options *database.PostgresOptions) (*Recorder, error) {
	postgres, err := database.NewPostgresDatabase(ctx, options)
	if err != nil {
		return nil, errors.New("unable to connect to metrics db: " + err.Error())
	}

	return &Recorder{db: postgres}, nil
}

// WriteErrorMetric records a failed invocation, a failure writing the metric
// itself is only logged so checks are never interrupted by it
func (r *Recorder) WriteErrorMetric(ctx context.Context, metric *Metric) {
	statement := fmt.Sprintf(`
	INSERT INTO %s
	(timestamp, endpoint, model, elapsedTime, bytes, method, message, code)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, errorTableName)

	if _, err := r.db.Conn.Exec(ctx, statement,
		metric.Timestamp, metric.Endpoint, metric.Model, metric.ElapsedTime,
		metric.Bytes, metric.Method, metric.Message, metric.Code); err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": metric.RequestID,
			"endpoint":  metric.Endpoint,
			"model":     metric.Model,
		}).Error("metrics: failure recording metric: " + err.Error())
	}
}

// Close releases the metrics connection pool
func (r *Recorder) Close() {
	r.db.Conn.Close()
}

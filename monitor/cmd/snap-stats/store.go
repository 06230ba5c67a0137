package snapstats

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/yongjun823/sagemaker-example/monitor"
	db "github.com/yongjun823/sagemaker-example/monitor/database"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

// aggregatedStats is the merged stats of an endpoint across all regions
type aggregatedStats struct {
	Endpoint  string
	Model     string
	Successes int
	Failures  int
	Latencies []float32
	Failure   bool
}

func (sn *SnapEndpointStats) saveToStore(ctx context.Context) {
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(concurrency)

	for _, stats := range sn.aggregateRegionsData() {
		wg.Add(1)
		sem.Acquire(ctx, 1)

		go func(agg *aggregatedStats) {
			defer wg.Done()
			defer sem.Release(1)

			if err := sn.createOrUpdateSnapshot(ctx, agg); err != nil {
				logger.Log.WithFields(log.Fields{
					"requestID": sn.RequestID,
					"error":     err.Error(),
					"endpoint":  agg.Endpoint,
				}).Error("error creating/updating snapshot: " + err.Error())
			}
		}(stats)
	}
	wg.Wait()
}

func (sn *SnapEndpointStats) aggregateRegionsData() map[string]*aggregatedStats {
	aggregated := map[string]*aggregatedStats{}

	for _, region := range sn.Regions {
		for _, stats := range region.Stats {
			agg, ok := aggregated[stats.Endpoint]
			if !ok {
				agg = &aggregatedStats{
					Endpoint: stats.Endpoint,
					Model:    stats.Health.Model,
				}
				aggregated[stats.Endpoint] = agg
			}

			agg.Successes += stats.Successes
			agg.Failures += stats.Failures
			agg.Failure = agg.Failure || !stats.Health.Healthy
			if stats.Health.LatencySeconds > 0 {
				agg.Latencies = append(agg.Latencies, stats.Health.LatencySeconds)
			}
		}
	}

	return aggregated
}

// createOrUpdateSnapshot writes the aggregated stats of an endpoint to every
// store, the latency appended to the history is the average of the run. Hit
// totals mirror the cache counters as those are the source of truth.
func (sn *SnapEndpointStats) createOrUpdateSnapshot(ctx context.Context, agg *aggregatedStats) error {
	return utils.RunFnOnSliceSingleFailure(sn.Stores, func(st monitor.SnapshotStore) error {
		runLatency := float32(utils.AvgOfSlice(agg.Latencies))

		snapshot, err := st.GetSnapshot(ctx, agg.Endpoint)
		if err != nil {
			if err != db.ErrNotFound {
				return err
			}
			return st.CreateSnapshot(ctx, &monitor.Snapshot{
				Endpoint:     agg.Endpoint,
				Model:        agg.Model,
				TotalSuccess: agg.Successes,
				TotalFailure: agg.Failures,
				Latencies:    []float32{runLatency},
				AvgLatency:   runLatency,
				Failure:      agg.Failure,
			})
		}

		_, err = st.UpdateSnapshot(ctx, &monitor.SnapshotUpdate{
			Endpoint:     agg.Endpoint,
			TotalSuccess: agg.Successes,
			TotalFailure: agg.Failures,
			Latency:      runLatency,
			AvgLatency: float32(utils.AvgOfSlice(
				append(snapshot.Latencies, runLatency))),
			Failure: agg.Failure,
		})
		return err
	})
}

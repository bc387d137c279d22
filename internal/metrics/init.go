package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"enqueued", "deduplicated", "existing"} {
		QueueJobsTotal.WithLabelValues(outcome)
	}

	for _, status := range []string{"success", "error"} {
		TranscodeJobsTotal.WithLabelValues(status)
	}

	for _, result := range []string{"hit", "miss", "error"} {
		ProbeLookupsTotal.WithLabelValues(result)
	}

	for _, op := range []string{"initialize_schema", "get_probe", "put_probe", "delete_probe", "count_probes"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}

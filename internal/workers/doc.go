/*
Package workers sizes and runs the transcode worker pool.

# Sizing

When running in containers the number of usable CPUs may be limited by
cgroup constraints. runtime.NumCPU() still reports the host count, so
sizing uses GOMAXPROCS instead, which Go 1.19+ sets from the container
limit:

	// 1 worker per available CPU, at most 8
	n := workers.ForCPU(8)

	// Explicit configuration wins when positive
	n := workers.Resolve(cfg.Workers)

A positive TRANSCODE_WORKERS value replaces the per-CPU count; the limit
still applies to it:

	env:
	- name: TRANSCODE_WORKERS
	  value: "4"

Each transcode runs as its own ffmpeg process, so the pool bounds the
number of concurrently running processes, not goroutines doing CPU work.

# Pool

Pool runs at most Size tasks at once. Submit never blocks; tasks beyond
the bound wait in FIFO order. Close stops intake and waits for everything
already submitted:

	pool := workers.NewPool(workers.Resolve(0))
	defer pool.Close()

	_ = pool.Submit(func(ctx context.Context) {
		// run one rendition
	})

A panicking task is logged and does not take its worker down.

# Thread Safety

All functions and Pool methods are safe for concurrent use.
*/
package workers

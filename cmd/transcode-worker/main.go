package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/logging"
	"video-renditions/internal/startup"
	"video-renditions/internal/transcoder"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := startup.ReadConfig()
	executor := ffmpeg.NewProcessExecutor(cfg.FFmpegPath)

	os.Exit(run(ctx, os.Stdin, os.Stdout, executor, cfg.DebugFFmpeg))
}

func run(ctx context.Context, in io.Reader, out io.Writer, executor ffmpeg.Executor, debugFFmpeg bool) int {
	worker := transcoder.NewWorker(executor, transcoder.WithDebugFFmpeg(debugFFmpeg))
	if err := transcoder.Serve(ctx, in, out, worker); err != nil {
		logging.Error("transcode failed: %v", err)
		return 1
	}
	return 0
}

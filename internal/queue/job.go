package queue

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"video-renditions/internal/pipeline"
	"video-renditions/internal/transcoder"
)

// SourceFile identifies an input video.
type SourceFile struct {
	AbsolutePath  string `json:"absolutePath"`
	ContentDigest string `json:"contentDigest"`
	Name          string `json:"name"` // file name without extension
	Base          string `json:"base"` // file name with extension
}

// NewSourceFile derives Name and Base from path.
func NewSourceFile(path, contentDigest string) SourceFile {
	base := filepath.Base(path)
	return SourceFile{
		AbsolutePath:  path,
		ContentDigest: contentDigest,
		Name:          strings.TrimSuffix(base, filepath.Ext(base)),
		Base:          base,
	}
}

// Job is one rendition of one source. Its outcome settles exactly once.
type Job struct {
	ID         string
	Key        string
	Source     SourceFile
	Spec       pipeline.Spec
	OutputPath string
	Src        string
	Descriptor *pipeline.Descriptor

	payload transcoder.Payload

	once   sync.Once
	done   chan struct{}
	result transcoder.RenditionResult
	err    error
}

func newJob(key string, source SourceFile, spec pipeline.Spec, outputPath, src string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Key:        key,
		Source:     source,
		Spec:       spec,
		OutputPath: outputPath,
		Src:        src,
		done:       make(chan struct{}),
	}
}

// settle records the outcome. Later calls are ignored.
func (j *Job) settle(res transcoder.RenditionResult, err error) bool {
	settled := false
	j.once.Do(func() {
		j.result, j.err = res, err
		close(j.done)
		settled = true
	})
	return settled
}

// Done is closed once the job has settled.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job settles or ctx ends.
func (j *Job) Wait(ctx context.Context) (transcoder.RenditionResult, error) {
	select {
	case <-j.done:
		return j.result, j.err
	case <-ctx.Done():
		return transcoder.RenditionResult{}, ctx.Err()
	}
}

// Settled reports whether the job has an outcome.
func (j *Job) Settled() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

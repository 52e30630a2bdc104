// Package framedump writes submitted eye images to PNG files off the render goroutine.
package framedump

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr/simvr"
	"github.com/gogpu/gg"
)

// ImageSource reads back the pixels of a device texture by its native handle.
// software.Device satisfies it.
type ImageSource interface {
	Image(id uint64) (*image.RGBA, bool)
}

type dumper struct {
	dir   string
	every uint64
	src   ImageSource

	pool   worker.DynamicWorkerPool
	wg     *sync.WaitGroup
	nextID atomic.Int64

	written atomic.Int64
	mu      *sync.Mutex
	errs    []error
	closed  bool
}

// Dumper encodes eye images to <dir>/frame_<frame>_<eye>.png in a worker pool.
type Dumper interface {
	// Dump queues one image. The image must not be modified afterwards.
	//
	// Parameters:
	//   - frame: the frame the image belongs to
	//   - eye: the eye the image was rendered for
	//   - img: the pixels
	Dump(frame uint64, eye vr.Eye, img *image.RGBA)

	// OnSubmit reads back and queues every accepted eye image of each sampled frame.
	// It is meant to be passed to simvr.WithOnSubmit.
	//
	// Parameters:
	//   - sub: the accepted submission
	OnSubmit(sub simvr.Submission)

	// Written returns the number of files written so far.
	Written() int

	// Close waits for queued images and stops the pool.
	//
	// Returns:
	//   - error: every write error joined, nil if all writes succeeded
	Close() error
}

var _ Dumper = &dumper{}

// New creates the output directory and starts the encoder pool.
//
// Parameters:
//   - dir: the output directory, created if missing
//   - every: dump one frame out of every, values below 1 dump every frame
//   - workers: the maximum number of concurrent encoders
//   - src: resolves submitted texture handles to pixels
//
// Returns:
//   - Dumper: the dumper
//   - error: an error if the directory could not be created
func New(dir string, every, workers int, src ImageSource) (Dumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump dir: %w", err)
	}
	return &dumper{
		dir:   dir,
		every: uint64(max(every, 1)),
		src:   src,
		pool:  worker.NewDynamicWorkerPool(max(workers, 1), 64, 1*time.Second),
		wg:    &sync.WaitGroup{},
		mu:    &sync.Mutex{},
	}, nil
}

// FileName returns the file name an eye image of a frame is written to.
func FileName(frame uint64, eye vr.Eye) string {
	return fmt.Sprintf("frame_%06d_%s.png", frame, eye.String())
}

func (d *dumper) Dump(frame uint64, eye vr.Eye, img *image.RGBA) {
	if img == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	path := filepath.Join(d.dir, FileName(frame, eye))
	d.pool.SubmitTask(worker.Task{
		ID: int(d.nextID.Add(1)),
		Do: func() (any, error) {
			defer d.wg.Done()
			if err := gg.FromImage(img).SavePNG(path); err != nil {
				d.mu.Lock()
				d.errs = append(d.errs, fmt.Errorf("write %s: %w", path, err))
				d.mu.Unlock()
				common.Logger().Error("[FrameDump] failed to write frame", "path", path, "err", err)
				return nil, err
			}
			d.written.Add(1)
			return path, nil
		},
	})
}

func (d *dumper) OnSubmit(sub simvr.Submission) {
	if sub.Frame%d.every != 0 || d.src == nil {
		return
	}
	var id uint64
	switch data := sub.Texture.Handle.(type) {
	case *vr.VulkanTextureData:
		id = data.Image
	case *vr.D3D12TextureData:
		id = data.Resource
	}
	img, ok := d.src.Image(id)
	if !ok {
		return
	}
	d.Dump(sub.Frame, sub.Eye, img)
}

func (d *dumper) Written() int {
	return int(d.written.Load())
}

func (d *dumper) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	d.pool.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(d.errs...)
}

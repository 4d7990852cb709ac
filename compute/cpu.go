package compute

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/arcglobe/tube"
)

// parallelThreshold is the minimum tube count to fan out to workers.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 32

// workChunk is a range of tubes for a worker to process.
type workChunk struct {
	field      *tube.Field
	kernel     Kernel
	params     Params
	start, end int
}

// CPUBackend runs kernels on the CPU, splitting tubes across a persistent
// worker pool. Dispatch must be called from a single goroutine.
type CPUBackend struct {
	field      *tube.Field
	noise      opensimplex.Noise
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewCPUBackend creates a backend with the given worker count (0 = GOMAXPROCS)
// and noise seed.
func NewCPUBackend(workers int, noiseSeed int64) *CPUBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUBackend{
		noise:      opensimplex.New(noiseSeed),
		numWorkers: workers,
	}
}

// Workers returns the pool size.
func (b *CPUBackend) Workers() int {
	return b.numWorkers
}

// Bind attaches the field the kernels write into.
func (b *CPUBackend) Bind(f *tube.Field) error {
	if f == nil {
		return fmt.Errorf("%w: nil field", ErrNotBound)
	}
	b.field = f
	slog.Debug("compute backend bound", "tubes", f.TubeCount(), "workers", b.numWorkers)
	return nil
}

// Dispatch runs one kernel over every tube and returns when all lanes finish.
func (b *CPUBackend) Dispatch(k Kernel, p Params) error {
	if b.field == nil {
		return ErrNotBound
	}
	if k >= numKernels {
		return fmt.Errorf("unknown kernel %d", k)
	}

	n := b.field.TubeCount()
	if n == 0 {
		return nil
	}
	if n < parallelThreshold || b.numWorkers == 1 {
		b.runChunk(workChunk{field: b.field, kernel: k, params: p, start: 0, end: n})
		return nil
	}
	b.dispatchParallel(k, p, n)
	return nil
}

// dispatchParallel sends one chunk per worker and waits for all of them.
func (b *CPUBackend) dispatchParallel(k Kernel, p Params, n int) {
	if !b.running {
		b.startWorkers()
	}

	chunkSize := (n + b.numWorkers - 1) / b.numWorkers

	chunksDispatched := 0
	for w := 0; w < b.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		b.workChan <- workChunk{field: b.field, kernel: k, params: p, start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-b.doneChan
	}
}

func (b *CPUBackend) runChunk(c workChunk) {
	switch c.kernel {
	case InitSegment:
		initSegments(c.field, c.start, c.end, c.params)
	case ApplyNoise:
		applyNoise(c.field, b.noise, c.start, c.end, c.params)
	case UpdateVertex:
		updateVertices(c.field, c.start, c.end, c.params)
	case UpdateTargetPosition:
		updateTargets(c.field, c.start, c.end)
	}
}

// startWorkers launches persistent worker goroutines.
func (b *CPUBackend) startWorkers() {
	if b.running {
		return
	}

	b.workChan = make(chan workChunk, b.numWorkers)
	b.doneChan = make(chan struct{}, b.numWorkers)
	b.stopChan = make(chan struct{})
	b.running = true

	for i := 0; i < b.numWorkers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (b *CPUBackend) stopWorkers() {
	if !b.running {
		return
	}

	close(b.stopChan)
	b.wg.Wait()
	close(b.workChan)
	close(b.doneChan)
	b.running = false
}

// worker processes chunks until stopped.
func (b *CPUBackend) worker() {
	defer b.wg.Done()

	for {
		select {
		case <-b.stopChan:
			return
		case chunk, ok := <-b.workChan:
			if !ok {
				return
			}
			b.runChunk(chunk)
			b.doneChan <- struct{}{}
		}
	}
}

// Close stops the workers and unbinds the field. Dispatch after Close
// returns ErrNotBound.
func (b *CPUBackend) Close() error {
	b.stopWorkers()
	b.field = nil
	return nil
}

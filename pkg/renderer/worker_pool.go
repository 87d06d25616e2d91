package renderer

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
)

// ErrTileOutOfBounds is reported for a tile that does not fit inside the pixel stats grid
var ErrTileOutOfBounds = errors.New("tile outside pixel stats grid")

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int            // Index of the tile, used to match results
	PixelStats    [][]PixelStats // Shared pixel stats array to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	raytracer   *Raytracer
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// The queues are sized so a whole pass of maxTasks tiles can be submitted without blocking.
func NewWorkerPool(raytracer *Raytracer, maxTasks, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	maxTasks = max(1, maxTasks)

	return &WorkerPool{
		raytracer:   raytracer,
		taskQueue:   make(chan TileTask, maxTasks),
		resultQueue: make(chan TileResult, maxTasks),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for i := 0; i < wp.numWorkers; i++ {
			wp.wg.Add(1)
			go wp.run()
		}
	})
}

// Stop shuts down all workers after the queued tasks drain
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
	})
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := checkTileBounds(task.Tile.Bounds, task.PixelStats); err != nil {
			wp.resultQueue <- TileResult{
				TaskID: task.TaskID,
				Error:  fmt.Errorf("pass %d: %w", task.PassNumber, err),
			}
			continue
		}

		// Tiles never overlap and a tile is queued at most once per pass,
		// so the pixels and the tile sampler are owned by this worker until it reports back
		stats := wp.raytracer.RenderBounds(task.Tile.Bounds, task.PixelStats, task.Tile.Sampler, task.TargetSamples)

		wp.resultQueue <- TileResult{
			TaskID: task.TaskID,
			Stats:  stats,
		}
	}
}

// checkTileBounds reports whether bounds is a non-empty region of the [y][x] pixelStats grid
func checkTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats) error {
	grid := image.Rectangle{}
	if len(pixelStats) > 0 {
		grid = image.Rect(0, 0, len(pixelStats[0]), len(pixelStats))
	}
	if bounds.Empty() || !bounds.In(grid) {
		return fmt.Errorf("%w: %v not within %v", ErrTileOutOfBounds, bounds, grid)
	}
	return nil
}

package transfer

import (
	"runtime"

	"github.com/DefectingCat/cymo/internal/scan"
)

// tasksPerWorker is the auto-detection divisor: one worker session per this
// many tasks, capped by GOMAXPROCS. Tuning knob, not a law; small uploads do
// not deserve a session per CPU.
const tasksPerWorker = 4

// WorkerCount resolves the number of worker sessions. requested > 0 is taken
// as-is, capped by taskCount so no worker starts with an empty shard.
// requested == 0 auto-detects from the task count.
func WorkerCount(requested, taskCount int) int {
	if taskCount <= 0 {
		return 0
	}
	n := requested
	if n <= 0 {
		n = taskCount / tasksPerWorker
		if n < 1 {
			n = 1
		}
		if procs := runtime.GOMAXPROCS(0); n > procs {
			n = procs
		}
	}
	if n > taskCount {
		n = taskCount
	}
	return n
}

// Partition splits tasks into shards contiguous slices of near-equal size,
// the remainder going one extra to the first shards. The concatenation of the
// result is exactly the input; no task is duplicated or dropped.
func Partition(tasks []scan.Task, shards int) [][]scan.Task {
	if len(tasks) == 0 || shards < 1 {
		return nil
	}
	if shards > len(tasks) {
		shards = len(tasks)
	}

	out := make([][]scan.Task, shards)
	base := len(tasks) / shards
	rem := len(tasks) % shards
	start := 0
	for i := 0; i < shards; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = tasks[start : start+size]
		start += size
	}
	return out
}

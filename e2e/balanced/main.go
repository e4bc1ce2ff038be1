// balanced is a two-threaded profiling target (§8 scenario 2): the
// main goroutine pins itself to core 0 and a worker goroutine pins
// itself to core 1, each doing the same fixed amount of work so a
// profiler attached to it should see roughly equal energy per core.
package main

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

const additions = 500_000_000

func add(core int, wg *sync.WaitGroup) {
	defer wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		panic(err)
	}

	var x uint64
	for i := 0; i < additions; i++ {
		x += uint64(i)
	}
	if x == 0 {
		panic("unreachable")
	}
}

func main() {
	var wg sync.WaitGroup
	wg.Add(2)
	go add(1, &wg)
	add(0, &wg)
	wg.Wait()
}

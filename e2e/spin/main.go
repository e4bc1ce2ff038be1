// spin is a single-threaded CPU hog used as a profiling target (§8
// scenario 1): it calls spin for a fixed wall-clock duration so a
// profiler attached to it sees one hot function on one core.
package main

import "time"

func spin(until time.Time) {
	var x uint64
	for time.Now().Before(until) {
		x++
	}
	if x == 0 {
		panic("unreachable")
	}
}

func main() {
	spin(time.Now().Add(2 * time.Second))
}

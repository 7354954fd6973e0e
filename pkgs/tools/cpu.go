package tools

import "runtime"

// CPUCount returns the number of CPUs the current process may run on.
// It is never less than 1.
func CPUCount() int {
	n, ok := affinityCount()
	if !ok || n < 1 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}

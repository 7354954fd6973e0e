//go:build linux

package tools

import "golang.org/x/sys/unix"

// affinityCount counts the CPUs in the scheduler affinity mask of the
// calling process.
func affinityCount() (int, bool) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, false
	}
	return set.Count(), true
}

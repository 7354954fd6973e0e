//go:build !linux

package tools

func affinityCount() (int, bool) {
	return 0, false
}

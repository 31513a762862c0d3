//go:build !linux && !darwin && !windows

package linklocal

func platformUsable(ifaceIndex int) error {
	return nil
}

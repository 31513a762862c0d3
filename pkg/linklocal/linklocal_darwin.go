//go:build darwin

package linklocal

// No cheap pre-flight probe is available on Darwin; the first real
// join/send call surfaces any failure instead.
func platformUsable(ifaceIndex int) error {
	return nil
}

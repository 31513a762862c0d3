//go:build linux

package linklocal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// platformUsable confirms the kernel will actually let this engine join
// and send IPv6 multicast on ifaceIndex, by attempting to bind an
// IPV6_MULTICAST_IF socket option to it — cheaper than waiting for the
// first real join/send to fail.
func platformUsable(ifaceIndex int) error {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_DGRAM, unix.IPPROTO_ICMPV6)
	if err != nil {
		return fmt.Errorf("linklocal: opening probe socket: %w", err)
	}
	defer unix.Close(fd)

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_IF, ifaceIndex); err != nil {
		return fmt.Errorf("linklocal: interface index %d rejected IPV6_MULTICAST_IF: %w", ifaceIndex, err)
	}
	return nil
}

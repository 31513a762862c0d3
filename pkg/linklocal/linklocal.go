/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package linklocal finds the preferred IPv6 link-local source address on
// a named interface — the address a mcast.Stack implementation reports
// through LocalLinkLocal once LinkLocalReady is true. Platform dispatch
// uses a _linux/_darwin/_windows/_other split, since only Linux gets an
// extra capability probe before an interface is considered usable.
package linklocal

import (
	"fmt"
	"net"
)

// Preferred returns the first link-local unicast address configured on
// ifaceName, after confirming (on platforms where it can be confirmed)
// that the interface is actually usable for IPv6 multicast.
func Preferred(ifaceName string) (addr [16]byte, err error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return addr, fmt.Errorf("linklocal: %w", err)
	}
	if iface.Flags&net.FlagUp == 0 {
		return addr, fmt.Errorf("linklocal: interface %s is down", ifaceName)
	}
	if err := platformUsable(iface.Index); err != nil {
		return addr, err
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return addr, fmt.Errorf("linklocal: %w", err)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP.To16()
		if ip == nil || !ip.IsLinkLocalUnicast() {
			continue
		}
		copy(addr[:], ip)
		return addr, nil
	}
	return addr, fmt.Errorf("linklocal: no link-local address on %s", ifaceName)
}

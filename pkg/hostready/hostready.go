/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package hostready gates the raw-socket multicast/ICMPv6 transport on
// host capability: don't even try on a kernel too old to deliver
// IPv6 hop-by-hop options and multicast group membership correctly.
package hostready

import (
	"fmt"

	"github.com/docker/docker/pkg/parsers/kernel"
)

// minIPv6MulticastKernel is the oldest Linux kernel this package has
// verified IPV6_JOIN_GROUP/IPV6_HOPLIMIT hop-by-hop option delivery on.
var minIPv6MulticastKernel = kernel.VersionInfo{Kernel: 3, Major: 10}

// CheckTransport reports whether the running kernel is recent enough to
// host the raw ICMPv6/multicast transport, and if not, why.
func CheckTransport() error {
	v, err := kernel.GetKernelVersion()
	if err != nil {
		return fmt.Errorf("hostready: could not determine kernel version: %w", err)
	}
	if kernel.CompareKernelVersion(*v, minIPv6MulticastKernel) < 0 {
		return fmt.Errorf("hostready: kernel %s is older than the minimum supported %s", v, minIPv6MulticastKernel)
	}
	return nil
}

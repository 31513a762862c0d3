/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package transport is the raw-socket adapter between mcast.Engine and
// the kernel's IPv6 stack: it implements mcast.Stack (address
// classification, link-local readiness) and gives the engine a Send
// callback and two receive loops (multicast data, ICMPv6 control).
//
// mcast.Engine deals entirely in complete conceptual datagrams — a fixed
// 40-byte IPv6 header followed by the HBH option and payload — since
// that's the unit its wire format describes. A raw IPv6 socket only
// ever sees the extension-header-and-payload portion; the kernel
// synthesises the fixed header itself on send and strips it on receive.
// This package is where that impedance mismatch is resolved, so
// pkg/mcast never has to know it exists.
package transport

import (
	"fmt"
	"net"

	"github.com/higebu/netfd"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"

	"github.com/rollmesh/trickle/pkg/linklocal"
)

const (
	icmpv6NextHeader = 58
)

// Transport owns the two raw sockets this engine needs: one for
// Trickle's own ICMPv6 control messages, one for the multicast data
// protocol being forwarded.
type Transport struct {
	iface *net.Interface
	log   logrus.FieldLogger

	dataNextHeader byte
	dataConn       *ipv6.PacketConn
	icmpConn       *ipv6.PacketConn
}

// New opens both raw sockets on ifaceName and joins the given multicast
// groups for data traffic. dataNextHeader is the upper-layer protocol
// number of the application payload carried after the Trickle HBH
// option (e.g. 17 for UDP).
func New(ifaceName string, dataNextHeader byte, groups []net.IP, log logrus.FieldLogger) (*Transport, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	dataConn, err := openRawSocket(iface, int(dataNextHeader))
	if err != nil {
		return nil, fmt.Errorf("transport: data socket: %w", err)
	}
	icmpConn, err := openRawSocket(iface, icmpv6NextHeader)
	if err != nil {
		return nil, fmt.Errorf("transport: icmp socket: %w", err)
	}

	for _, g := range groups {
		if err := dataConn.JoinGroup(iface, &net.IPAddr{IP: g}); err != nil {
			return nil, fmt.Errorf("transport: joining group %s: %w", g, err)
		}
	}

	return &Transport{
		iface:          iface,
		log:            log,
		dataNextHeader: dataNextHeader,
		dataConn:       dataConn,
		icmpConn:       icmpConn,
	}, nil
}

func openRawSocket(iface *net.Interface, proto int) (*ipv6.PacketConn, error) {
	conn, err := net.ListenIP(fmt.Sprintf("ip6:%d", proto), &net.IPAddr{IP: net.IPv6unspecified, Zone: iface.Name})
	if err != nil {
		return nil, err
	}

	// golang.org/x/net/ipv6 doesn't expose SO_REUSEADDR, and more than
	// one process legitimately wants to bind the same raw protocol
	// number on a multi-instance test host.
	if fd := netfd.GetFdFromConn(conn); fd >= 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SO_REUSEADDR: %w", err)
		}
	}

	pc := ipv6.NewPacketConn(conn)
	if err := pc.SetControlMessage(ipv6.FlagHopLimit|ipv6.FlagSrc|ipv6.FlagDst, true); err != nil {
		conn.Close()
		return nil, err
	}
	return pc, nil
}

// Send transmits a complete conceptual datagram produced by mcast.Engine
// (Out, the forwarder's runTick, transmitControl): it splits off the fixed 40-byte header,
// writes the rest through the matching raw socket with the right
// HopLimit and destination, and lets the kernel regenerate the header.
func (t *Transport) Send(frame []byte) {
	if len(frame) < 40 {
		t.log.WithField("len", len(frame)).Warn("transport: dropping undersized frame")
		return
	}
	dst := net.IP(append([]byte(nil), frame[24:40]...))
	hopLimit := int(frame[7])
	body := frame[40:]

	cm := &ipv6.ControlMessage{HopLimit: hopLimit, IfIndex: t.iface.Index}
	pc := t.dataConn
	if frame[6] == icmpv6NextHeader {
		pc = t.icmpConn
	}
	if _, err := pc.WriteTo(body, cm, &net.IPAddr{IP: dst}); err != nil {
		t.log.WithError(err).Warn("transport: send failed")
	}
}

// reconstructHeader rebuilds the fixed 40-byte header mcast.Engine
// expects to find at the front of every datagram it's handed, from the
// ancillary data the kernel attached to a raw-socket read.
func reconstructHeader(nextHeader byte, cm *ipv6.ControlMessage, body []byte) []byte {
	buf := make([]byte, 40+len(body))
	buf[4] = byte(len(body) >> 8)
	buf[5] = byte(len(body))
	buf[6] = nextHeader
	buf[7] = byte(cm.HopLimit)
	copy(buf[8:24], cm.Src.To16())
	copy(buf[24:40], cm.Dst.To16())
	copy(buf[40:], body)
	return buf
}

// ReadData blocks for the next multicast data datagram and returns it as
// a complete conceptual datagram ready for mcast.Engine.Accept.
func (t *Transport) ReadData(buf []byte) ([]byte, error) {
	n, cm, _, err := t.dataConn.ReadFrom(buf)
	if err != nil {
		return nil, err
	}
	return reconstructHeader(t.dataNextHeader, cm, buf[:n]), nil
}

// ReadControl blocks for the next ICMPv6 control message and returns it
// ready for mcast.Engine.ICMPInput.
func (t *Transport) ReadControl(buf []byte) ([]byte, error) {
	n, cm, _, err := t.icmpConn.ReadFrom(buf)
	if err != nil {
		return nil, err
	}
	return reconstructHeader(icmpv6NextHeader, cm, buf[:n]), nil
}

// Close releases both raw sockets.
func (t *Transport) Close() error {
	err1 := t.dataConn.Close()
	err2 := t.icmpConn.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// --- mcast.Stack ---

func (t *Transport) LinkLocalReady() bool {
	_, err := linklocal.Preferred(t.iface.Name)
	return err == nil
}

func (t *Transport) LocalLinkLocal() [16]byte {
	addr, _ := linklocal.Preferred(t.iface.Name)
	return addr
}

func (t *Transport) IsRoutableMulticast(addr [16]byte) bool {
	ip := net.IP(addr[:])
	return ip.IsMulticast() && !ip.IsInterfaceLocalMulticast()
}

func (t *Transport) IsUnspecified(addr [16]byte) bool {
	return net.IP(addr[:]).IsUnspecified()
}

func (t *Transport) IsLinkLocal(addr [16]byte) bool {
	return net.IP(addr[:]).IsLinkLocalUnicast()
}

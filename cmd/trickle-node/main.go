/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package main

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/rollmesh/trickle/pkg/exporter"
	"github.com/rollmesh/trickle/pkg/hostready"
	"github.com/rollmesh/trickle/pkg/mcast"
	"github.com/rollmesh/trickle/pkg/transport"
)

// inbound is one datagram waiting for the single goroutine that owns
// the engine (every Engine method must be called from one goroutine).
// Both read loops below only ever produce these; nothing else touches
// the engine.
type inbound struct {
	frame     []byte
	isControl bool
}

func main() {
	var (
		iface         = flag.StringP("iface", "i", "eth0", "interface to run the Trickle multicast engine on")
		group         = flag.StringP("group", "g", "ff1e::1", "multicast group to join and forward for")
		dataProto     = flag.Uint8("data-proto", 17, "IANA next-header value of the application payload carried after the Trickle option")
		longSeed      = flag.Bool("long-seed", false, "use the full IPv6 source address as the seed id instead of a short in-band one")
		metricsAddr   = flag.StringP("metrics-addr", "m", ":9273", "address to serve Prometheus metrics on")
		imin          = flag.Uint64("imin", 200, "Trickle Imin, in milliseconds")
		imaxDoublings = flag.Uint8("imax-doublings", 8, "Trickle's maximum number of interval doublings")
		k             = flag.Uint32("k", 2, "Trickle redundancy constant")
		verbose       = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	base := logrus.New()
	if *verbose {
		base.SetLevel(logrus.DebugLevel)
	}
	nodeID := xid.New().String()
	log := base.WithField("node", nodeID)

	if err := hostready.CheckTransport(); err != nil {
		log.WithError(err).Fatal("host not ready for raw IPv6 multicast transport")
	}

	groupIP := net.ParseIP(*group)
	if groupIP == nil {
		log.WithField("group", *group).Fatal("invalid multicast group address")
	}

	tp, err := transport.New(*iface, byte(*dataProto), []net.IP{groupIP}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open transport")
	}
	defer tp.Close()

	seedMode := mcast.ShortSeed
	if *longSeed {
		seedMode = mcast.LongSeed
	}
	params := mcast.ControllerParams{
		IMin:          mcast.Tick(*imin),
		IMaxDoublings: *imaxDoublings,
		K:             *k,
		TActive:       4,
		TDwell:        2,
	}

	// fireCh carries every Trickle timer callback (one per controller,
	// both M0 and M1) back to the single goroutine below that owns the
	// engine; ChanTimer is the production Timer that feeds it.
	fireCh := make(chan func(), 8)
	engine, err := mcast.New(mcast.Config{
		SeedMode:    seedMode,
		LocalSeedID: mcast.SeedID{nodeID[0], nodeID[1]},
		Windows:     256,
		Buffers:     256,
		Params:      [2]mcast.ControllerParams{params, params},
		ICMPCode:    0x01,
		IPHopLimit:  1,
		Logger:      log,
		Stack:       tp,
		Send:        tp.Send,
		NewTimer:    func() mcast.Timer { return mcast.NewChanTimer(fireCh) },
	})
	if err != nil {
		log.WithError(err).Fatal("failed to construct engine")
	}
	engine.Init()

	collector := exporter.NewCollector(engine, "trickle", prometheus.Labels{
		"node":      nodeID,
		"interface": *iface,
	})
	prometheus.MustRegister(collector)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.WithField("addr", *metricsAddr).Info("serving metrics")
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.WithError(err).Fatal("metrics server failed")
		}
	}()

	jobs := make(chan inbound, 256)

	go func() {
		buf := make([]byte, 65536)
		for {
			dg, err := tp.ReadData(buf)
			if err != nil {
				log.WithError(err).Warn("data read failed")
				continue
			}
			jobs <- inbound{frame: append([]byte(nil), dg...)}
		}
	}()

	go func() {
		buf := make([]byte, 65536)
		for {
			dg, err := tp.ReadControl(buf)
			if err != nil {
				log.WithError(err).Warn("control read failed")
				continue
			}
			jobs <- inbound{frame: append([]byte(nil), dg...), isControl: true}
		}
	}()

	for {
		select {
		case j := <-jobs:
			if j.isControl {
				engine.ICMPInput(j.frame)
			} else {
				engine.Accept(j.frame)
			}
		case cb := <-fireCh:
			cb()
		}
	}
}

/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rollmesh/trickle/pkg/exporter"
	"github.com/rollmesh/trickle/pkg/mcast"
)

// loopbackStack satisfies mcast.Stack with no real network underneath:
// link-local is always "ready" at a fixed address, and any ff00::/8
// address counts as routable multicast. Good enough to drive a
// self-contained engine with synthetic traffic.
type loopbackStack struct{}

func (loopbackStack) LinkLocalReady() bool { return true }

func (loopbackStack) LocalLinkLocal() [16]byte {
	return [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
}

func (loopbackStack) IsRoutableMulticast(addr [16]byte) bool { return addr[0] == 0xff }
func (loopbackStack) IsUnspecified(addr [16]byte) bool       { return addr == [16]byte{} }
func (loopbackStack) IsLinkLocal(addr [16]byte) bool         { return addr[0] == 0xfe && addr[1]&0xc0 == 0x80 }

// hallucinate wires an mcast.Engine's own Send callback back into
// Accept/ICMPInput, so it continuously produces metrics without a real
// transport underneath. Every call into the engine — Send's own
// feedback loop, the synthetic Out traffic, and both controllers'
// Trickle timers — has to land on one goroutine, so the only things
// started here are a dispatch loop plus producers that merely feed
// requests into channels it owns.
func hallucinate() *mcast.Engine {
	var engine *mcast.Engine
	params := mcast.ControllerParams{IMin: 200, IMaxDoublings: 6, K: 2, TActive: 8, TDwell: 4}

	fireCh := make(chan func(), 8)
	engine, err := mcast.New(mcast.Config{
		SeedMode:    mcast.ShortSeed,
		LocalSeedID: mcast.SeedID{0xba, 0xdb},
		Windows:     64,
		Buffers:     64,
		Params:      [2]mcast.ControllerParams{params, params},
		ICMPCode:    0x01,
		IPHopLimit:  1,
		Logger:      logrus.StandardLogger(),
		Stack:       loopbackStack{},
		Send: func(frame []byte) {
			if frame[6] == 58 {
				engine.ICMPInput(frame)
			} else {
				engine.Accept(frame)
			}
		},
		NewTimer: func() mcast.Timer { return mcast.NewChanTimer(fireCh) },
	})
	if err != nil {
		panic(err)
	}
	engine.Init()

	src := [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
	dest := [16]byte{0xff, 0x1e, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
	outTick := time.NewTicker(10 * time.Millisecond)
	go func() {
		for {
			select {
			case <-outTick.C:
				engine.Out([]byte("badger, "), src, dest, 17, 1, mcast.M0)
			case cb := <-fireCh:
				cb()
			}
		}
	}()
	return engine
}

func main() {
	hostname, err := os.Hostname()
	if err != nil {
		panic(err)
	}

	engine := hallucinate()

	collector := exporter.NewCollector(engine, "hallucination", prometheus.Labels{
		"app":      "metrics-server",
		"hostname": hostname,
	})
	prometheus.MustRegister(collector)

	http.Handle("/metrics", promhttp.Handler())
	http.ListenAndServe(":18080", nil)
}

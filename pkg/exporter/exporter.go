/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package exporter publishes an mcast.Engine's counters as Prometheus
// metrics, using the standard Describe/Collect Collector shape: each
// scrape reads one process-wide mcast.Stats snapshot. mcast.Stats has a
// small, fixed set of counters, so each gets its own Desc directly
// rather than a generic field-lookup indirection.
package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rollmesh/trickle/pkg/mcast"
)

// StatsSource is the slice of *mcast.Engine this collector depends on.
type StatsSource interface {
	Stats() mcast.Stats
}

type Collector struct {
	source StatsSource

	mcastBad      *prometheus.Desc
	mcastDropped  *prometheus.Desc
	mcastInAll    *prometheus.Desc
	mcastInUnique *prometheus.Desc
	mcastFwd      *prometheus.Desc
	mcastOut      *prometheus.Desc
	icmpBad       *prometheus.Desc
	icmpIn        *prometheus.Desc
	icmpOut       *prometheus.Desc
}

// NewCollector builds a Collector over source, with every metric
// carrying prefix and constLabels (process-wide labels such as hostname
// or interface name).
func NewCollector(source StatsSource, prefix string, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prefix+"_"+name, help, nil, constLabels)
	}
	return &Collector{
		source:        source,
		mcastBad:      desc("mcast_bad_total", "Malformed inbound multicast datagrams."),
		mcastDropped:  desc("mcast_dropped_total", "Inbound multicast datagrams dropped as duplicate/out-of-range or on allocation failure."),
		mcastInAll:    desc("mcast_in_total", "Inbound multicast datagrams that passed header validation."),
		mcastInUnique: desc("mcast_in_unique_total", "Inbound multicast datagrams admitted as new."),
		mcastFwd:      desc("mcast_forwarded_total", "Multicast datagrams retransmitted by the forwarder."),
		mcastOut:      desc("mcast_out_total", "Multicast datagrams admitted via Out (locally originated)."),
		icmpBad:       desc("icmp_bad_total", "Malformed inbound Trickle control messages."),
		icmpIn:        desc("icmp_in_total", "Inbound Trickle control messages that passed header validation."),
		icmpOut:       desc("icmp_out_total", "Trickle control messages emitted by this node."),
	}
}

func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.mcastBad
	descs <- c.mcastDropped
	descs <- c.mcastInAll
	descs <- c.mcastInUnique
	descs <- c.mcastFwd
	descs <- c.mcastOut
	descs <- c.icmpBad
	descs <- c.icmpIn
	descs <- c.icmpOut
}

func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	s := c.source.Stats()
	metrics <- prometheus.MustNewConstMetric(c.mcastBad, prometheus.CounterValue, float64(s.McastBad))
	metrics <- prometheus.MustNewConstMetric(c.mcastDropped, prometheus.CounterValue, float64(s.McastDropped))
	metrics <- prometheus.MustNewConstMetric(c.mcastInAll, prometheus.CounterValue, float64(s.McastInAll))
	metrics <- prometheus.MustNewConstMetric(c.mcastInUnique, prometheus.CounterValue, float64(s.McastInUnique))
	metrics <- prometheus.MustNewConstMetric(c.mcastFwd, prometheus.CounterValue, float64(s.McastFwd))
	metrics <- prometheus.MustNewConstMetric(c.mcastOut, prometheus.CounterValue, float64(s.McastOut))
	metrics <- prometheus.MustNewConstMetric(c.icmpBad, prometheus.CounterValue, float64(s.IcmpBad))
	metrics <- prometheus.MustNewConstMetric(c.icmpIn, prometheus.CounterValue, float64(s.IcmpIn))
	metrics <- prometheus.MustNewConstMetric(c.icmpOut, prometheus.CounterValue, float64(s.IcmpOut))
}

// Copyright 2026 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "repoinvite_api_requests_total",
	Help: "Number of requests sent to the api, by method and status code",
}, []string{"method", "code"})

var APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "repoinvite_api_request_duration_seconds",
	Help:    "Duration of requests sent to the api in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"method"})

var ScenarioStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "repoinvite_scenario_step_duration_seconds",
	Help:    "Duration of the lifecycle scenario steps in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"step", "status"})

var ScenarioRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "repoinvite_scenario_runs_total",
	Help: "Number of lifecycle scenario runs, by result",
}, []string{"status"})

// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InstallPrometheusProvider wires a Prometheus-backed OpenTelemetry meter
// provider as the process-global provider, so that the cache_hits /
// cache_misses counters created by NewCacheMetrics are collected into the
// default global Prometheus registry, with which the exporter registers
// itself. It returns only an error, and this package serves no HTTP
// /metrics endpoint for that registry. This matches the teacher's
// contrib.go.opencensus.io/exporter/prometheus usage pattern adapted to
// OpenTelemetry's native exporter.
func InstallPrometheusProvider() error {
	exporter, err := otelprom.New()
	if err != nil {
		return fmt.Errorf("metrics: creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return nil
}

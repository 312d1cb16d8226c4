package slicer

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/gamebuildmode/wallgrid/internal/slicer"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

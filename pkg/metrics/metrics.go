// Package metrics expone los colectores Prometheus del servicio de salidas de stock.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_release"

var (
	// ReleasesTotal salidas procesadas por resultado.
	// Labels: result (completed, failed, partial)
	ReleasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "total",
			Help:      "Total de salidas procesadas por resultado",
		},
		[]string{"result"},
	)

	// ReleaseDuration duración de una salida completa.
	ReleaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "duration_seconds",
			Help:      "Duración de la orquestación de una salida en segundos",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// DeductionsTotal descuentos por registro.
	// Labels: result (committed, rejected, error), shape
	DeductionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deduction",
			Name:      "total",
			Help:      "Total de transacciones de descuento por resultado",
		},
		[]string{"result", "shape"},
	)

	// NegativeStockTotal descuentos que dejaron stock negativo (clase cotización).
	NegativeStockTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deduction",
			Name:      "negative_total",
			Help:      "Descuentos de cotización que dejaron inventario negativo",
		},
	)

	// RestockRequestsTotal solicitudes de reposición emitidas.
	// Labels: priority (urgent, normal)
	RestockRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "restock",
			Name:      "requests_total",
			Help:      "Total de solicitudes de reposición emitidas",
		},
		[]string{"priority"},
	)

	// EvaluatorFailuresTotal fallos al escribir solicitud o notificación (solo se registran).
	EvaluatorFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "restock",
			Name:      "evaluator_failures_total",
			Help:      "Escrituras de reposición o notificación fallidas",
		},
	)
)

package services

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/Dosada05/commander-ledger/services")

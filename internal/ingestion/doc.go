// Package ingestion turns the AI service's flat key-value output into
// persisted tasks. It groups indexed keys (tarea_1, tiempoEstimado_1,
// horasEstimadas_1) into task records, derives scheduling dates from
// free-text duration estimates, and bulk-inserts the results with
// per-record failure capture.
package ingestion

package ports

// Metrics contadores de negocio del motor de traslados.
type Metrics interface {
	TransferTransition(status string)
	DiscrepancyRaised(reason string)
	DispositionApplied(disposition string)
	MovementRecorded(movementType string)
}

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) TransferTransition(string) {}
func (NopMetrics) DiscrepancyRaised(string)  {}
func (NopMetrics) DispositionApplied(string) {}
func (NopMetrics) MovementRecorded(string)   {}

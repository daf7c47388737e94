package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBurn(_ *BurnEvent) error         { return nil }
func (n *NoopRecorder) RecordPurchase(_ *PurchaseEvent) error { return nil }
func (n *NoopRecorder) RecordSpin(_ *SpinEvent) error         { return nil }
func (n *NoopRecorder) RecordSale(_ *SaleEvent) error         { return nil }
func (n *NoopRecorder) RecordClaim(_ *ClaimEvent) error       { return nil }
func (n *NoopRecorder) Close() error                          { return nil }

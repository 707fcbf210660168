package recorder

import "FundQuant/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunEvent) error                        { return nil }
func (n *NoopRecorder) RecordSeries(_ string, _ *model.SeriesReport) error { return nil }
func (n *NoopRecorder) RecordBond(_ string, _ *model.BondReport) error     { return nil }
func (n *NoopRecorder) Close() error                                       { return nil }

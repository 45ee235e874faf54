package worker

// report_worker.go
// Renders composition PDF reports from QueueReports. The rendered file lands
// at the path the download handler serves from, so generation and download
// stay decoupled through the filesystem.

import (
	"context"
	"encoding/json"

	"github.com/Joaovenera/wms-sub005/internal/infra"
	"github.com/Joaovenera/wms-sub005/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportJobPayload is the job envelope sent to QueueReports.
type ReportJobPayload struct {
	CompositionID string `json:"composition_id"`
}

// ReportWorker renders one composition report per job.
type ReportWorker struct {
	compositions   service.CompositionService
	pdfStoragePath string
}

func NewReportWorker(compositions service.CompositionService, pdfStoragePath string) *ReportWorker {
	return &ReportWorker{compositions: compositions, pdfStoragePath: pdfStoragePath}
}

// Process handles a single report job: load the composition snapshot and
// render it to PDF. Failures are logged, not retried — the client can simply
// request the report again.
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}

	id, err := uuid.Parse(payload.CompositionID)
	if err != nil {
		log.Error().Str("composition_id", payload.CompositionID).Msg("report_worker: invalid composition_id")
		return
	}

	comp, err := w.compositions.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("composition_id", payload.CompositionID).Msg("report_worker: composition not found")
		return
	}

	path, err := infra.GenerateCompositionPDF(comp, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("composition_id", payload.CompositionID).Msg("report_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", path).Str("composition_id", payload.CompositionID).Msg("report_worker: PDF generated")
}

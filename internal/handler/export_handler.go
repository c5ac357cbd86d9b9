package handler

import (
	"net/http"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/middleware"
	"pocket-mini-server/internal/service"
	"pocket-mini-server/pkg/response"

	"github.com/sirupsen/logrus"
)

type ExportHandler struct {
	service *service.ExportService
	log     *logrus.Entry
}

func NewExportHandler(service *service.ExportService, logger *logrus.Entry) *ExportHandler {
	return &ExportHandler{
		service: service,
		log:     logger,
	}
}

// Export sends the session's notes, score and count as pocket-data.json.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.Export(middleware.GetStore(r).Snapshot())
	if err != nil {
		h.log.WithError(err).WithField("session_id", middleware.GetSessionID(r)).Error("export failed")
		response.InternalError(w, "Failed to export data")
		return
	}

	response.Attachment(w, domain.ExportFileName, domain.ExportMIMEType, body)
}

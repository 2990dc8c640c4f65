package shared

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"hrconsole/internal/export"
	"hrconsole/internal/transport/http/api"
	"hrconsole/internal/transport/http/middleware"
)

// WriteExport renders table in the format named by the "format" query
// parameter as a download. The default is CSV.
func WriteExport(w http.ResponseWriter, r *http.Request, table export.Table) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_format", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		slog.Error("export failed", "format", format, "file", table.FileName, "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "export failed", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Attachment(table)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("write export failed", "err", err)
	}
}

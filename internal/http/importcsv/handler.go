package importcsv

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/http/respond"
	"github.com/MrJamesThe3rd/binder/internal/importer"
)

type Service interface {
	ImportFile(ctx context.Context, userID uuid.UUID, format importer.Format, r io.Reader) (*importer.Summary, error)
	ImportLines(ctx context.Context, userID uuid.UUID, lines []importer.Line) (*importer.Summary, error)
}

type Handler struct {
	svc           Service
	maxUploadSize int64
}

func NewHandler(svc Service, maxUploadSize int64) *Handler {
	return &Handler{svc: svc, maxUploadSize: maxUploadSize}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCollection)
}

type linesRequest struct {
	Lines []string `json:"lines"`
}

// importCollection accepts either a multipart upload in the "file" field
// (optional "format": auto, csv or text) or a JSON body of decklist lines.
func (h *Handler) importCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var (
		summary *importer.Summary
		err     error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			http.Error(w, "file field is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		summary, err = h.svc.ImportFile(r.Context(), caller, importer.Format(r.FormValue("format")), file)
	case "application/json":
		var req linesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		summary, err = h.svc.ImportLines(r.Context(), caller, importer.ParseLines(req.Lines))
	default:
		http.Error(w, "expected multipart/form-data or application/json", http.StatusUnsupportedMediaType)
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, summary)
}

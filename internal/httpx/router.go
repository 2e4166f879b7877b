package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/lead-reports/internal/ingest"
	"github.com/AngelCh415/lead-reports/internal/metrics"
	"github.com/AngelCh415/lead-reports/internal/store"
	"github.com/AngelCh415/lead-reports/internal/utils"
)

const uploadField = "file"

// multipart framing on top of the file itself
const multipartSlack = 1 << 20

func NewRouter(log *slog.Logger, st *store.MemoryStore, etl *ingest.ETL, mSvc *metrics.Service, maxUpload int64) http.Handler {
	bodyLimit := int64(0)
	if maxUpload > 0 {
		bodyLimit = maxUpload + multipartSlack
	}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.LimitBody(bodyLimit))
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	mux.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
		id := st.Create()
		utils.ActiveSessions.Set(float64(st.Len()))
		w.Header().Set("Location", "/sessions/"+id)
		writeStatusJSON(w, http.StatusCreated, map[string]string{"session_id": id})
	})

	mux.Route("/sessions/{id}", func(sr chi.Router) {
		sr.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if !st.Exists(id) {
				writeError(w, http.StatusNotFound, store.ErrNotFound)
				return
			}
			f, hdr, err := r.FormFile(uploadField)
			if err != nil {
				var tooBig *http.MaxBytesError
				if errors.As(err, &tooBig) {
					writeError(w, http.StatusRequestEntityTooLarge, ingest.ErrTooLarge)
					return
				}
				http.Error(w, "multipart field \"file\" required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			res, err := etl.Upload(r.Context(), id, hdr.Filename, f)
			if err != nil {
				writeError(w, statusOf(err), err)
				return
			}
			writeJSON(w, res)
		})

		sr.Get("/options/{dimension}", func(w http.ResponseWriter, r *http.Request) {
			opts, err := mSvc.Options(chi.URLParam(r, "id"), chi.URLParam(r, "dimension"))
			if err != nil {
				writeError(w, statusOf(err), err)
				return
			}
			writeJSON(w, opts)
		})

		sr.Get("/reports/{view}", func(w http.ResponseWriter, r *http.Request) {
			rep, err := mSvc.Report(chi.URLParam(r, "id"), chi.URLParam(r, "view"), r.URL.Query())
			if err != nil {
				writeError(w, statusOf(err), err)
				return
			}
			writeJSON(w, rep)
		})

		sr.Get("/dataset", func(w http.ResponseWriter, r *http.Request) {
			page, err := mSvc.Dataset(chi.URLParam(r, "id"), r.URL.Query())
			if err != nil {
				writeError(w, statusOf(err), err)
				return
			}
			writeJSON(w, page)
		})

		sr.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			if !st.Delete(chi.URLParam(r, "id")) {
				writeError(w, http.StatusNotFound, store.ErrNotFound)
				return
			}
			utils.ActiveSessions.Set(float64(st.Len()))
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return mux
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrEmpty), errors.Is(err, metrics.ErrUnknownView):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrUnsupportedFormat), errors.Is(err, ingest.ErrEmptyDataset), errors.Is(err, ingest.ErrMalformed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeStatusJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) { writeStatusJSON(w, http.StatusOK, v) }

func writeStatusJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

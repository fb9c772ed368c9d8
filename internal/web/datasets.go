package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/JonMunkholm/csvapi/internal/config"
	"github.com/JonMunkholm/csvapi/internal/core"
	"github.com/JonMunkholm/csvapi/internal/logging"
	mw "github.com/JonMunkholm/csvapi/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// DatasetRoutes serves CSV uploads and queries over the stored datasets.
type DatasetRoutes struct {
	service     *core.Service
	appName     string
	maxFileSize int64
	upload      *mw.RateLimiter
}

// NewDatasetRoutes creates the dataset route set. When rate limiting is
// enabled, /upload gets its own stricter per-client limit.
func NewDatasetRoutes(service *core.Service, cfg *config.Config) *DatasetRoutes {
	d := &DatasetRoutes{
		service:     service,
		appName:     cfg.App.Name,
		maxFileSize: cfg.Upload.MaxFileSize,
	}
	if cfg.Rate.Enabled {
		d.upload = mw.NewRateLimiter(cfg.Rate.UploadLimit)
	}
	return d
}

// Mount implements Routes.
func (d *DatasetRoutes) Mount(r chi.Router) {
	r.Get("/", d.handleIndex)

	r.Group(func(r chi.Router) {
		if d.upload != nil {
			r.Use(mw.RateLimit(d.upload))
		}
		r.Post("/upload", d.handleUpload)
	})

	r.Route("/data", func(r chi.Router) {
		r.Get("/", d.handleListDatasets)
		r.Get("/{id}", d.handleGetDataset)
		r.Get("/{id}/filter", d.handleFilter)
	})

	r.Get("/uploads/status", d.handleUploadStatus)
}

// Close stops the upload rate limiter.
func (d *DatasetRoutes) Close() {
	if d.upload != nil {
		d.upload.Close()
	}
}

// uploadResponse is the body of a successful upload.
type uploadResponse struct {
	Message          string `json:"message"`
	DatasetID        string `json:"dataset_id"`
	AccessURL        string `json:"access_url"`
	FilterURLExample string `json:"filter_url_example"`
	Rows             int    `json:"rows"`
	Columns          int    `json:"columns"`
}

func (d *DatasetRoutes) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		AppName  string
		Datasets []core.DatasetInfo
	}{
		AppName:  d.appName,
		Datasets: d.service.Datasets(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

func (d *DatasetRoutes) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, d.maxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, core.ErrFileTooLarge)
			return
		}
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file input submitted with nothing selected arrives as a part
		// with an empty filename, which the multipart reader files as a value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			respondError(w, r, core.ErrNoSelectedFile)
			return
		}
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	result, err := d.service.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, uploadResponse{
		Message:          "File uploaded successfully",
		DatasetID:        result.DatasetID,
		AccessURL:        result.AccessURL,
		FilterURLExample: result.FilterURLExample,
		Rows:             result.Rows,
		Columns:          len(result.Columns),
	})
}

func (d *DatasetRoutes) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, d.service.Datasets())
}

func (d *DatasetRoutes) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := d.service.Dataset(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ds.Records())
}

func (d *DatasetRoutes) handleFilter(w http.ResponseWriter, r *http.Request) {
	constraints := core.ConstraintsFromQuery(r.URL.Query())

	result, err := d.service.Filter(r.Context(), chi.URLParam(r, "id"), constraints)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if result.Empty() {
		writeJSON(w, r, http.StatusOK, messageResponse{Message: "No data matches your filter criteria."})
		return
	}
	writeJSON(w, r, http.StatusOK, result.Records)
}

func (d *DatasetRoutes) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, struct {
		core.UploadLimiterStatus
		Datasets int `json:"datasets"`
	}{d.service.UploadLimiterStatus(), d.service.DatasetCount()})
}

package api

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"sheetcheck/app"
	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"
)

// multipartOverhead leaves room for form fields and part headers on top of
// the file itself
const multipartOverhead = 1 << 20

// SchemaView is one registered schema as the API lists it
type SchemaView struct {
	Name        schema.Name         `json:"name"`
	Description string              `json:"description,omitempty"`
	Columns     []schema.ColumnSpec `json:"columns"`
}

func toView(sc schema.Schema) SchemaView {
	return SchemaView{Name: sc.Name, Description: sc.Description, Columns: sc.Columns}
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := s.service.Schemas()
	views := make([]SchemaView, 0, len(schemas))
	for _, sc := range schemas {
		views = append(views, toView(sc))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	name := schema.Name(chi.URLParam(r, "name"))
	sc, err := s.service.Schema(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(sc))
}

// handleValidate accepts either a multipart upload (fields "file" and
// "schema") or a JSON body {"schema": ..., "rows": [...]}
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	preview, err := previewRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var run *report.Run
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "multipart/form-data":
		run, err = s.validateUpload(w, r, preview)
	case mediaType == "application/json" || mediaType == "":
		run, err = s.validateRows(w, r, preview)
	default:
		err = errors.InvalidInput("unsupported content type " + mediaType + ": send multipart/form-data or application/json")
	}
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}

	s.writeRun(w, r, run)
}

func (s *Server) validateUpload(w http.ResponseWriter, r *http.Request, preview int) (*report.Run, error) {
	limit := s.service.Config().MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, bodyError(err, limit)
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.InvalidInput("no file was uploaded: send it in the \"file\" field")
	}
	defer file.Close()

	return s.service.Run(r.Context(), app.Request{
		Schema:      schema.Name(r.FormValue("schema")),
		Filename:    header.Filename,
		Body:        file,
		Size:        header.Size,
		PreviewRows: preview,
	})
}

func (s *Server) validateRows(w http.ResponseWriter, r *http.Request, preview int) (*report.Run, error) {
	limit := s.service.Config().MaxUploadBytes
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, bodyError(err, limit)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("request body is not valid JSON")
	}

	name := schema.Name(gjson.GetBytes(body, "schema").String())
	if name == "" {
		return nil, errors.InvalidInput("\"schema\" is required")
	}
	if _, err := s.service.Schema(name); err != nil {
		return nil, err
	}

	rows := gjson.GetBytes(body, "rows")
	if !rows.Exists() {
		return nil, errors.InvalidInput("\"rows\" is required")
	}
	tbl, err := s.json.FromResult(rows)
	if err != nil {
		return nil, err
	}
	return s.service.ValidateTable(r.Context(), "request body", name, tbl, preview)
}

// writeRun answers with the run as JSON, or as text or markdown when the
// format query parameter asks for it
func (s *Server) writeRun(w http.ResponseWriter, r *http.Request, run *report.Run) {
	format := render.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		if f, err := render.ParseFormat(q); err == nil {
			format = f
		}
	}

	switch format {
	case render.FormatJSON:
		writeJSON(w, http.StatusOK, run)
	case render.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_ = render.Write(w, run, format, render.Options{})
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = render.Write(w, run, format, render.Options{ShowPreview: true, ShowFailures: true})
	}
}

func previewRows(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("preview"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.InvalidInput("preview must be a non-negative integer")
	}
	return n, nil
}

func bodyError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.UploadTooLarge(tooLarge.Limit, limit)
	}
	return errors.InvalidInput("failed to read request body: " + err.Error())
}

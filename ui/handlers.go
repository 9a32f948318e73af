package ui

import (
	stderrors "errors"
	"net/http"
	"strings"

	"sheetcheck/adapters"
	"sheetcheck/app"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/api"
	"sheetcheck/internal/errors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form fields around the file
const multipartOverhead = 1 << 20

func (s *Server) indexData(selected schema.Name) indexPage {
	schemas := s.service.Schemas()
	if selected == "" && len(schemas) > 0 {
		selected = schemas[0].Name
	}
	return indexPage{
		Schemas:   schemas,
		Selected:  selected,
		Accept:    strings.Join(adapters.Extensions(), ","),
		MaxUpload: s.service.Config().MaxUploadBytes,
	}
}

// handleIndex serves the upload form
func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", s.indexData(schema.Name(c.Query("schema"))))
}

// handleValidate validates the uploaded file and renders the report, or the
// form again with the reason the file could not be checked
func (s *Server) handleValidate(c *gin.Context) {
	name := schema.Name(c.PostForm("schema"))
	limit := s.service.Config().MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.renderFormError(c, name, "", errors.UploadTooLarge(tooLarge.Limit, limit))
			return
		}
		s.renderFormError(c, name, "", errors.InvalidInput("Choose a file to upload."))
		return
	}

	file, err := header.Open()
	if err != nil {
		s.renderFormError(c, name, header.Filename, errors.MalformedTable("failed to open upload", err))
		return
	}
	defer file.Close()

	run, err := s.service.Run(c.Request.Context(), app.Request{
		Schema:   name,
		Filename: header.Filename,
		Body:     file,
		Size:     header.Size,
	})
	if err != nil {
		s.renderFormError(c, name, header.Filename, err)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, run)
		return
	}
	s.renderTemplate(c, http.StatusOK, "report.html", newReportPage(run))
}

func (s *Server) renderFormError(c *gin.Context, name schema.Name, source string, err error) {
	data := s.indexData(name)
	data.LastSource = source
	if errors.IsUnknownSchema(err) {
		data.Error = err.Error()
	} else {
		data.Error = "Error reading Excel file: " + err.Error()
	}
	s.renderTemplate(c, api.StatusFor(err), "index.html", data)
}

// handleSchema shows the columns a schema expects
func (s *Server) handleSchema(c *gin.Context) {
	sc, err := s.service.Schema(schema.Name(c.Param("name")))
	if err != nil {
		data := s.indexData("")
		data.Error = err.Error()
		s.renderTemplate(c, http.StatusNotFound, "index.html", data)
		return
	}
	s.renderTemplate(c, http.StatusOK, "schema.html", schemaPage{
		Schema:      sc,
		Description: renderMarkdown(sc.Description),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "schemas": len(s.service.Schemas())})
}

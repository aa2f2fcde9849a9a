// Package digest renders the periodic upload report.
package digest

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
	"github.com/sh3r4rd/upload_reports/internal/model"
)

const subjectPrefix = "S3 Uploads Report - "

var htmlReport = htmltemplate.Must(htmltemplate.New("html").Parse(
	`<html><head></head><body>` +
		`<p>Dear Receiver,</p>` +
		`<p>Please find S3 upload report for the last {{.WindowHours}} hours as below:</p>` +
		`<table border='1'><tr><th>S3 Uri</th><th>Object Name</th><th>Object Size</th><th>Object Type</th><th>Thumbnail URL</th></tr>` +
		`{{range .Records}}<tr><td>{{.URI}}</td><td>{{.Key}}</td><td>{{.ObjectSize}}</td><td>{{.ObjectType}}</td><td>{{.ThumbnailURL}}</td></tr>{{end}}` +
		`</table></body></html>`))

var textReport = template.Must(template.New("text").Parse(
	`Dear Receiver,

Please find S3 upload report for the last {{.WindowHours}} hours as below:

S3 Uri	Object Name	Object Size	Object Type	Thumbnail URL
{{range .Records}}{{.URI}}	{{.Key}}	{{.ObjectSize}}	{{.ObjectType}}	{{.ThumbnailURL}}
{{end}}`))

// Report is the data rendered into both bodies.
type Report struct {
	WindowHours int
	Records     []model.UploadRecord
}

// NewReport builds a Report covering window.
func NewReport(records []model.UploadRecord, window time.Duration) Report {
	return Report{WindowHours: int(window / time.Hour), Records: records}
}

// Subject is the mail subject for a report sent at now.
func Subject(now time.Time) string {
	return subjectPrefix + now.UTC().Format(time.DateOnly)
}

// RenderHTML renders the HTML body: salutation, introduction and one table
// row per record in the given order. Record fields are HTML-escaped.
func RenderHTML(report Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, report); err != nil {
		return "", apperrors.Wrap(apperrors.CodeRender, err, "render html report")
	}
	return buf.String(), nil
}

// RenderText renders the plain-text alternative body.
func RenderText(report Report) (string, error) {
	var buf strings.Builder
	if err := textReport.Execute(&buf, report); err != nil {
		return "", apperrors.Wrap(apperrors.CodeRender, err, "render text report")
	}
	return buf.String(), nil
}

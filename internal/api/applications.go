package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/model"
)

// ListApplications fetches one page of the collection. Filtering by status
// happens server-side; the filter is passed through untouched and pages are
// never re-filtered locally.
func (c *Client) ListApplications(ctx context.Context, page, limit int, status model.Status) (*model.Page, error) {
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if status != "" {
		query.Set("status", string(status))
	}

	var result model.Page
	if err := c.do(ctx, http.MethodGet, "/job-applications", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateApplication creates a new application and returns the server's copy,
// including the server-assigned id.
func (c *Client) CreateApplication(ctx context.Context, payload model.ApplicationPayload) (*model.JobApplication, error) {
	var created model.JobApplication
	if err := c.do(ctx, http.MethodPost, "/job-applications", nil, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateApplication updates an existing application.
func (c *Client) UpdateApplication(ctx context.Context, id string, payload model.ApplicationPayload) (*model.JobApplication, error) {
	var updated model.JobApplication
	if err := c.do(ctx, http.MethodPut, "/job-applications/"+url.PathEscape(id), nil, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteApplication removes an application.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/job-applications/"+url.PathEscape(id), nil, nil, nil)
}

// PDFExport is a downloaded export document.
type PDFExport struct {
	Data     []byte
	Filename string
}

// ExportFallbackFilename is used when the server sends no usable
// Content-Disposition header.
const ExportFallbackFilename = "job-applications.pdf"

// ExportPDF downloads the PDF export. The filename hint comes from the
// Content-Disposition header; rendering happens entirely server-side.
func (c *Client) ExportPDF(ctx context.Context, params model.ExportParams) (*PDFExport, error) {
	query := url.Values{}
	if params.From != "" {
		query.Set("from", params.From)
	}
	if params.To != "" {
		query.Set("to", params.To)
	}
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}

	resp, err := c.send(ctx, http.MethodGet, "/job-applications/export/pdf", query, nil)
	if err != nil {
		return nil, apperror.Export(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Export(fmt.Errorf("reading export body: %w", err))
	}

	return &PDFExport{
		Data:     data,
		Filename: exportFilename(resp.Header.Get("Content-Disposition")),
	}, nil
}

func exportFilename(disposition string) string {
	if disposition == "" {
		return ExportFallbackFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ExportFallbackFilename
	}
	if name := params["filename"]; name != "" {
		return name
	}
	return ExportFallbackFilename
}

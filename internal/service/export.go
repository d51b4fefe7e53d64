package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mfekih/jobtrack/internal/api"
	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/model"
)

// ExportAPI is the slice of the gateway the export flow needs.
type ExportAPI interface {
	ExportPDF(ctx context.Context, params model.ExportParams) (*api.PDFExport, error)
}

// ExportService downloads the server-rendered PDF and writes it to disk.
// An export failure is never fatal: the dialog stays open and the user may
// retry with the same parameters. Nothing is cached — every export is a
// fresh server render.
type ExportService struct {
	api    ExportAPI
	logger *slog.Logger
}

func NewExportService(api ExportAPI, logger *slog.Logger) *ExportService {
	return &ExportService{api: api, logger: logger}
}

// Export fetches the PDF and saves it under dir using the server's filename
// hint. Returns the written path.
func (s *ExportService) Export(ctx context.Context, params model.ExportParams, dir string) (string, error) {
	export, err := s.api.ExportPDF(ctx, params)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(export.Filename))
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return "", apperror.Export(err)
	}

	s.logger.Info("export written",
		slog.String("path", path),
		slog.Int("bytes", len(export.Data)),
	)
	return path, nil
}

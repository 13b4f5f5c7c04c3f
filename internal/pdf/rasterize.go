package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	apperrors "go-doc-ingest/internal/errors"
	"go-doc-ingest/internal/logger"
)

// Rasterizer converts a range of PDF pages into page images, ordered by
// page number.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfData []byte, firstPage, lastPage, dpi int) ([][]byte, error)
}

// popplerRasterizer shells out to pdftoppm from the Poppler suite.
type popplerRasterizer struct {
	binary string
}

// NewPopplerRasterizer returns a Rasterizer backed by the pdftoppm binary.
func NewPopplerRasterizer() Rasterizer {
	return &popplerRasterizer{binary: "pdftoppm"}
}

func (p *popplerRasterizer) Rasterize(ctx context.Context, pdfData []byte, firstPage, lastPage, dpi int) ([][]byte, error) {
	if _, err := exec.LookPath(p.binary); err != nil {
		return nil, apperrors.NewCollaboratorUnavailableError(
			"PDF rasterizer not available",
			fmt.Sprintf("install poppler-utils to provide the %s binary", p.binary),
			err,
		)
	}

	dir, err := os.MkdirTemp("", "rasterize-*")
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create scratch directory", err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, apperrors.NewInternalError("failed to write scratch PDF", err)
	}

	outPrefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, p.binary,
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(firstPage),
		"-l", strconv.Itoa(lastPage),
		pdfPath, outPrefix,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, apperrors.NewCollaboratorUnavailableError(
			"PDF rasterization failed",
			string(output),
			err,
		)
	}

	pattern := outPrefix + "-*.png"
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return nil, apperrors.NewDecodeFailureError("rasterizer produced no page images", err)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(files)

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			logger.WithError(err).WithField("file", f).Warn("Failed to read rasterized page")
			continue
		}
		pages = append(pages, data)
	}

	logger.WithFields(logrus.Fields{
		"pages": len(pages),
		"dpi":   dpi,
	}).Debug("Rasterized PDF pages")

	return pages, nil
}

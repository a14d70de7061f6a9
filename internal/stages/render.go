package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"

	"golang.org/x/sync/errgroup"
)

const sourcePDF = "source.pdf"

// PageRenderer turns a PDF scan into one PNG image per page.
type PageRenderer interface {
	Render(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error)
}

// MagickRenderer renders PDF pages through ImageMagick.
type MagickRenderer struct{}

// Render writes pdf to a scratch directory and rasterizes up to maxPages
// pages concurrently. Page order is preserved in the result.
func (MagickRenderer) Render(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error) {
	tempDir, err := os.MkdirTemp("", "intake-render-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %w", ErrRenderFailed, err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, sourcePDF)
	if err := os.WriteFile(pdfPath, pdf, 0600); err != nil {
		return nil, fmt.Errorf("%w: write temp pdf: %w", ErrRenderFailed, err)
	}

	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
	}

	allPages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrRenderFailed, err)
	}
	if len(allPages) == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrRenderFailed)
	}
	if maxPages > 0 && len(allPages) > maxPages {
		allPages = allPages[:maxPages]
	}

	images := make([][]byte, len(allPages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderWorkerCount(len(allPages)))

	for i, page := range allPages {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			data, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i+1, err)
			}

			images[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	return images, nil
}

func renderWorkerCount(pageCount int) int {
	return max(min(runtime.NumCPU(), pageCount), 1)
}

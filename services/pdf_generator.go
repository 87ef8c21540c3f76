package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"kjsb_flow_app_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)


// getChromePath returns the Chrome executable path from environment variable
func getChromePath() string {
	return os.Getenv("CHROME_PATH")
}

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
	Timeout         time.Duration
}

// DefaultPDFOptions returns A4 portrait with 2cm margins
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       57,
		MarginBottom:    57,
		MarginLeft:      57,
		MarginRight:     57,
		Timeout:         30 * time.Second,
	}
}

// GeneratePDF renders HTML content to PDF using headless Chrome
func GeneratePDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	// Custom Chrome path (headless-shell in Docker)
	if chromePath := getChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth, paperHeight = 8.5, 14.0
	case "letter":
		paperWidth, paperHeight = 8.5, 11.0
	default: // A4
		paperWidth, paperHeight = 8.27, 11.69
	}
	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(float64(options.MarginTop) / 72.0).
				WithMarginBottom(float64(options.MarginBottom) / 72.0).
				WithMarginLeft(float64(options.MarginLeft) / 72.0).
				WithMarginRight(float64(options.MarginRight) / 72.0).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// RenderCaseSummaryHTML renders the printable summary body of a case
func RenderCaseSummaryHTML(c *models.Case, printedAt time.Time) (string, error) {
	var buf bytes.Buffer
	body := caseSummaryBody(BuildCaseSummary(c), printedAt.Format("2006-01-02 15:04"))
	if err := body.Render(context.Background(), &buf); err != nil {
		return "", fmt.Errorf("failed to render case summary: %w", err)
	}
	return buf.String(), nil
}

// GenerateCaseSummaryPDF prints the summary of a case
func GenerateCaseSummaryPDF(ctx context.Context, c *models.Case) ([]byte, error) {
	body, err := RenderCaseSummaryHTML(c, time.Now())
	if err != nil {
		return nil, err
	}
	return GeneratePDF(ctx, WrapHTMLForPDF(body), DefaultPDFOptions())
}

// WrapHTMLForPDF wraps a rendered body with print styles
func WrapHTMLForPDF(content string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, Helvetica, sans-serif;
            font-size: 10pt;
            color: #111;
        }
        h1 {
            font-size: 15pt;
            margin-bottom: 12pt;
        }
        h2 {
            font-size: 12pt;
            margin-top: 14pt;
            margin-bottom: 6pt;
            border-bottom: 1px solid #999;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            text-align: left;
            padding: 3pt 6pt;
            vertical-align: top;
        }
        th {
            width: 40%;
            font-weight: normal;
            color: #444;
        }
        .printed {
            margin-top: 24pt;
            font-size: 8pt;
            color: #666;
        }
    </style>
</head>
<body>
` + content + `
</body>
</html>`
}

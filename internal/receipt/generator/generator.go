// Package generator writes one-page PDF receipts.
//
// Layout coordinates are in points on a US Letter page measured from the top
// edge. Every string is passed through rtl.Visual before it is drawn.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"programtrack/internal/platform/metrics"
	programmodels "programtrack/internal/program/models"
	"programtrack/internal/receipt/models"
	"programtrack/internal/receipt/rtl"
	"programtrack/internal/receipt/signature"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/requestcontext"
)

const (
	arabicFamily   = "Arabic"
	fallbackFamily = "Helvetica"

	margin      = 50.0
	sigBoxW     = 250.0
	sigBoxH     = 120.0
	sigBoxRight = 300.0
	sigBoxTop   = 430.0

	placeholderY = 420.0

	placeholder = "[التوقيع محفوظ]"
)

// ProgramLookup resolves the display name of a program.
type ProgramLookup interface {
	FindByName(ctx context.Context, englishName string) (*programmodels.Program, error)
}

// Config controls where receipts go and how they are rendered.
type Config struct {
	DataDir string
	// FontPath is a TrueType font with Arabic coverage. When empty or
	// unreadable the core Helvetica font is used.
	FontPath string
	Compress bool
}

// Generator renders receipts. It is safe for concurrent use; each call builds
// its own document.
type Generator struct {
	cfg      Config
	programs ProgramLookup
	font     []byte
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(g *Generator)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) {
		g.tracer = t
	}
}

// New builds a Generator, loading the configured font once.
func New(cfg Config, programs ProgramLookup, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		programs: programs,
		logger:   slog.Default(),
		tracer:   otel.Tracer("programtrack/receipt"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if cfg.FontPath != "" {
		font, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			g.logger.Warn("arabic font unavailable, receipts will use Helvetica",
				"font_path", cfg.FontPath,
				"error", err.Error(),
			)
		} else {
			g.font = font
		}
	}
	return g
}

// Path is where the receipt of nationalID in program is written.
func (g *Generator) Path(program, nationalID string) string {
	return filepath.Join(g.cfg.DataDir, program, nationalID+".pdf")
}

// Generate writes <dataDir>/<program>/<nationalID>.pdf, overwriting any
// earlier receipt. A signature that cannot be decoded is replaced by a text
// placeholder and reported through Receipt.SignatureEmbedded; only failure to
// write the document is an error.
func (g *Generator) Generate(ctx context.Context, program, nationalID, fullName, signatureDataURI string) (*models.Receipt, error) {
	ctx, span := g.tracer.Start(ctx, "receipt.Generate", trace.WithAttributes(
		attribute.String("program", program),
		attribute.String("national_id", nationalID),
	))
	defer span.End()

	if strings.ContainsAny(nationalID, `/\`) || strings.TrimSpace(nationalID) == "" || nationalID == ".." {
		return nil, dErrors.New(dErrors.CodeValidation, "national id cannot be used as a file name")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)
	programName := g.programDisplayName(ctx, program)

	doc := g.newDocument(ctx)
	doc.pdf.SetCreationDate(now)
	doc.pdf.AddPage()
	doc.header(programName)
	doc.details(nationalID, fullName, now)
	doc.acknowledgment(fullName, programName)

	sig, sigErr := signature.Decode(signatureDataURI)
	embedded := false
	if sigErr == nil {
		embedded = doc.signatureImage(sig)
	}
	if !embedded {
		doc.right(12, placeholderY, placeholder)
		g.logger.WarnContext(ctx, "signature not embedded in receipt",
			"request_id", requestcontext.RequestID(ctx),
			"program", program,
			"national_id", nationalID,
			"error", errString(sigErr),
		)
		if g.metrics != nil {
			g.metrics.SignatureFallbacks.Inc()
		}
	}
	doc.footer(now)
	span.SetAttributes(attribute.Bool("signature_embedded", embedded))

	path := g.Path(program, nationalID)
	if err := g.save(doc, path); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write receipt")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write receipt")
	}

	if g.metrics != nil {
		g.metrics.ReceiptsGenerated.Inc()
		g.metrics.ObserveReceipt(start)
	}
	g.logger.InfoContext(ctx, "receipt generated",
		"request_id", requestcontext.RequestID(ctx),
		"program", program,
		"national_id", nationalID,
		"path", path,
		"signature_embedded", embedded,
	)
	return &models.Receipt{Path: path, SignatureEmbedded: embedded, GeneratedAt: now}, nil
}

func (g *Generator) programDisplayName(ctx context.Context, program string) string {
	if g.programs == nil {
		return program
	}
	p, err := g.programs.FindByName(ctx, program)
	if err != nil {
		return program
	}
	return p.DisplayName()
}

func (g *Generator) newDocument(ctx context.Context) *document {
	if g.font != nil {
		pdf := basePDF(g.cfg.Compress)
		err := registerFont(pdf, g.font)
		if err == nil {
			return &document{pdf: pdf, family: arabicFamily, tr: func(s string) string { return s }}
		}
		g.logger.WarnContext(ctx, "arabic font could not be registered, using Helvetica",
			"font_path", g.cfg.FontPath,
			"error", err.Error(),
		)
	}
	pdf := basePDF(g.cfg.Compress)
	return &document{pdf: pdf, family: fallbackFamily, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (g *Generator) save(doc *document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create receipt directory: %w", err)
	}
	if err := doc.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

// registerFont adds font as the Arabic family. The TrueType parser can panic
// on truncated files, which is reported as an error.
func registerFont(pdf *fpdf.Fpdf, font []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse font: %v", rec)
		}
	}()
	pdf.AddUTF8FontFromBytes(arabicFamily, "", font)
	return pdf.Error()
}

func basePDF(compress bool) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetCreator("programtrack", false)
	return pdf
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, signature.ErrEmpty) {
		return "no signature supplied"
	}
	return err.Error()
}

// document wraps one page being drawn. tr converts text for the active font.
type document struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (d *document) text(size float64, s string) string {
	d.pdf.SetFont(d.family, "", size)
	return d.tr(rtl.Visual(s))
}

// centered draws s centred on the page with its baseline at y.
func (d *document) centered(size, y float64, s string) {
	t := d.text(size, s)
	w, _ := d.pdf.GetPageSize()
	d.pdf.Text((w-d.pdf.GetStringWidth(t))/2, y, t)
}

// right draws s ending at the right margin with its baseline at y.
func (d *document) right(size, y float64, s string) {
	t := d.text(size, s)
	w, _ := d.pdf.GetPageSize()
	d.pdf.Text(w-margin-d.pdf.GetStringWidth(t), y, t)
}

func (d *document) rule(y float64) {
	w, _ := d.pdf.GetPageSize()
	d.pdf.SetLineWidth(1)
	d.pdf.Line(margin, y, w-margin, y)
}

func (d *document) header(programName string) {
	d.centered(24, 80, "إيصال استلام")
	d.centered(16, 120, "البرنامج: "+programName)
	d.rule(140)
}

func (d *document) details(nationalID, fullName string, now time.Time) {
	d.right(14, 180, "رقم الهوية: "+nationalID)
	d.right(14, 210, "الاسم الكامل: "+fullName)
	d.right(14, 240, "تاريخ الاستلام: "+now.Format("2006-01-02 15:04:05"))
}

func (d *document) acknowledgment(fullName, programName string) {
	d.right(12, 290, "إقرار بالاستلام:")
	d.right(11, 315, fmt.Sprintf("أقر أنا، %s، بأنني قد استلمت المواد/الأغراض", fullName))
	d.right(11, 335, fmt.Sprintf("من %s.", programName))
	d.right(12, 390, "التوقيع:")
}

// signatureImage draws sig scaled to fit the signature box, centred. It
// reports false, leaving the document usable, when fpdf rejects the image.
func (d *document) signatureImage(sig *signature.Image) bool {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := d.pdf.RegisterImageOptionsReader("signature", opts, bytes.NewReader(sig.PNG))
	if !d.pdf.Ok() || info == nil || sig.Width == 0 || sig.Height == 0 {
		d.pdf.ClearError()
		return false
	}

	scale := min(sigBoxW/float64(sig.Width), sigBoxH/float64(sig.Height))
	w, h := float64(sig.Width)*scale, float64(sig.Height)*scale
	pageW, _ := d.pdf.GetPageSize()
	x := pageW - sigBoxRight + (sigBoxW-w)/2
	y := sigBoxTop + (sigBoxH-h)/2
	d.pdf.ImageOptions("signature", x, y, w, h, false, opts, 0, "")
	if !d.pdf.Ok() {
		d.pdf.ClearError()
		return false
	}
	return true
}

func (d *document) footer(now time.Time) {
	_, h := d.pdf.GetPageSize()
	d.rule(h - 80)
	d.centered(10, h-60, "هذا إيصال رسمي")
	d.centered(10, h-45, fmt.Sprintf("تم الإنشاء بتاريخ %s الساعة %s",
		now.Format("2006-01-02"), now.Format("15:04:05")))
}

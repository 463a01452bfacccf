// ABOUTME: PDF ingestion: extracts text with ledongthuc/pdf and structures it with the language model
// ABOUTME: The model answers with JSON only, which is repaired, decoded and validated
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harper/wodsmith/internal/completion"
	"github.com/harper/wodsmith/internal/llm"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ErrNoText is returned for PDFs without extractable text, usually scans
var ErrNoText = errors.New("no extractable text in PDF")

// ModeIngest labels structuring calls in metrics
const ModeIngest = "ingest"

const structureSystemPrompt = `Sos un asistente especializado en programación de CrossFit.
Convertí la rutina escrita en texto libre al JSON estructurado indicado.

REGLAS:
1. Devolvé SOLO el JSON, sin markdown ni explicaciones.
2. El JSON tiene que ser válido.
3. Si un campo no aparece en el texto, usá null.
4. Inferí grupos musculares e intensidad a partir de los ejercicios.
5. Fechas en formato YYYY-MM-DD.
6. semana_id con formato semana_YYYY_WNN, donde NN es la semana ISO del año.
7. movimientos_olimpicos solo puede incluir: clean, snatch, jerk, clean_and_jerk, deadlift, push press.
8. patron_movimiento_fuerza es uno de: sentadilla, empuje, tirón, bisagra, OLY.
9. formato del WOD es uno de: AMRAP, For Time, EMOM, Rounds, Escalera.
10. intensidad_estimada es una de: baja, media, media-alta, alta.

Estructura:
{"semana_id": "...", "fecha_inicio": "...", "dias": [{"dia": "...", "fecha": "...",
"tipo_bloque_principal": "FUERZA|OLY", "core": {"rondas": 3, "ejercicios": [{"nombre": "...", "reps": "..."}]},
"bloque_principal": {"tipo": "FUERZA|OLY", "descripcion": "...", "movimiento": "...", "sets": 5, "reps": "4", "variante_principiante": "..."},
"wod": {"formato": "...", "duracion": 14, "rondas": null, "time_cap": null, "ejercicios": [{"nombre": "...", "reps": "...", "escala": "..."}]},
"accesorios": {"rondas": 3, "ejercicios": [{"nombre": "...", "reps": "..."}]},
"metadata": {"grupos_musculares": ["..."], "movimientos_olimpicos": [], "intensidad_estimada": "...", "patron_movimiento_fuerza": "..."}}]}`

// ExtractText returns the plain text of every page that has any, pages joined by a blank line
func ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return strings.Join(pages, "\n\n"), nil
}

// Recorder receives structuring latencies
type Recorder interface {
	ObserveLLMCall(mode string, d time.Duration)
}

// PDFParser turns routine PDFs into validated records
type PDFParser struct {
	llm      llm.Completer
	recorder Recorder
	logger   *zap.Logger
}

// NewPDFParser creates a parser using the given completer for structuring
func NewPDFParser(completer llm.Completer, logger *zap.Logger) *PDFParser {
	return &PDFParser{llm: completer, logger: logging.OrNop(logger)}
}

// SetRecorder attaches a latency recorder
func (p *PDFParser) SetRecorder(r Recorder) {
	p.recorder = r
}

// Parse extracts and structures the routine in the PDF at path
func (p *PDFParser) Parse(ctx context.Context, path string) (*models.WeekRoutine, error) {
	text, err := ExtractText(path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("pdf text extracted", zap.String("path", path), zap.Int("chars", len(text)))
	return p.ParseText(ctx, text)
}

// ParseText structures free-form routine text
func (p *PDFParser) ParseText(ctx context.Context, text string) (*models.WeekRoutine, error) {
	start := time.Now()
	raw, err := p.llm.Complete(ctx, llm.CompletionRequest{
		System:      structureSystemPrompt,
		Messages:    []models.Message{models.UserMessage("Convertí esta rutina al formato JSON indicado:\n\n" + text)},
		MaxTokens:   4096,
		Temperature: 0.1,
	})
	if p.recorder != nil {
		p.recorder.ObserveLLMCall(ModeIngest, time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to structure routine: %w", err)
	}

	payload, err := completion.ParsePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse structured routine: %w", err)
	}

	record, err := routine.Validate(payload)
	if err != nil {
		return nil, err
	}

	p.logger.Info("routine structured", zap.String("semana_id", record.WeekID), zap.Int("dias", len(record.Days)))
	return record, nil
}

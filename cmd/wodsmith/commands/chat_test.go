// ABOUTME: Tests for the chat loop with a scripted processor
// ABOUTME: Covers slash commands, draft printing and exit handling

package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/ingest"
	"github.com/harper/wodsmith/internal/models"
)

type scriptedProcessor struct {
	record *models.WeekRoutine
	seen   []string
}

func (p *scriptedProcessor) Process(_ context.Context, s *core.Session, utterance string) core.Outcome {
	p.seen = append(p.seen, utterance)
	if strings.Contains(utterance, "aprobar") {
		s.Approved = true
		return core.Outcome{Reply: "guardada", Intent: models.IntentApprove, State: core.StateApproved}
	}
	s.CurrentRoutine = p.record.Clone()
	return core.Outcome{Reply: "borrador listo", Intent: models.IntentGenerate, State: core.StateDrafting}
}

func fixedNow() time.Time {
	return time.Date(2025, 1, 29, 10, 0, 0, 0, time.UTC)
}

func runScript(t *testing.T, input string) (string, *scriptedProcessor) {
	t.Helper()
	record, err := ingest.ReadFile("../../../data/processed/semana_01.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	proc := &scriptedProcessor{record: record}

	var out bytes.Buffer
	if err := chatLoop(context.Background(), strings.NewReader(input), &out, proc, fixedNow); err != nil {
		t.Fatalf("chatLoop error = %v", err)
	}
	return out.String(), proc
}

func TestChatLoop_DraftAndApprove(t *testing.T) {
	out, proc := runScript(t, "quiero una semana de fuerza\naprobar\n/salir\n")

	if len(proc.seen) != 2 {
		t.Fatalf("expected 2 processed messages, got %v", proc.seen)
	}
	if !strings.Contains(out, "borrador listo") || !strings.Contains(out, "guardada") {
		t.Errorf("replies missing from output:\n%s", out)
	}
	if strings.Count(out, "## Lunes") != 1 {
		t.Errorf("draft should be printed once after generation, got:\n%s", out)
	}
	if !strings.Contains(out, "¡Hasta la próxima!") {
		t.Error("expected goodbye on /salir")
	}
}

func TestChatLoop_SlashCommands(t *testing.T) {
	out, proc := runScript(t, "/rutina\n\nhola\n/rutina\n/nueva\n/rutina\n")

	if len(proc.seen) != 1 {
		t.Errorf("slash commands and blank lines should not reach the processor, got %v", proc.seen)
	}
	if strings.Count(out, noDraft) != 2 {
		t.Errorf("expected the no-draft notice before and after /nueva, got:\n%s", out)
	}
	if !strings.Contains(out, "Conversación reiniciada") {
		t.Error("expected reset notice")
	}
	// once after generate, once for /rutina
	if strings.Count(out, "## Lunes") != 2 {
		t.Errorf("expected draft printed twice, got:\n%s", out)
	}
}

func TestChatLoop_EOF(t *testing.T) {
	out, proc := runScript(t, "")
	if len(proc.seen) != 0 {
		t.Error("nothing should be processed on empty input")
	}
	if !strings.Contains(out, "/nueva") {
		t.Error("greeting should list the chat commands")
	}
}

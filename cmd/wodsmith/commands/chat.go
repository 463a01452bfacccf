// ABOUTME: Interactive chat command: one conversation in the terminal
// ABOUTME: Slash commands reset the session, show the current draft or exit
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/spf13/cobra"
)

const (
	chatPrompt   = "\n🏋️  > "
	chatGreeting = `Hola, soy tu asistente de programación de CrossFit.
Contame qué semana necesitás (objetivo, movimientos a incluir o evitar, intensidad).

Comandos: /nueva (empezar de cero), /rutina (ver la rutina actual), /salir`
	noDraft = "Todavía no hay rutina. Contame qué semana querés."
)

// processor runs one conversational turn
type processor interface {
	Process(ctx context.Context, s *core.Session, utterance string) core.Outcome
}

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive planning conversation",
		Long: `Start an interactive conversation to draft a CrossFit week.

Describe the week you want; the assistant drafts it from your most similar
stored weeks. Ask for changes in plain language and write "aprobar" when
you are happy to store it as a reference.

Commands inside the chat:
  /nueva    discard the conversation and start over
  /rutina   print the current draft
  /salir    exit`,
		RunE: runChat,
	}

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Config.RequireLLM(); err != nil {
		return err
	}

	seeded, err := a.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seeding collection: %w", err)
	}
	if seeded > 0 && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Cargadas %d semanas de referencia.\n", seeded)
	}

	return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.Orchestrator, time.Now)
}

// chatLoop reads lines from in until EOF, /salir or cancellation
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, proc processor, now func() time.Time) error {
	s := core.NewSession(now())
	fmt.Fprintln(out, chatGreeting)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/salir", "/exit":
			fmt.Fprintln(out, "¡Hasta la próxima!")
			return nil
		case "/nueva":
			s = core.NewSession(now())
			fmt.Fprintln(out, "Conversación reiniciada. Contame qué semana querés.")
			continue
		case "/rutina":
			if !s.HasRoutine() {
				fmt.Fprintln(out, noDraft)
				continue
			}
			fmt.Fprintln(out, routine.ToMarkdown(s.CurrentRoutine))
			continue
		}

		outcome := proc.Process(ctx, s, line)
		fmt.Fprintln(out)
		fmt.Fprintln(out, outcome.Reply)
		drafted := outcome.Intent == models.IntentGenerate || outcome.Intent == models.IntentEdit
		if outcome.Err == nil && drafted && s.HasRoutine() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, routine.ToMarkdown(s.CurrentRoutine))
		}
	}
}

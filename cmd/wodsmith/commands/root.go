// ABOUTME: Root command and global flags for the wodsmith CLI
// ABOUTME: Registers every subcommand and enforces mutually exclusive output flags
package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██╗    ██╗ ██████╗ ██████╗ ███████╗███╗   ███╗██╗████████╗██╗  ██╗
██║    ██║██╔═══██╗██╔══██╗██╔════╝████╗ ████║██║╚══██╔══╝██║  ██║
██║ █╗ ██║██║   ██║██║  ██║███████╗██╔████╔██║██║   ██║   ███████║
██║███╗██║██║   ██║██║  ██║╚════██║██║╚██╔╝██║██║   ██║   ██╔══██║
╚███╔███╔╝╚██████╔╝██████╔╝███████║██║ ╚═╝ ██║██║   ██║   ██║  ██║
 ╚══╝╚══╝  ╚═════╝ ╚═════╝ ╚══════╝╚═╝     ╚═╝╚═╝   ╚═╝   ╚═╝  ╚═╝`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wodsmith",
		Short: "CrossFit weekly programming assistant",
		Long: banner + `

Conversational assistant that drafts CrossFit training weeks from your
own stored weeks. Ask for a week, refine it in conversation, and approve
it to store it as a reference for future weeks.

Environment:
  LLM_API_KEY / GROQ_API_KEY / OPENAI_API_KEY   chat completion key
  VECTOR_BACKEND                                sqlite (default), charm or memory
  SEED_DIR                                      weeks loaded when the collection is empty`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "table", "json":
			default:
				return errors.New("--format must be auto, table or json")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

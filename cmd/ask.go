package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/listing-assistant/internal/model"
)

var askRecord bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the envelope as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return eris.New("question is required")
		}

		env, err := initApp(cmd.Context(), "ask", askRecord)
		if err != nil {
			return err
		}
		defer env.Close()

		return printEnvelope(cmd.OutOrStdout(), env.Dispatcher.Handle(cmd.Context(), query))
	},
}

func printEnvelope(w io.Writer, env model.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return eris.Wrap(err, "encode envelope")
	}
	return nil
}

func init() {
	askCmd.Flags().BoolVar(&askRecord, "record", false, "write the answer to the query log")
	rootCmd.AddCommand(askCmd)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rivet/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Explain a diagnostic code",
	Long: `Explain prints the extended description of a diagnostic code,
for example: rivet explain OWN3004`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	id := strings.ToUpper(strings.TrimSpace(args[0]))

	code, ok := diag.ParseCodeID(id)
	if !ok {
		cmd.SilenceUsage = true
		return fmt.Errorf("unknown diagnostic code: %s", id)
	}

	title := code.Title()
	if useColor(cmd, os.Stdout) {
		title = color.New(color.Bold).Sprint(title)
	}
	fmt.Fprintf(os.Stdout, "%s: %s\n", code.ID(), title)

	if detail := code.Detail(); detail != "" {
		fmt.Fprintf(os.Stdout, "\n%s\n", detail)
	} else {
		fmt.Fprintln(os.Stdout, "\nno extended description is recorded for this code yet")
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aretw0/tally/internal/presentation/tui"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <address>",
	Short: "Fetch and pretty-print an account from a running server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		server, _ := cmd.Flags().GetString("server")

		addr, err := domain.ParseAddress(args[0])
		if err != nil {
			fmt.Printf("Invalid address: %v\n", err)
			os.Exit(1)
		}

		resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/%s", strings.TrimRight(server, "/"), addr))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			fmt.Printf("Reading response: %v\n", err)
			os.Exit(1)
		}
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Server returned %s: %s\n", resp.Status, strings.TrimSpace(string(body)))
			os.Exit(1)
		}

		// Plain JSON when piped, rendered markdown on a terminal.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Println(string(body))
			return
		}

		var view domain.AccountView
		if err := json.Unmarshal(body, &view); err != nil {
			fmt.Printf("Decoding account: %v\n", err)
			os.Exit(1)
		}

		render := tui.NewRenderer()
		out, err := render(accountMarkdown(&view))
		if err != nil {
			fmt.Println(string(body))
			return
		}
		fmt.Print(out)
	},
}

// accountMarkdown formats an account view as a small markdown document.
func accountMarkdown(view *domain.AccountView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Account `%s`\n\n", view.Address)
	fmt.Fprintf(&b, "- **kind**: %s\n", view.Kind)
	fmt.Fprintf(&b, "- **lamports**: %d\n", view.Lamports)

	if view.Fields != nil {
		fields, err := json.MarshalIndent(view.Fields, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "\n```json\n%s\n```\n", fields)
		}
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("server", "s", "http://localhost:8372", "Base URL of the tally server")
}

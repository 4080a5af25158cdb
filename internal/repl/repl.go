package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/leengari/simpledb/internal/command"
	"github.com/leengari/simpledb/internal/storage/manager"
)

// Start runs an interactive prompt on stdin/stdout
func Start(ctx context.Context, registry *manager.Registry) {
	fmt.Println("Welcome to SimpleDB")
	fmt.Println("Type 'exit' or '\\q' to quit.")
	Run(os.Stdin, os.Stdout, command.NewSession(ctx, registry))
}

// Run reads commands line by line until EOF or an exit command
func Run(in io.Reader, out io.Writer, session *command.Session) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, prompt(session))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if line == "exit" || line == "\\q" {
			return
		}

		result, err := session.Execute(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		PrintResult(out, result)
	}
}

func prompt(session *command.Session) string {
	if db := session.Database(); db != "" {
		return db + "> "
	}
	return "> "
}

// PrintResult renders a result as an aligned table
func PrintResult(w io.Writer, res *command.Result) {
	if res.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
		return
	}

	if len(res.Columns) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

		// Header - show type when known
		for i, col := range res.Columns {
			if i < len(res.Types) && res.Types[i] != "" {
				fmt.Fprintf(tw, "%s (%s)", col, res.Types[i])
			} else {
				fmt.Fprintf(tw, "%s", col)
			}
			if i < len(res.Columns)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)

		// Separator
		for i := range res.Columns {
			fmt.Fprintf(tw, "---")
			if i < len(res.Columns)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)

		for _, row := range res.Rows {
			for i, val := range row {
				fmt.Fprintf(tw, "%v", val)
				if i < len(row)-1 {
					fmt.Fprintf(tw, "\t")
				}
			}
			fmt.Fprintln(tw)
		}
		tw.Flush()
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
}

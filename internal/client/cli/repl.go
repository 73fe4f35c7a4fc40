package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// repl reads one command per line until EOF, "exit" or "quit". Command
// errors are printed and the loop goes on.
func (a *App) repl(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to followctl (type 'help' for commands)")
	scanner := bufio.NewScanner(a.in)

	for {
		fmt.Fprint(a.out, "followctl> ")
		if !scanner.Scan() {
			return
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if parts[0] == "exit" || parts[0] == "quit" {
			return
		}

		if err := a.exec(ctx, parts); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

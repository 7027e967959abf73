// Command passcheck checks a candidate password against the service policy
// from the terminal, without sending it anywhere.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/myfinance/finauth/internal/server/password"
)

func main() {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading password: %v\n", err)
		os.Exit(1)
	}

	candidate := string(raw)
	res := password.Validate(candidate)

	fmt.Printf("score:    %d/100 (%s)\n", res.Score, password.StrengthDescription(res.Score))
	if res.Valid {
		fmt.Println("verdict:  acceptable")
	} else {
		fmt.Println("verdict:  rejected")
		for _, e := range res.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if suggestions := password.SuggestImprovements(candidate); len(suggestions) > 0 {
		fmt.Println("suggestions:")
		for _, s := range suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}

	if !res.Valid {
		os.Exit(1)
	}
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// validateProjection checks a JMESPath expression before any request fires,
// so a typo fails fast instead of after a network round trip.
func validateProjection(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("invalid -query expression: %w", err)
	}
	return nil
}

// printProjection applies a JMESPath expression to the payload and prints the
// result as indented JSON. The payload round-trips through JSON first so the
// expression sees the wire field names, not Go struct names.
func printProjection(w io.Writer, expr string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("rebuild payload: %w", err)
	}

	result, err := jmespath.Search(expr, doc)
	if err != nil {
		return fmt.Errorf("evaluate -query expression: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return writef(w, "%s\n", out)
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
func confirm(prompt string) (bool, error) {
	if err := writef(os.Stdout, "%s", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

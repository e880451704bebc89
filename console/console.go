// Package console - Interactive operator console: prompts, listings and the menu loop.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nvr-ai/go-anpr/controller"
	"github.com/nvr-ai/go-anpr/registry"
)

// Console reads operator answers line by line and writes prompts.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a console over in and out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Printf writes a formatted line fragment to the operator.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ReadLine prints prompt and returns the next input line without surrounding whitespace.
// io.EOF is returned once the input is exhausted.
func (c *Console) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Decide implements controller.Prompter.
func (c *Console) Decide(ctx context.Context, plate string) (controller.Decision, error) {
	if err := ctx.Err(); err != nil {
		return controller.Decision{}, err
	}

	answer, err := c.ReadLine(fmt.Sprintf("Vehicle %s is not registered. Register it? (yes/no): ", plate))
	if err != nil {
		return controller.Decision{}, err
	}
	if !isYes(answer) {
		return controller.Decision{}, nil
	}

	name, err := c.ReadLine("Enter owner name: ")
	if err != nil {
		return controller.Decision{}, err
	}
	phone, err := c.ReadLine("Enter phone number: ")
	if err != nil {
		return controller.Decision{}, err
	}
	return controller.Decision{Register: true, OwnerName: name, Phone: phone}, nil
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

// PrintRecords writes the registry as a table.
func PrintRecords(w io.Writer, records []registry.VehicleRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No vehicles registered yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPlate Number\tOwner\tPhone")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Plate, r.OwnerName, r.Phone)
	}
	tw.Flush()
}

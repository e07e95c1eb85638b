package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers line by line for the terminal session commands.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints q and returns the trimmed reply. ok is false at end of input.
func (p *prompter) ask(q string) (string, bool) {
	fmt.Fprint(p.out, q)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// paragraph reads lines until a blank line after some text, or end of input.
func (p *prompter) paragraph(q string) string {
	fmt.Fprintln(p.out, q)
	var lines []string
	for p.in.Scan() {
		line := p.in.Text()
		if strings.TrimSpace(line) == "" && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Command retrobasic runs a BASIC program file against a stdio console.
// It is the minimal driver for the interpreter core; window/display
// hosting is a separate adapter behind the basic.Display interface.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/antibyte/retrobasic/pkg/basic"
	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// stdioConsole adapts stdin/stdout to the basic.Console collaborator.
type stdioConsole struct {
	in *bufio.Reader
}

func (c *stdioConsole) Write(text string)     { fmt.Print(text) }
func (c *stdioConsole) WriteLine(text string) { fmt.Println(text) }

func (c *stdioConsole) ReadLine() (string, bool) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, true
}

func (c *stdioConsole) Clear() { fmt.Print("\033[2J\033[H") }

// ReadKey is non-blocking per the Console contract; a plain terminal has
// no raw key queue, so INKEY$ reads empty here.
func (c *stdioConsole) ReadKey() string { return "" }

func main() {
	if err := configuration.Initialize("settings.cfg"); err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: retrobasic <program.bas>")
		os.Exit(2)
	}

	source, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	console := &stdioConsole{in: bufio.NewReader(os.Stdin)}
	interp := basic.NewInterp(console, nil)
	defer interp.Reset()

	if err := interp.Execute(string(source)); err != nil {
		os.Exit(1)
	}
}

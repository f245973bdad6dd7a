package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

func cmdShell(a *app, _ []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          a.cfg.Chip + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("cannot start shell: %v", err)
	}
	defer rl.Close()

	// Keep command output in step with the prompt.
	sh := *a
	sh.out = rl.Stdout()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := sh.runLine(line); quit {
			return nil
		}
	}
}

// runLine runs one line of shell input and reports whether the shell should exit.
func (a *app) runLine(line string) bool {
	args, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	switch strings.ToLower(args[0]) {
	case "quit", "exit", "q":
		return true
	case "shell":
		fmt.Fprintln(a.out, "error: already in the shell")
		return false
	}
	if err := a.run(args); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
	return false
}

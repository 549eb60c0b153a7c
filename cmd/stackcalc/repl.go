package main

import (
	"bytes"
	"strings"

	"go.uber.org/multierr"

	"github.com/wippyai/value-runtime/runtime"
	"github.com/wippyai/value-runtime/value"
)

// Session commands. A line that is not a command is split on whitespace and every
// token is read as a numeric literal.
const (
	cmdPop   = "pop"
	cmdPrint = ":p"
	cmdReset = ":r"
	cmdQuit  = ":q"
)

const emptyLine = "(empty)"

type evalResult struct {
	lines []string
	quit  bool
}

// eval runs one line of session input against rt.
func eval(rt *runtime.Runtime, line string) (evalResult, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return evalResult{}, nil
	}

	if len(tokens) == 1 {
		switch tokens[0] {
		case cmdQuit:
			return evalResult{quit: true}, nil

		case cmdReset:
			rt.Reset()
			return evalResult{lines: []string{"stack cleared"}}, nil

		case cmdPrint:
			return printStack(rt)

		case cmdPop:
			s, ok, err := rt.PopFormat()
			if err != nil {
				return evalResult{}, err
			}
			if !ok {
				return evalResult{lines: []string{emptyLine}}, nil
			}
			return evalResult{lines: []string{s}}, nil
		}
	}

	vs, err := parseTokens(tokens)
	if err != nil {
		return evalResult{}, err
	}
	if err := rt.Stack().Extend(vs...); err != nil {
		return evalResult{}, err
	}
	return printStack(rt)
}

// parseTokens parses every token and reports all bad ones together. Nothing is
// returned unless every token is a literal.
func parseTokens(tokens []string) ([]value.Value, error) {
	vs := make([]value.Value, 0, len(tokens))
	var errs error
	for _, tok := range tokens {
		v, err := value.ParseLiteral(tok)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		vs = append(vs, v)
	}
	if errs != nil {
		return nil, errs
	}
	return vs, nil
}

// printStack renders the stack bottom first.
func printStack(rt *runtime.Runtime) (evalResult, error) {
	if rt.Stack().IsEmpty() {
		return evalResult{lines: []string{emptyLine}}, nil
	}
	var buf bytes.Buffer
	if err := rt.Print(&buf); err != nil {
		return evalResult{}, err
	}
	return evalResult{lines: strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")}, nil
}

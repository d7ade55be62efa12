// gotoken mints, verifies and rotates credentials from the command line using
// an engine configured by a settings file and GOTOKEN_* environment variables.
//
// Usage:
//
//	gotoken keygen [--length n] [--master]
//	gotoken mint   --config gotoken.yaml --subject user-1 [--pair]
//	gotoken verify --config gotoken.yaml [--kind access|refresh] <token>
//	gotoken rotate --config gotoken.yaml <refresh-token>
//	gotoken report --config gotoken.yaml
//	gotoken bench  --config gotoken.yaml [--pairs n] [--ops n] [--concurrency n]
//
// Results are written to stdout as JSON. Logs go to stderr. The exit status
// identifies the failure kind so scripts can branch on it.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	goToken "github.com/MrEthical07/goToken"
)

const (
	exitOK               = 0
	exitFailure          = 1
	exitUsage            = 2
	exitConfiguration    = 3
	exitInvalidSignature = 4
	exitAudienceMismatch = 5
	exitExpired          = 6
	exitInvalidSubject   = 7
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{name: "keygen", summary: "generate signing secrets", run: runKeygen},
	{name: "mint", summary: "mint an access token or an access/refresh pair", run: runMint},
	{name: "verify", summary: "verify a token and print its claims", run: runVerify},
	{name: "rotate", summary: "exchange a refresh token for a new access token", run: runRotate},
	{name: "report", summary: "print the engine security report", run: runReport},
	{name: "bench", summary: "measure verify and rotate throughput in process", run: runBench},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return exitUsage
	}

	if err := cmd.run(args[1:], stdout, stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: gotoken <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
}

// exitError carries an explicit exit status for failures that do not come
// from the engine.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func usageError(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	switch goToken.KindOf(err) {
	case goToken.KindConfiguration:
		return exitConfiguration
	case goToken.KindInvalidSignature:
		return exitInvalidSignature
	case goToken.KindAudienceMismatch:
		return exitAudienceMismatch
	case goToken.KindExpired:
		return exitExpired
	case goToken.KindInvalidSubject:
		return exitInvalidSubject
	default:
		return exitFailure
	}
}

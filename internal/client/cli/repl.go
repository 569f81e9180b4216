package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Photo(ctx context.Context, args []string) error
	Doc(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Retry(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	SetOffline(ctx context.Context, offline bool) error
	Prune(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  photo <subject> <path> [caption]   capture a photo
  doc <subject> <path>               capture a document
  (l)ist [subject]                   list captures
  delete <id>                        delete a capture
  retry                              re-queue failed uploads
  sync                               upload now
  status                             show sync state
  online | offline                   leave or force offline mode
  prune <days>                       free content uploaded more than <days> ago
  exit | quit                        leave the program`

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit", or until ctx is cancelled.
//
// Errors returned by handlers are printed and otherwise ignored, so one
// failed command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("capture (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "photo":
			err = a.Photo(ctx, args)
		case "doc":
			err = a.Doc(ctx, args)
		case "l", "list":
			err = a.List(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "retry":
			err = a.Retry(ctx)
		case "sync":
			err = a.Sync(ctx)
		case "status":
			err = a.Status(ctx)
		case "online":
			err = a.SetOffline(ctx, false)
		case "offline":
			err = a.SetOffline(ctx, true)
		case "prune":
			err = a.Prune(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

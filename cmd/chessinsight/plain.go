package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aschepis/backscratcher/chessinsight/chat"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/ui"
)

// runPlain analyses the game and answers questions read line by line from in.
// It returns when in is exhausted, the user types "quit" or ctx is done.
func runPlain(ctx context.Context, service ui.InsightService, in io.Reader, out, errOut io.Writer) error {
	info := service.Info()
	_, _ = fmt.Fprintf(out, "%s (%s)\n%s\n\n", info.Provider, info.Model, info.Game)

	last := -1
	result, err := service.Analyze(ctx, func(percent float64) {
		if p := int(percent); p != last {
			last = p
			_, _ = fmt.Fprintf(errOut, "\rBuilding AI context... %d%%", p)
		}
	})
	_, _ = fmt.Fprintln(errOut)
	if result == nil {
		return err
	}
	if err != nil {
		if !llm.IsCancelled(err) {
			_, _ = fmt.Fprintf(errOut, "%s: %s\n", ui.ErrorTitle(err), ui.ErrorMessage(err))
		}
		if ctx.Err() != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out, result.GameContext)
	if result.Overview != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", result.Overview)
	}

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		answer, err := service.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, chat.ErrEmptyQuestion) {
				continue
			}
			_, _ = fmt.Fprintf(errOut, "%s: %s\n", ui.ErrorTitle(err), ui.ErrorMessage(err))
			continue
		}
		_, _ = fmt.Fprintln(out, answer)
	}
}

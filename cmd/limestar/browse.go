package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/limestar/pkg/core/services"
)

const browseHelp = `Commands:
  /q <text>     search (plain text without a slash works too)
  /t <tag>      toggle a tag filter
  /c            clear tag filters
  /p <n>        go to page n
  /tags         show tags
  /a <url> [note]  add a link
  /d <id>       delete a link
  /r            refresh
  /quit         exit`

// lockedWriter serializes output from the input loop and from query
// callbacks, which may run on timer goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func browseCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive search and tag filtering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			out := &lockedWriter{w: cmd.OutOrStdout()}

			v := services.NewView(ctx, a.client, a.client, services.ViewConfig{
				Debounce:   a.cfg.Debounce,
				PageSize:   a.cfg.PageSize,
				Categories: a.cfg.Categories,
				Logger:     a.logger,
				OnLinks:    func(s services.LinkState) { printLinkState(out, s) },
			})
			defer v.Close()

			if err := v.Start(ctx); err != nil {
				a.logger.Warn("initial load failed", "error", err)
			}

			lines := make(chan string)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					select {
					case lines <- sc.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if quit := browseLine(ctx, a, v, out, line); quit {
						return nil
					}
				}
			}
		},
	}
}

// browseLine runs one input line and reports whether the user asked to quit.
func browseLine(ctx context.Context, a *app, v *services.View, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		v.SetSearch(line)
		return false
	}

	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch verb {
	case "/quit", "/exit":
		return true
	case "/help", "/?":
		fmt.Fprintln(out, browseHelp)
	case "/q":
		v.SetSearch(arg)
	case "/t":
		if arg == "" {
			err = errors.New("tag name required")
			break
		}
		if _, err = v.ToggleTag(ctx, arg); err == nil {
			fmt.Fprintf(out, "Tags: %s\n", selectionLabel(v.SelectedTags()))
		}
	case "/c":
		err = v.ClearTags(ctx)
	case "/p":
		var n int
		n, err = strconv.Atoi(arg)
		if err == nil {
			err = v.SetPage(ctx, n)
		} else {
			err = fmt.Errorf("invalid page %q", arg)
		}
	case "/tags":
		if cats := v.Categories(); len(cats) > 0 {
			printCategories(out, cats)
		} else {
			printTags(out, services.VisibleTags(v.Tags().Tags))
		}
	case "/a":
		if err = a.requireLogin(); err != nil {
			break
		}
		rawURL, note, _ := strings.Cut(arg, " ")
		if l, aerr := v.AddLink(ctx, rawURL, note); aerr != nil {
			err = aerr
		} else {
			fmt.Fprintf(out, "Added link %d: %s\n", l.ID, l.URL)
		}
	case "/d":
		if err = a.requireLogin(); err != nil {
			break
		}
		var id int64
		if id, err = parseID(arg); err == nil {
			err = v.DeleteLink(ctx, id)
		}
	case "/r":
		err = v.Refresh(ctx)
	default:
		err = fmt.Errorf("unknown command %s, try /help", verb)
	}

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return false
}

func selectionLabel(selected []string) string {
	if len(selected) == 0 {
		return "(none)"
	}
	tags := make([]string, len(selected))
	for i, t := range selected {
		tags[i] = "#" + t
	}
	return strings.Join(tags, " ")
}

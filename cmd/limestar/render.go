package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/core/services"
)

func printLinks(w io.Writer, links []domain.Link, total, page int, hasMore bool) {
	if len(links) == 0 {
		fmt.Fprintln(w, "No links.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, l := range links {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.ID, truncate(linkTitle(l), 60), l.Domain, tagList(l.Tags))
	}
	tw.Flush()

	more := ""
	if hasMore {
		more = ", more available"
	}
	fmt.Fprintf(w, "%d shown, %d total, page %d%s\n", len(links), total, page, more)
}

func printLink(w io.Writer, l *domain.Link) {
	fmt.Fprintf(w, "ID:          %d\n", l.ID)
	fmt.Fprintf(w, "URL:         %s\n", l.URL)
	fmt.Fprintf(w, "Title:       %s\n", linkTitle(*l))
	if l.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", l.Description)
	}
	if l.UserNote != nil && *l.UserNote != "" {
		fmt.Fprintf(w, "Note:        %s\n", *l.UserNote)
	}
	if l.Domain != "" {
		fmt.Fprintf(w, "Domain:      %s\n", l.Domain)
	}
	if len(l.Tags) > 0 {
		fmt.Fprintf(w, "Tags:        %s\n", tagList(l.Tags))
	}
	if !l.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Added:       %s\n", l.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !l.IsProcessed {
		fmt.Fprintln(w, "(metadata pending)")
	}
}

func printTags(w io.Writer, tags []domain.TagWithCount) {
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tags {
		fmt.Fprintf(tw, "#%s\t%d\n", t.Name, t.Count)
	}
	tw.Flush()
}

func printCategories(w io.Writer, cats []domain.CategoryWithTags) {
	if len(cats) == 0 {
		fmt.Fprintln(w, "No categories.")
		return
	}
	for _, c := range cats {
		fmt.Fprintf(w, "%s (%d)\n", c.Name, c.Count)
		for _, t := range c.Tags {
			fmt.Fprintf(w, "  #%s (%d)\n", t.Name, t.Count)
		}
	}
}

func printLinkState(w io.Writer, s services.LinkState) {
	switch {
	case s.IsLoading:
		fmt.Fprintln(w, "Loading...")
	case s.Status == services.StatusError:
		fmt.Fprintf(w, "Error: %v\n", s.Err)
	case s.Status == services.StatusReady:
		printLinks(w, s.Links, s.Total, s.Filter.Page, s.HasMore)
	}
}

func linkTitle(l domain.Link) string {
	if t := strings.TrimSpace(l.Title); t != "" {
		return t
	}
	return l.URL
}

func tagList(tags []domain.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = "#" + t.Name
	}
	return strings.Join(names, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

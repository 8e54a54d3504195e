package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/core/services"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

func listCmd(open opener) *cobra.Command {
	var (
		page int
		tag  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List links, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.client.ListLinks(cmd.Context(), ports.ListParams{
				Page:     page,
				PageSize: a.cfg.PageSize,
				Tag:      tag,
			})
			if err != nil {
				return err
			}
			printLinks(cmd.OutOrStdout(), p.Items, p.Total, p.Page, p.HasMore)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().StringVar(&tag, "tag", "", "only links carrying this tag")
	return cmd
}

func searchCmd(open opener) *cobra.Command {
	var (
		page int
		tags []string
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search links by text and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sel := services.NewTagSelection(tags...)
			q := services.NewLinkQuery(a.client, domain.LinkFilter{
				Query:    strings.TrimSpace(strings.Join(args, " ")),
				Tags:     sel.Names(),
				Page:     page,
				PageSize: a.cfg.PageSize,
			}, services.WithLinkQueryLogger(a.logger))
			defer q.Close()

			if err := q.Refetch(cmd.Context()); err != nil {
				return err
			}
			s := q.State()
			printLinks(cmd.OutOrStdout(), s.Links, s.Total, s.Filter.Page, s.HasMore)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "require this tag (repeatable)")
	return cmd
}

func showCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show link details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			l, err := a.client.GetLink(cmd.Context(), id)
			if err != nil {
				return err
			}
			printLink(cmd.OutOrStdout(), l)
			return nil
		},
	}
}

func addCmd(open opener) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "add [url]",
		Short: "Save a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := domain.NormalizeLinkURL(args[0])
			if err != nil {
				return err
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			input := ports.CreateLinkInput{URL: target}
			if n := strings.TrimSpace(note); n != "" {
				input.UserNote = &n
			}
			l, err := a.client.CreateLink(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added link %d: %s\n", l.ID, l.URL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "personal note")
	return cmd
}

func editCmd(open opener) *cobra.Command {
	var (
		title       string
		description string
		note        string
		tagIDs      []int64
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a link's title, description, note or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var input ports.UpdateLinkInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				input.Title = &title
			}
			if flags.Changed("description") {
				input.Description = &description
			}
			if flags.Changed("note") {
				input.UserNote = &note
			}
			if flags.Changed("tags") {
				input.TagIDs = tagIDs
			}
			if input.Title == nil && input.Description == nil && input.UserNote == nil && input.TagIDs == nil {
				return fmt.Errorf("nothing to change")
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			l, err := a.client.UpdateLink(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			printLink(cmd.OutOrStdout(), l)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVarP(&note, "note", "n", "", "new personal note")
	cmd.Flags().Int64SliceVar(&tagIDs, "tags", nil, "replace tags with these tag ids")
	return cmd
}

func deleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			if err := a.client.DeleteLink(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted link %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid link id %q", s)
	}
	return id, nil
}

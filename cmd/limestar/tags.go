package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/limestar/pkg/core/services"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

func tagsCmd(open opener) *cobra.Command {
	var (
		categories bool
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags with link counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			q := services.NewTagQuery(a.client,
				services.WithCategories(categories),
				services.WithTagQueryLogger(a.logger))
			defer q.Close()

			if err := q.Refetch(cmd.Context()); err != nil {
				return err
			}
			s := q.State()
			out := cmd.OutOrStdout()
			switch {
			case categories && all:
				printCategories(out, s.Categories)
			case categories:
				printCategories(out, services.VisibleCategories(s.Categories))
			case all:
				printTags(out, s.Tags)
			default:
				printTags(out, services.VisibleTags(s.Tags))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&categories, "categories", "c", false, "group tags by category")
	cmd.Flags().BoolVar(&all, "all", false, "include tags without links")
	return cmd
}

func tagCreateCmd(open opener) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "tag-create [name]",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("tag name required")
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireLogin(); err != nil {
				return err
			}

			t, err := a.client.CreateTag(cmd.Context(), ports.CreateTagInput{Name: name, Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tag #%s (%d)\n", t.Name, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "hex color, e.g. #22c55e")
	return cmd
}

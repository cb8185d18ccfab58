package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var mentorsCmd = &cobra.Command{
	Use:   "mentors [query]",
	Short: "List or search mentors by name, role or expertise",
	RunE: func(cmd *cobra.Command, args []string) error {
		results := current.mentors.Search(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			cmd.Println(mutedStyle.Render("no mentors match"))
			return nil
		}
		for _, m := range results {
			renderMentorCard(out, m)
		}
		return nil
	},
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
)

var dossierCmd = &cobra.Command{
	Use:   "dossier <mentorID> <idea...>",
	Short: "Generate a structured mentorship dossier for a startup idea",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, ok := current.mentors.FindByID(args[0])
		if !ok {
			return fmt.Errorf("unknown mentor %q", args[0])
		}

		controller := chatService.NewController(m, current.transport, chatService.WithLogger(current.logger))
		defer controller.Close()

		dossier, err := controller.RequestDossier(cmd.Context(), strings.Join(args[1:], " "))
		if err != nil {
			var genErr *chatService.GenerationError
			if errors.As(err, &genErr) {
				return errors.New(genErr.Notice)
			}
			return err
		}

		renderDossier(cmd.OutOrStdout(), m, dossier)
		return nil
	},
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/meetpilot/pkg/agendachat"
	"github.com/haivivi/meetpilot/pkg/cli"
)

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Create or revise meeting agendas",
}

var agendaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate an agenda from a form",
	Long: `Generate an agenda from a form file.

Example form.yaml:
  title: Sales Strategy Meeting with MedNova Health
  purpose: Present our analytics platform and agree on a pilot
  meeting_duration: "01:30:00"
  type_of_meeting: Sales Meeting
  participants:
    - Emily Chen (Procurement Manager)
    - Dr. Lucas Raymond (Medical Director)

Examples:
  meetpilot agenda create -f form.yaml
  meetpilot agenda create -f form.yaml --json -o agenda.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := agendaService(cmd)
		if err != nil {
			return err
		}
		form, err := cli.LoadRequest[agendachat.AgendaForm](inputFile)
		if err != nil {
			return err
		}
		agenda, err := svc.Create(cmd.Context(), form)
		if err != nil {
			return err
		}
		return outputResult(agenda)
	},
}

var agendaChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Revise an agenda through a chat request",
	Long: `Revise an agenda. The request holds the current agenda and the chat
messages. Requests unrelated to the agenda return it unchanged.

Example chat.yaml:
  agenda:
    title: Weekly Sync
    checklist: [Review blockers]
  messages:
    - role: user
      content: Add a slot for the release plan`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := agendaService(cmd)
		if err != nil {
			return err
		}
		req, err := cli.LoadRequest[agendachat.ChatRequest](inputFile)
		if err != nil {
			return err
		}
		agenda, verdict, err := svc.Chat(cmd.Context(), req.Agenda, req.Messages)
		if err != nil {
			return err
		}
		if !verdict.OnTopic {
			cli.PrintError("request ignored: %s", verdict.Reasoning)
		}
		return outputResult(agenda)
	},
}

func agendaService(cmd *cobra.Command) (*agendachat.Service, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("request file is required (-f)")
	}
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	r, err := newRunner(cmd.Context(), cfg, cfg.Inference.AgendaModel)
	if err != nil {
		return nil, err
	}
	return agendachat.NewService(r), nil
}

func init() {
	agendaCmd.AddCommand(agendaCreateCmd)
	agendaCmd.AddCommand(agendaChatCmd)
}

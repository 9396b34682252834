package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/errors"
)

func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the topology service's last inventory collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient(nil)
			if err != nil {
				return err
			}
			st, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			printKeyValue("Service", StyleLink.Render(client.BaseURL()))
			last := "never"
			if st.LastCollection != nil {
				last = st.LastCollection.Local().Format(time.DateTime)
				last += StyleDim.Render(" (" + time.Since(*st.LastCollection).Round(time.Second).String() + " ago)")
			}
			printKeyValue("Collected", last)
			printKeyValue("Status", orDash(st.LastStatus))
			if st.LastMessage != "" {
				printKeyValue("Message", st.LastMessage)
			}
			if st.Collecting {
				printInfo("A collection is running")
			}
			return nil
		},
	}
}

func (c *CLI) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Ask the topology service to collect its inventory again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient(nil)
			if err != nil {
				return err
			}
			if err := client.Refresh(cmd.Context()); err != nil {
				if errors.Is(err, errors.ErrCodeInvalidState) {
					printWarning("A collection is already running")
					return nil
				}
				return err
			}
			printSuccess("Collection started")
			printNextStep("Follow it with", "topoview status")
			return nil
		},
	}
}

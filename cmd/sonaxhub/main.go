package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sonaxhub/internal/app"
	"sonaxhub/internal/functions"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sonaxhub",
		Short:         "Sonax click-to-call connector for HubSpot",
		Long:          "Serves the CRM card's functions over HTTP and runs them one-off from the shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		resolveCmd(),
		callCmd(),
		forwardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// errFailed signals a printed failure response; the message is already on stdout.
var errFailed = errors.New("function reported failure")

// invoke runs one function and prints its JSON envelope.
func invoke(ctx context.Context, cmd *cobra.Command, name string, params functions.Parameters) error {
	a, err := app.Load()
	if err != nil {
		return err
	}

	resp, invokeErr := a.Registry.Invoke(ctx, name, params)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if invokeErr != nil {
		return errFailed
	}
	return nil
}

func resolveCmd() *cobra.Command {
	var properties []string

	cmd := &cobra.Command{
		Use:   "resolve <object-type-code> <object-id>",
		Short: "Resolve a CRM object to its normalized record",
		Example: `  sonaxhub resolve 0-1 123
  sonaxhub resolve 2-1234567 42 --properties phone,name`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := functions.Parameters{"objectTypeId": args[0], "objectId": args[1]}
			if len(properties) > 0 {
				params["properties"] = properties
			}
			return invoke(cmd.Context(), cmd, functions.GetContactData, params)
		},
	}

	cmd.Flags().StringSliceVar(&properties, "properties", nil, "Properties to fetch for custom objects")
	return cmd
}

func callCmd() *cobra.Command {
	var agentID, extension string

	cmd := &cobra.Command{
		Use:   "call <phone-number>",
		Short: "Start a call through the call webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd.Context(), cmd, functions.InitiateCall, functions.Parameters{
				"agentId":     agentID,
				"extension":   extension,
				"phoneNumber": args[0],
			})
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "Agent (CRM user) ID")
	cmd.Flags().StringVar(&extension, "extension", "", "Agent extension")
	return cmd
}

func forwardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forward <user-id> <phone-number>",
		Short: "Send a user and phone number to the forward webhook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd.Context(), cmd, functions.SendToWebhook, functions.Parameters{
				"userId":      args[0],
				"phoneNumber": args[1],
			})
		},
	}
}

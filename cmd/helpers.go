package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/khrees2412/cvbuilder/internal/app"
	"github.com/spf13/cobra"
)

var errAppNotInitialized = errors.New("application not initialized")

func appFromCmd(cmd *cobra.Command) (*app.App, error) {
	application := app.GetAppFromContext(cmd.Context())
	if application == nil {
		return nil, errAppNotInitialized
	}
	return application, nil
}

// sessionFromCmd returns the app and a context carrying the logged in user
func sessionFromCmd(cmd *cobra.Command) (*app.App, context.Context, error) {
	application, err := appFromCmd(cmd)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := application.WithSession(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return application, ctx, nil
}

// changedString returns a pointer to the flag value when it was set on the
// command line, nil otherwise
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func printField(label, value string) {
	if value == "" {
		value = mutedStyle.Render("-")
	}
	fmt.Printf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

package main

import (
	"fmt"
	"os"

	"cloud-drive/internal/client"

	"github.com/spf13/cobra"
)

var (
	credentialsPath string
	serverURL       string
)

var rootCmd = &cobra.Command{
	Use:           "drive",
	Short:         "Command line client for cloud-drive",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "credentials file (default: ~/.config/cloud-drive/credentials.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (overrides the credentials file)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func getCredentialsPath() string {
	if credentialsPath != "" {
		return credentialsPath
	}
	return client.DefaultCredentialsPath()
}

func loadCredentials() (*client.Credentials, error) {
	creds, err := client.LoadCredentials(getCredentialsPath())
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		creds.Server = serverURL
	}
	return creds, nil
}

// getClient returns a client authenticated with the stored access token.
func getClient() (*client.Client, error) {
	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: run 'drive login' first", client.ErrNotLoggedIn)
	}
	return client.New(creds.Server, client.WithToken(creds.AccessToken)), nil
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"cloud-drive/internal/client"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	email := loginEmail
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	c := client.New(creds.Server)
	tokens, err := c.Login(cmd.Context(), email, string(password))
	if err != nil {
		return err
	}

	creds.Email = email
	creds.AccessToken = tokens.AccessToken
	creds.RefreshToken = tokens.RefreshToken
	if err := creds.Save(getCredentialsPath()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
	return nil
}

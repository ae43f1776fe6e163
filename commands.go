package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-authgate/accountgate/internal/bootstrap"
	"github.com/go-authgate/accountgate/internal/config"
	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/identity"
	"github.com/go-authgate/accountgate/internal/util"
)

var (
	errCredentialsRequired = errors.New("-email and -password are required")
	errEmailRequired       = errors.New("-email is required")
	errLocalOnly           = errors.New("useradd requires IDENTITY_PROVIDER=local")
	errCommandFailed       = errors.New("operation failed")
)

// openApp wires the account service for one-shot CLI commands.
func openApp() (*bootstrap.Application, error) {
	cfg := config.Load()
	logger, err := bootstrap.NewLogger(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, logger)
}

// printResult writes the result as JSON and reports failure as an error so the
// process exits non-zero.
func printResult(w io.Writer, result core.AuthResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Success {
		return errCommandFailed
	}
	return nil
}

func credentialFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	email := fs.String("email", "", "Account email address")
	password := fs.String("password", "", "Account password")
	return fs, email, password
}

func runLogin(args []string) error {
	fs, email, password := credentialFlags("login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errCredentialsRequired
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	result := app.AccountService.AuthenticateUser(context.Background(), *email, *password)
	return printResult(os.Stdout, result)
}

func runDeleteAccount(args []string) error {
	fs, email, password := credentialFlags("delete-account")
	token := fs.String("token", "", "ID token of a recent sign-in (instead of -email/-password)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" && (*email == "" || *password == "") {
		return errCredentialsRequired
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	ctx := context.Background()
	var result core.AuthResult
	if *token != "" {
		result = app.AccountService.DeleteUserAccount(ctx, &core.UserHandle{IDToken: *token})
	} else {
		result = app.AccountService.DeleteAccountWithCredentials(ctx, *email, *password)
	}
	return printResult(os.Stdout, result)
}

func runUserAdd(args []string) error {
	fs, email, password := credentialFlags("useradd")
	name := fs.String("name", "", "Display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errEmailRequired
	}

	generated := *password == ""
	if generated {
		pw, err := util.GeneratePassword(16)
		if err != nil {
			return err
		}
		*password = pw
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	local, ok := app.Provider.(*identity.LocalProvider)
	if !ok {
		return errLocalOnly
	}

	user, err := local.CreateUser(context.Background(), *email, *password, *name)
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
	if generated {
		fmt.Printf("Generated password: %s\n", *password)
	}
	return nil
}

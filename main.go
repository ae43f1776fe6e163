//	@title			AccountGate API
//	@version		1.0
//	@description	Email/password sign-in and account deletion over an identity provider
//	@BasePath		/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the ID token.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-authgate/accountgate/internal/bootstrap"
	"github.com/go-authgate/accountgate/internal/config"
	"github.com/go-authgate/accountgate/internal/version"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	var err error
	switch args[0] {
	case "server":
		err = bootstrap.Run(config.Load())
	case "login":
		err = runLogin(args[1:])
	case "delete-account":
		err = runDeleteAccount(args[1:])
	case "useradd":
		err = runUserAdd(args[1:])
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND [ARGS]\n\n", os.Args[0])
	fmt.Println("Account sign-in and deletion over an identity provider")
	fmt.Println("\nCommands:")
	fmt.Println("  server            Start the account API server")
	fmt.Println("  login             Sign in with -email and -password")
	fmt.Println("  delete-account    Delete an account with -email/-password or -token")
	fmt.Println("  useradd           Create a local account (IDENTITY_PROVIDER=local)")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

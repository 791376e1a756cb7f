package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/credvault/credvault/internal/adapter"
	"github.com/credvault/credvault/internal/config"
	"github.com/credvault/credvault/internal/crypto"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/vault"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("credvault-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	codec := crypto.NewEnvelopeCodec(crypto.NewKeyService())
	session := vault.NewSession(0, codec, serverAdapter, log)

	cli := &cli{
		adapter: serverAdapter,
		session: session,
		in:      bufio.NewScanner(os.Stdin),
	}

	if err = cli.run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

type cli struct {
	adapter adapter.ServerAdapter
	session *vault.Session
	in      *bufio.Scanner
}

func (c *cli) run(ctx context.Context) error {
	fmt.Println("commands: register, login, unlock, lock, list, add, delete, rotate, logout, quit")

	for {
		fmt.Print("> ")
		if !c.in.Scan() {
			return c.in.Err()
		}

		var err error
		switch cmd := strings.TrimSpace(c.in.Text()); cmd {
		case "":
			continue
		case "register":
			err = c.register(ctx)
		case "login":
			err = c.login(ctx)
		case "unlock":
			err = c.session.Unlock(ctx, c.prompt("master password"))
		case "lock":
			c.session.Lock()
		case "list":
			err = c.list(ctx)
		case "add":
			err = c.session.AddOrUpdate(ctx, c.prompt("label"), c.prompt("username"), c.prompt("password"))
		case "delete":
			err = c.session.Delete(ctx, c.prompt("label"))
		case "rotate":
			err = c.rotate(ctx)
		case "logout":
			err = c.adapter.Logout(ctx)
		case "quit", "exit":
			return nil
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}

		if err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (c *cli) register(ctx context.Context) error {
	if err := c.adapter.Register(ctx, c.prompt("username"), c.prompt("password")); err != nil {
		return err
	}

	fmt.Println("registered; run login to sign in")
	return nil
}

func (c *cli) login(ctx context.Context) error {
	challenge, err := c.adapter.BeginLogin(ctx, c.prompt("username"), c.prompt("password"))
	if err != nil {
		return err
	}

	if challenge.TotpSecret != "" {
		fmt.Println("first login: add this secret to your authenticator")
		fmt.Println("  secret:", challenge.TotpSecret)
		fmt.Println("  uri:   ", challenge.TotpURI)
	}

	return c.confirm(ctx, challenge.PendingMarker)
}

func (c *cli) rotate(ctx context.Context) error {
	challenge, err := c.adapter.RotateTotp(ctx, c.prompt("current code"))
	if err != nil {
		return err
	}

	fmt.Println("add the replacement secret to your authenticator")
	fmt.Println("  secret:", challenge.TotpSecret)
	fmt.Println("  uri:   ", challenge.TotpURI)

	return c.confirm(ctx, challenge.PendingMarker)
}

func (c *cli) confirm(ctx context.Context, marker string) error {
	if _, err := c.adapter.CompleteLogin(ctx, marker, c.prompt("one-time code")); err != nil {
		return err
	}

	fmt.Println("signed in")
	return nil
}

func (c *cli) list(ctx context.Context) error {
	outcomes, err := c.session.ListDecryptedPartial(ctx)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Println("  (unreadable entry:", o.Err, ")")
			continue
		}
		fmt.Printf("  %s\t%s\t%s\n", o.Entry.Label, o.Entry.Username, o.Entry.Password)
	}

	return nil
}

func (c *cli) prompt(field string) string {
	fmt.Printf("%s: ", field)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

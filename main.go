// tibschat - persona-driven terminal chat for local models.
//
// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/tibsdev/tibschat/internal/cli"
	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/session"
	"github.com/tibsdev/tibschat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)

	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))

	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))

	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))

	case cli.CmdPersonas:
		exitOnError(cli.HandlePersonas(args))

	case cli.CmdModels:
		exitOnError(cli.HandleModels(args))

	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))

	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))

	case cli.CmdMigrate:
		exitOnError(cli.HandleMigrate(args))

	case cli.CmdVersion:
		cli.HandleVersion()

	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// runTUI boots a session and hands it to the Bubble Tea chat view.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		cli.HandleErrorAndExit(cli.WrapError(err, "failed to load configuration"))
	}

	sess, err := session.New(cfg)
	if err != nil {
		cli.HandleErrorAndExit(err)
	}
	if args.Model != "" {
		sess.Model = args.Model
	}
	if args.Persona != "" {
		if err := sess.SelectPersona(args.Persona); err != nil {
			cli.HandleErrorAndExit(err)
		}
	}

	if err := chat.Run(sess, cfg); err != nil {
		cli.HandleErrorAndExit(err)
	}
}

// exitOnError prints the error and exits with its mapped code.
func exitOnError(err error) {
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}
	cli.HandleErrorAndExit(err)
}

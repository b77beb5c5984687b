package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vncsmyrnk/devchain/internal/adapters/devnet"
	"github.com/vncsmyrnk/devchain/internal/logging"
)

var (
	addrFlag = cli.StringFlag{
		Name:   "addr",
		Value:  ":8545",
		Usage:  "JSON-RPC and API listen address",
		EnvVar: "DEVCHAIN_ADDR",
	}
	chainIDFlag = cli.Uint64Flag{
		Name:   "chainid",
		Value:  devnet.DefaultChainID,
		Usage:  "chain id reported to clients and used for signatures",
		EnvVar: "DEVCHAIN_CHAIN_ID",
	}
	artifactsFlag = cli.StringFlag{
		Name:   "artifacts",
		Usage:  "directory holding contracts/<Name>.sol/<Name>.json artifacts (default: built-in)",
		EnvVar: "DEVCHAIN_ARTIFACTS",
	}
	journalFlag = cli.StringFlag{
		Name:   "journal",
		Value:  ":memory:",
		Usage:  "SQLite deployment journal for modules deployed through the API",
		EnvVar: "DEVCHAIN_JOURNAL",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  logging.DefaultVerbosity,
		Usage:  "log verbosity (0-5)",
		EnvVar: "DEVCHAIN_VERBOSITY",
	}
)

// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/api"
	"github.com/adranet/adrd/cert"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/eventdb"
	"github.com/adranet/adrd/kv"
	"github.com/adranet/adrd/lvldb"
	"github.com/adranet/adrd/staking"
	"github.com/adranet/adrd/token"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = log15.New()

	devSupply = uint64(1_000_000_000) * 1_000_000_000
)

// ledgerBucket namespaces ledger state within the main db, leaving room
// for other record families in the same file.
const ledgerBucket = kv.Bucket("l/")

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "adrd",
		Usage:     "Node of the ADR staking ledger",
		Copyright: "2025 The ADR Ledger developers",
		Flags: []cli.Flag{
			dataDirFlag,
			adminFlag,
			scheduleFlag,
			apiAddrFlag,
			apiCorsFlag,
			metricsAddrFlag,
			verbosityFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "ADR ledger for test & dev, seeded with a dev token supply",
				Flags: []cli.Flag{
					dataDirFlag,
					apiAddrFlag,
					apiCorsFlag,
					metricsAddrFlag,
					onDemandFlag,
					persistFlag,
					verbosityFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	dataDir := makeDataDir(ctx)

	mainDB := openMainDB(dataDir)
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	eventDB := openEventDB(dataDir)
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	store := ledgerBucket.NewStore(mainDB)
	engine := staking.NewEngine(store, selectSchedule(ctx), eventDB, nil)
	if admin := parseAdmin(ctx); admin != nil {
		if err := engine.Initialize(*admin); err != nil && !errs.HasCode(err, errs.AlreadyInitialized) {
			fatal("initialize ledger:", err)
		}
	}

	return runNode(ctx, store, eventDB, engine)
}

func soloAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	var mainDB *lvldb.LevelDB
	var eventDB *eventdb.EventDB

	if ctx.Bool(persistFlag.Name) {
		dataDir := makeDataDir(ctx)
		mainDB = openMainDB(dataDir)
		eventDB = openEventDB(dataDir)
	} else {
		mainDB = openMemMainDB()
		eventDB = openMemEventDB()
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	store := ledgerBucket.NewStore(mainDB)
	engine := staking.NewEngine(store, selectSchedule(ctx), eventDB, nil)
	if err := seedDevLedger(store, engine); err != nil && !errs.HasCode(err, errs.AlreadyInitialized) {
		fatal("seed dev ledger:", err)
	}

	return runNode(ctx, store, eventDB, engine)
}

// seedDevLedger installs deterministic dev accounts and enables staking so
// a fresh solo node is immediately usable.
func seedDevLedger(store kv.GetPutter, engine *staking.Engine) error {
	admin := adr.DeriveAddress("dev-admin")
	mint := adr.DeriveAddress("dev-token")
	reserve := adr.DeriveAddress("dev-reserve")

	if err := engine.Initialize(admin); err != nil {
		return err
	}

	tokens := token.NewService(store, engine.Locker())
	if err := tokens.Mint(mint, admin, devSupply); err != nil {
		return err
	}

	if err := engine.SetPaymentToken(admin, mint); err != nil {
		return err
	}
	if err := engine.SetRewardReserve(admin, reserve); err != nil {
		return err
	}
	if err := engine.DepositRewardReserve(admin, devSupply/2); err != nil {
		return err
	}
	if err := engine.Configure(admin, true, 1000); err != nil {
		return err
	}

	log.Info("dev ledger seeded", "admin", admin, "token", mint, "reserve", reserve)
	return nil
}

func runNode(ctx *cli.Context, store kv.GetPutter, eventDB *eventdb.EventDB, engine *staking.Engine) error {
	certs := cert.NewLedger(store, eventDB, nil, engine.Locker())
	tokens := token.NewService(store, engine.Locker())

	metricsURL, closeMetrics := startMetricsServer(ctx.String(metricsAddrFlag.Name))
	defer func() { log.Info("stopping metrics server..."); closeMetrics() }()

	handler := api.New(engine, certs, tokens, eventDB, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.String(metricsAddrFlag.Name) != "",
	})
	apiURL, closeAPI, err := api.Start(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); closeAPI() }()

	printStartupMessage(apiURL, metricsURL, engine)

	handleExitSignal()
	return nil
}

func printStartupMessage(apiURL, metricsURL string, engine *staking.Engine) {
	fmt.Printf(`Starting %v
    Version     %v
    Schedule    [%v]
    Custody     [%v]
    API portal  [%v]
`,
		"adrd",
		fullVersion(),
		engine.Schedule().Name(),
		engine.Custody(),
		apiURL)
	if metricsURL != "" {
		fmt.Printf("    Metrics     [%v]\n", metricsURL)
	}
}

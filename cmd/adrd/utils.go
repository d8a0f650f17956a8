// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/co"
	"github.com/adranet/adrd/eventdb"
	"github.com/adranet/adrd/lvldb"
	"github.com/adranet/adrd/metrics"
	"github.com/adranet/adrd/staking"
)

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.adranet.adrd")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.adranet.adrd")
		default:
			return filepath.Join(home, ".org.adranet.adrd")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	logLevel := ctx.Int(verbosityFlag.Name)
	handler := log15.StreamHandler(os.Stderr, log15.TerminalFormat())
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		handler = log15.StreamHandler(os.Stderr, log15.LogfmtFormat())
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(logLevel), handler))
}

func selectSchedule(ctx *cli.Context) *staking.Schedule {
	name := ctx.String(scheduleFlag.Name)
	if ctx.Bool(onDemandFlag.Name) {
		name = "minutes"
	}
	schedule, err := staking.ScheduleByName(name)
	if err != nil {
		fatal(err)
	}
	return schedule
}

func parseAdmin(ctx *cli.Context) *adr.Address {
	raw := ctx.String(adminFlag.Name)
	if raw == "" {
		return nil
	}
	admin, err := adr.ParseAddress(raw)
	if err != nil {
		fatal("invalid admin address:", err)
	}
	return admin
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openMainDB(dataDir string) *lvldb.LevelDB {
	db, err := lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{})
	if err != nil {
		fatal(fmt.Sprintf("open main database [%v]: %v", dataDir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open memory main database: %v", err))
	}
	return db
}

func openEventDB(dataDir string) *eventdb.EventDB {
	db, err := eventdb.New(filepath.Join(dataDir, "events.db"))
	if err != nil {
		fatal(fmt.Sprintf("open event database [%v]: %v", dataDir, err))
	}
	return db
}

func openMemEventDB() *eventdb.EventDB {
	db, err := eventdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open memory event database: %v", err))
	}
	return db
}

func startMetricsServer(addr string) (string, func()) {
	if addr == "" {
		return "", func() {}
	}
	metrics.InitializePrometheusMetrics()

	url, closeFunc, err := serveHTTP(addr, metrics.HTTPHandler())
	if err != nil {
		fatal(fmt.Sprintf("start metrics server: %v", err))
	}
	return url, closeFunc
}

func serveHTTP(addr string, handler http.Handler) (string, func(), error) {
	srv := &http.Server{Addr: addr, Handler: handler}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Warn("http server stopped", "addr", addr, "err", err)
		}
	})
	return "http://" + addr + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleExitSignal() {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
	sig := <-exitSignalCh
	log.Info("exit signal received", "signal", sig)
}

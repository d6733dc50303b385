// Package main defines the signer protection binary, which manages the slashing
// protection database consulted by a remote signer before it signs blocks and attestations.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prysmaticlabs/signer-protection/cmd"
	historycmd "github.com/prysmaticlabs/signer-protection/cmd/signer-protection/slashing-protection"
	"github.com/prysmaticlabs/signer-protection/io/logs"
	prometheusHooks "github.com/prysmaticlabs/signer-protection/monitoring/prometheus"
	"github.com/prysmaticlabs/signer-protection/runtime/prereqs"
	"github.com/prysmaticlabs/signer-protection/runtime/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	cmd.VerbosityFlag,
	cmd.LogFormat,
	cmd.LogFileName,
	cmd.ConfigFileFlag,
}

func init() {
	appFlags = cmd.WrapFlags(appFlags)
}

func main() {
	app := cli.App{}
	app.Name = "signer-protection"
	app.Usage = "manages the slashing protection history of a remote signer"
	app.Version = version.Version()
	app.Flags = appFlags
	app.Commands = []*cli.Command{
		historycmd.Commands,
	}
	app.Before = configureLogging(prometheus.DefaultRegisterer)

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// configureLogging applies the verbosity, format and log file flags to the standard logger
// and counts log entries with a collector registered in reg. It also warns on unsupported platforms.
func configureLogging(reg prometheus.Registerer) cli.BeforeFunc {
	return func(ctx *cli.Context) error {
		// Load any flags from file, if specified.
		if err := cmd.LoadFlagsFromConfig(ctx, appFlags); err != nil {
			return err
		}

		verbosity := ctx.String(cmd.VerbosityFlag.Name)
		level, err := logrus.ParseLevel(verbosity)
		if err != nil {
			return errors.Wrapf(err, "could not parse --%s", cmd.VerbosityFlag.Name)
		}
		logrus.SetLevel(level)

		format := ctx.String(cmd.LogFormat.Name)
		logFileName := ctx.String(cmd.LogFileName.Name)
		formatter, err := logs.Formatter(format, logFileName != "")
		if err != nil {
			return err
		}
		logrus.SetFormatter(formatter)

		if logFileName != "" {
			if err := logs.ConfigurePersistentLogging(logrus.StandardLogger(), logFileName, format); err != nil {
				log.WithError(err).Error("Failed to configuring logging to disk.")
			}
		}
		logrus.AddHook(prometheusHooks.NewLogrusCollector(reg))

		// Warn if user's platform is not supported
		prereqs.WarnIfPlatformNotSupported(ctx.Context)
		return nil
	}
}

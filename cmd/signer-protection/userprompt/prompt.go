// Package userprompt asks for the paths the slashing protection commands need when
// they were not given as flags.
package userprompt

import (
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/cmd"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/prysmaticlabs/signer-protection/io/prompt"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	// DataDirPromptText for the slashing protection database directory.
	DataDirPromptText = "Enter the directory of the slashing protection database you would like to use"
	// SlashingProtectionJSONPromptText for the EIP-3076 slashing protection JSON userprompt.
	SlashingProtectionJSONPromptText = "Enter the filepath of the EIP-3076 slashing protection JSON exported by your previous signer"
	// ExportDirPromptText for the export output directory.
	ExportDirPromptText = "Enter your desired output directory for your slashing protection history file"
	// BackupDirPromptText for the database backup directory.
	BackupDirPromptText = "Enter the directory to write the database backup to, leave empty for <datadir>/backups"
)

var log = logrus.WithField("prefix", "userprompt")

var au = aurora.NewAurora(true)

// defaultPrompt reads the answer from the terminal.
var defaultPrompt = prompt.DefaultPrompt

// InputDirectory from the cli. A flag set on the command line is used as is. An existing
// default data directory is used without asking.
func InputDirectory(cliCtx *cli.Context, promptText string, flag *cli.StringFlag) (string, error) {
	directory := cliCtx.String(flag.Name)
	if cliCtx.IsSet(flag.Name) {
		return file.ExpandPath(directory)
	}
	if flag.Name == cmd.DataDirFlag.Name && directory != "" {
		ok, err := file.HasDir(directory)
		if err != nil {
			return "", errors.Wrapf(err, "could not check if data dir %s exists", directory)
		}
		if ok {
			log.Infof("%s %s", au.BrightMagenta("(data directory)"), directory)
			return directory, nil
		}
	}

	inputtedDir, err := defaultPrompt(au.Bold(promptText).String(), directory)
	if err != nil {
		return "", err
	}
	if inputtedDir == "" || inputtedDir == directory {
		return inputtedDir, nil
	}
	return file.ExpandPath(inputtedDir)
}

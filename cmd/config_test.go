package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestLoadFlagsFromConfig(t *testing.T) {
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	context := cli.NewContext(&app, set, nil)

	configPath := filepath.Join(t.TempDir(), "flags_test.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("testflag: 100\nverbosity: debug\n"), 0600))

	require.NoError(t, set.Parse([]string{"test-command", "--" + ConfigFileFlag.Name, configPath}))
	command := &cli.Command{
		Name: "test-command",
		Flags: WrapFlags([]cli.Flag{
			&cli.StringFlag{
				Name: ConfigFileFlag.Name,
			},
			&cli.IntFlag{
				Name:  "testflag",
				Value: 0,
			},
			&cli.StringFlag{
				Name:  VerbosityFlag.Name,
				Value: "info",
			},
		}),
		Action: func(cliCtx *cli.Context) error {
			require.NoError(t, LoadFlagsFromConfig(cliCtx, cliCtx.Command.Flags))
			require.Equal(t, 100, cliCtx.Int("testflag"))
			require.Equal(t, "debug", cliCtx.String(VerbosityFlag.Name))
			return nil
		},
	}
	require.NoError(t, command.Run(context))
}

func TestLoadFlagsFromConfig_NoConfigFile(t *testing.T) {
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(ConfigFileFlag.Name, "", "")
	context := cli.NewContext(&app, set, nil)
	require.NoError(t, LoadFlagsFromConfig(context, []cli.Flag{VerbosityFlag}))
}

func TestWrapFlags_UnsupportedType(t *testing.T) {
	require.Panics(t, func() {
		WrapFlags([]cli.Flag{&cli.Float64Flag{Name: "ratio"}})
	})
}

func TestDefaultDataDir(t *testing.T) {
	dir := DefaultDataDir()
	require.NotEmpty(t, dir)
	require.True(t, filepath.IsAbs(dir))
}

func TestWrapFlags_EnumFlagResetsSelection(t *testing.T) {
	wrapped := WrapFlags([]cli.Flag{LogFormat})
	require.Len(t, wrapped, 1)

	set := flag.NewFlagSet("first", flag.ContinueOnError)
	require.NoError(t, wrapped[0].Apply(set))
	require.NoError(t, set.Parse([]string{"--" + LogFormat.Name, "json"}))
	require.Equal(t, "json", cli.NewContext(&cli.App{}, set, nil).String(LogFormat.Name))

	set = flag.NewFlagSet("second", flag.ContinueOnError)
	require.NoError(t, wrapped[0].Apply(set))
	require.NoError(t, set.Parse(nil))
	require.Equal(t, "text", cli.NewContext(&cli.App{}, set, nil).String(LogFormat.Name))
}

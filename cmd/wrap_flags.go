package cmd

import (
	"flag"
	"fmt"

	cmdflags "github.com/prysmaticlabs/signer-protection/cmd/flags"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

// WrapFlags so that they can be loaded from alternative sources.
func WrapFlags(flags []cli.Flag) []cli.Flag {
	wrapped := make([]cli.Flag, 0, len(flags))
	for _, f := range flags {
		switch t := f.(type) {
		case *cli.BoolFlag:
			f = altsrc.NewBoolFlag(t)
		case *cli.GenericFlag:
			f = altsrc.NewGenericFlag(t)
		case *cmdflags.EnumFlag:
			f = &enumFlag{GenericFlag: altsrc.NewGenericFlag(t.GenericFlag), enum: t}
		case *cli.IntFlag:
			f = altsrc.NewIntFlag(t)
		case *cli.StringFlag:
			f = altsrc.NewStringFlag(t)
		case *cli.StringSliceFlag:
			f = altsrc.NewStringSliceFlag(t)
		case *cli.Uint64Flag:
			f = altsrc.NewUint64Flag(t)
		default:
			panic(fmt.Sprintf("cannot convert type %T", f))
		}
		wrapped = append(wrapped, f)
	}
	return wrapped
}

// enumFlag keeps the selection reset of flags.EnumFlag once wrapped for altsrc.
type enumFlag struct {
	*altsrc.GenericFlag
	enum *cmdflags.EnumFlag
}

func (f *enumFlag) Apply(set *flag.FlagSet) error {
	f.enum.Reset()
	return f.GenericFlag.Apply(set)
}

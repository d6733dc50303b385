package flags

// via https://github.com/urfave/cli/issues/602

import (
	"flag"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// EnumValue allows the cli to present a fixed set of string values.
type EnumValue struct {
	Name  string
	Usage string
	Enum  []string
	Value string

	selected string
}

// Set accepts value only if it is one of the allowed values.
func (e *EnumValue) Set(value string) error {
	for _, enum := range e.Enum {
		if enum == value {
			e.selected = value
			return nil
		}
	}

	return fmt.Errorf("allowed values are %s", strings.Join(e.Enum, ", "))
}

func (e *EnumValue) String() string {
	if e.selected == "" {
		return e.Value
	}
	return e.selected
}

// EnumFlag is the cli.Flag of an EnumValue. The value is shared by every flag set the flag
// is applied to, so applying it clears the selection left by a previous command line.
type EnumFlag struct {
	*cli.GenericFlag
	value *EnumValue
}

// Apply resets the selection to the default and registers the flag with set.
func (f *EnumFlag) Apply(set *flag.FlagSet) error {
	f.Reset()
	return f.GenericFlag.Apply(set)
}

// Reset drops any parsed value so that String reports the default again.
func (f *EnumFlag) Reset() {
	f.value.selected = ""
}

// GenericFlag wraps the EnumValue in a GenericFlag value so that it satisfies the cli.Flag interface.
func (e EnumValue) GenericFlag() *EnumFlag {
	value := &e
	return &EnumFlag{
		GenericFlag: &cli.GenericFlag{
			Name:        e.Name,
			Usage:       fmt.Sprintf("%s (%s)", e.Usage, strings.Join(e.Enum, ", ")),
			Value:       value,
			DefaultText: e.Value,
		},
		value: value,
	}
}

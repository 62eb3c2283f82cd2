// Utilities for reading the testpackage config files.

package core

import (
	"os"

	"github.com/please-build/gcfg"

	"github.com/thought-machine/testpackage/src/cli/logging"
)

var log = logging.Log

// ConfigFileName is the file name for the repo config - this is normally checked in.
const ConfigFileName = ".testpackage.cfg"

// DefaultStoreDirName is the default directory the coverage store lives under.
const DefaultStoreDirName = ".testpackage"

// A Configuration contains all the settings that can be defined in the config
// file. Command-line flags take precedence over anything given here.
type Configuration struct {
	Test struct {
		Package       string   `help:"Package pattern to discover tests in when none is given on the command line."`
		SuspectPrefix []string `help:"Package prefixes considered 'ours' when picking the suspect frame of a failure report."`
	}
	Store struct {
		Directory string `help:"Directory the coverage store is persisted under."`
	}
	Display struct {
		Colour   bool `help:"Forces coloured output."`
		NoColour bool `help:"Forces colourless output."`
	}
}

// DefaultConfiguration returns a configuration with the default values filled in.
func DefaultConfiguration() *Configuration {
	config := &Configuration{}
	config.Store.Directory = DefaultStoreDirName
	return config
}

// ReadConfigFile reads a single config file into the given config object.
// It's not an error for the file not to exist.
func ReadConfigFile(config *Configuration, filename string) error {
	log.Debug("Reading config from %s...", filename)
	if err := gcfg.ReadFileInto(config, filename); err != nil && os.IsNotExist(err) {
		return nil // It's not an error to not have the file at all.
	} else if gcfg.FatalOnly(err) != nil {
		return err
	} else if err != nil {
		log.Warning("Error in config file: %s", err)
	}
	return nil
}

// ReadDefaultConfigFile reads the repo config from the working directory,
// returning defaults if it doesn't exist.
func ReadDefaultConfigFile() (*Configuration, error) {
	config := DefaultConfiguration()
	if err := ReadConfigFile(config, ConfigFileName); err != nil {
		return nil, err
	}
	return config, nil
}

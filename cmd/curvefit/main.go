package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/spf13/viper"

	"github.com/MozP1/flam-assignment/config"
	"github.com/MozP1/flam-assignment/stage"
)

func main() {
	app := kingpin.New("curvefit", "Fit theta, M, X of the parametric curve by minimizing L1 distance.")
	app.Version("v0.1")
	app.HelpFlag.Short('h')
	logLevel := app.Flag("log-level", "log level: debug, info, warn or error").Default("info").Enum("debug", "info", "warn", "error")

	fitCmd := &cmdFit{}
	fitCmd.register(app)
	evalCmd := &cmdEval{}
	evalCmd.register(app)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "curvefit: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	switch command {
	case fitCmd.FullCommand():
		err = fitCmd.Run(log)
	case evalCmd.FullCommand():
		err = evalCmd.Run(log)
	}
	if err != nil {
		log.Errorw("run failed", "stage", stage.Of(err), "error", err)
		log.Sync()
		os.Exit(1)
	}
}

// common holds the flags shared by every command.
type common struct {
	csvFile    *string
	configFile *string
	binds      bindings
}

func (c *common) register(cmd *kingpin.CmdClause) {
	c.csvFile = cmd.Flag("csv", "CSV file with columns x,y").Required().String()
	c.configFile = cmd.Flag("config", "YAML configuration file").Short('c').String()
	c.binds.float(cmd, "tmin", "grid.tmin", "minimum t (default 6)")
	c.binds.float(cmd, "tmax", "grid.tmax", "maximum t (default 60)")
}

// loadConfig layers defaults, the config file, the environment and the
// flags given on the command line.
func (c *common) loadConfig() (config.Config, error) {
	v := config.NewViper()
	if err := config.ReadFile(v, *c.configFile); err != nil {
		return config.Config{}, stage.Wrap(stage.Validate, err)
	}
	c.binds.apply(v)
	cfg, err := config.Decode(v)
	if err != nil {
		return config.Config{}, stage.Wrap(stage.Validate, err)
	}

	return cfg, nil
}

// binding ties a flag to a viper key. The value is copied into viper only
// when the flag was given.
type binding struct {
	key   string
	set   bool
	value func() any
}

type bindings []*binding

func (bs *bindings) add(key string) *binding {
	b := &binding{key: key}
	*bs = append(*bs, b)
	return b
}

func (bs *bindings) float(cmd *kingpin.CmdClause, name, key, help string) {
	b := bs.add(key)
	v := cmd.Flag(name, help).IsSetByUser(&b.set).Float64()
	b.value = func() any { return *v }
}

func (bs *bindings) int(cmd *kingpin.CmdClause, name, key, help string) {
	b := bs.add(key)
	v := cmd.Flag(name, help).IsSetByUser(&b.set).Int()
	b.value = func() any { return *v }
}

func (bs *bindings) uint64(cmd *kingpin.CmdClause, name, key, help string) {
	b := bs.add(key)
	v := cmd.Flag(name, help).IsSetByUser(&b.set).Uint64()
	b.value = func() any { return *v }
}

func (bs *bindings) string(cmd *kingpin.CmdClause, name, key, help string) {
	b := bs.add(key)
	v := cmd.Flag(name, help).IsSetByUser(&b.set).String()
	b.value = func() any { return *v }
}

func (bs *bindings) bool(cmd *kingpin.CmdClause, name, key, help string) {
	b := bs.add(key)
	v := cmd.Flag(name, help).IsSetByUser(&b.set).Bool()
	b.value = func() any { return *v }
}

func (bs bindings) apply(v *viper.Viper) {
	for _, b := range bs {
		if b.set {
			v.Set(b.key, b.value())
		}
	}
}

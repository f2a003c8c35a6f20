// Package config loads the command line and the optional INI file of the
// wallet.
package config

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	flags "github.com/jessevdk/go-flags"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/nodemgr"
)

const (
	defaultConfigFilename = "iriswallet.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultNodeBin        = "rgb-lightning-node"
)

var Err = er.NewErrorType("iris.config")

var (
	// ErrHelp is returned after the usage was printed on request.
	ErrHelp    = Err.CodeWithDetail("ErrHelp", "help requested")
	ErrParse   = Err.CodeWithDetail("ErrParse", "invalid command line or config file")
	ErrInvalid = Err.CodeWithDetail("ErrInvalid", "invalid option value")
)

type Config struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	DataDir     string `short:"A" long:"datadir" description:"Directory for settings, cache, logs and the embedded node" validate:"required"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}" validate:"loglevel"`

	NodeBin       string        `long:"nodebin" description:"Path to the node daemon binary of embedded wallets"`
	NodeAddr      string        `long:"nodeaddr" description:"Listen address of the embedded node daemon" validate:"hostname_port"`
	LDKPeerPort   int           `long:"ldkpeerport" description:"Lightning peer port of the embedded node" validate:"gte=1,lte=65535"`
	Network       string        `long:"network" description:"Network used until one is chosen {mainnet, testnet, regtest}" validate:"oneof=mainnet testnet regtest"`
	StartAttempts int           `long:"startattempts" description:"Readiness probes before giving up on the node" validate:"gte=1,lte=100"`
	Workers       int           `long:"workers" description:"Background workers, 0 is the CPU count" validate:"gte=0,lte=64"`
	Metrics       string        `long:"metrics" description:"Serve Prometheus metrics on this host:port" validate:"omitempty,hostname_port"`
	NoShell       bool          `long:"noshell" description:"Run without the terminal shell"`
	LogDir        string        `long:"logdir" description:"Directory to log output"`
	ReadTimeout   time.Duration `long:"readtimeout" description:"Timeout of node reads" validate:"gt=0"`
	TransferTime  time.Duration `long:"transfertimeout" description:"Timeout of calls which create transfers" validate:"gt=0"`
	UnlockTimeout time.Duration `long:"unlocktimeout" description:"Timeout of the unlock request" validate:"gt=0"`
	SyncToast     time.Duration `long:"synctoastafter" description:"Warn when the node is still syncing after this long" validate:"gt=0"`

	IndexerURL      string `long:"indexerurl" description:"Electrum or esplora indexer passed to the node on unlock"`
	ProxyEndpoint   string `long:"proxyendpoint" description:"RGB proxy passed to the node on unlock"`
	BitcoindRPCHost string `long:"bitcoindrpchost" description:"bitcoind RPC host passed to the node on unlock" validate:"required"`
	BitcoindRPCPort uint16 `long:"bitcoindrpcport" description:"bitcoind RPC port passed to the node on unlock" validate:"gte=1"`
	BitcoindRPCUser string `long:"bitcoindrpcuser" description:"bitcoind RPC user passed to the node on unlock"`
	BitcoindRPCPass string `long:"bitcoindrpcpass" default-mask:"-" description:"bitcoind RPC password passed to the node on unlock"`
}

// Unlock is the unlock request without the password.
func (c *Config) Unlock() nodeclient.UnlockRequest {
	return nodeclient.UnlockRequest{
		BitcoindRPCUsername: c.BitcoindRPCUser,
		BitcoindRPCPassword: c.BitcoindRPCPass,
		BitcoindRPCHost:     c.BitcoindRPCHost,
		BitcoindRPCPort:     c.BitcoindRPCPort,
		IndexerURL:          c.IndexerURL,
		ProxyEndpoint:       c.ProxyEndpoint,
	}
}

func (c *Config) DefaultNetwork() model.Network {
	n, err := model.ParseNetwork(c.Network)
	if err != nil {
		return model.Regtest
	}
	return n
}

// AppDataDir is the per user directory of the wallet.
func AppDataDir() string {
	if dir, errr := os.UserConfigDir(); errr == nil {
		return filepath.Join(dir, "iriswallet")
	}
	return cleanAndExpandPath("~/.iriswallet")
}

func Default() Config {
	return Config{
		DataDir:         AppDataDir(),
		DebugLevel:      defaultLogLevel,
		NodeBin:         defaultNodeBin,
		NodeAddr:        nodemgr.DefaultListenAddr,
		LDKPeerPort:     nodemgr.DefaultPeerPort,
		Network:         string(model.Regtest),
		StartAttempts:   nodemgr.DefaultStartAttempts,
		ReadTimeout:     nodeclient.DefaultReadTimeout,
		TransferTime:    nodeclient.DefaultTransferTimeout,
		UnlockTimeout:   nodeclient.DefaultUnlockTimeout,
		SyncToast:       nodemgr.DefaultSyncToastAfter,
		IndexerURL:      "127.0.0.1:50001",
		ProxyEndpoint:   "rpc://127.0.0.1:3000/json-rpc",
		BitcoindRPCHost: "localhost",
		BitcoindRPCPort: 18443,
		BitcoindRPCUser: "user",
		BitcoindRPCPass: "password",
	}
}

// cleanAndExpandPath expands environment variables and a leading ~.
func cleanAndExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var errr error
	if userName == "" {
		u, errr = user.Current()
	} else {
		u, errr = user.Lookup(userName)
	}
	if errr == nil {
		homeDir = u.HomeDir
	}
	if homeDir == "" {
		homeDir = "."
	}
	return filepath.Join(homeDir, path)
}

func parseErr(errr error, p *flags.Parser, stderr io.Writer) er.R {
	if e, ok := errr.(*flags.Error); ok && e.Type == flags.ErrHelp {
		fmt.Fprintln(stderr, e.Message)
		return ErrHelp.Default()
	}
	fmt.Fprintln(stderr, errr)
	p.WriteHelp(stderr)
	return ErrParse.New("", er.E(errr))
}

// Load parses args over the defaults. The config file is read between a
// first and a second pass over args so the command line always wins. A
// missing config file is created from the sample.
func Load(args []string, stderr io.Writer) (*Config, er.R) {
	cfg := Default()

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, errr := preParser.ParseArgs(args); errr != nil {
		return nil, parseErr(errr, preParser, stderr)
	}
	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	configFilePath := preCfg.ConfigFile
	if configFilePath != "" {
		configFilePath = cleanAndExpandPath(configFilePath)
	} else {
		configFilePath = filepath.Join(cleanAndExpandPath(preCfg.DataDir), defaultConfigFilename)
	}

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if errr := flags.NewIniParser(parser).ParseFile(configFilePath); errr != nil {
		if _, ok := errr.(*os.PathError); !ok {
			return nil, parseErr(errr, parser, stderr)
		}
		fmt.Fprintln(stderr, configFilePath+" does not exist, creating it from default")
		if err := createDefaultConfigFile(configFilePath); err != nil {
			log.Warnf("Unable to create config file: %s", err.Message())
		}
	}

	if _, errr := parser.ParseArgs(args); errr != nil {
		return nil, parseErr(errr, parser, stderr)
	}
	cfg.ConfigFile = configFilePath
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	if err := Validate(&cfg); err != nil {
		fmt.Fprintln(stderr, err.Message())
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return log.ValidLevel(fl.Field().String())
	})
	return v
}

// Validate checks the option values, the error names the first offending
// option.
func Validate(cfg *Config) er.R {
	errr := validate.Struct(cfg)
	if errr == nil {
		return nil
	}
	if ves, ok := errr.(validator.ValidationErrors); ok && len(ves) > 0 {
		fe := ves[0]
		return ErrInvalid.New(fmt.Sprintf("%s: failed the %s check", optionName(fe.StructField()), fe.Tag()), nil)
	}
	return ErrInvalid.New("", er.E(errr))
}

// optionName is the long flag of a field of Config.
func optionName(field string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(field); ok {
		if long := f.Tag.Get("long"); long != "" {
			return "--" + long
		}
	}
	return field
}

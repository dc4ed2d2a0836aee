package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const logsDirectory = "logs"

const VendorName = "six78"
const ApplicationName = "gamelobby"

const DefaultAddress = "/ip4/127.0.0.1/tcp/13050"

const HighlightColor = lipgloss.Color("#7D56F4")
const ForegroundShadeColor = lipgloss.Color("#555555")
const ErrorColor = lipgloss.Color("#FF5555")

const (
	envAddress  = "LOBBY_ADDRESS"
	envHTTP     = "LOBBY_HTTP"
	envPassword = "LOBBY_PASSWORD"
	envPaused   = "LOBBY_PAUSED"
)

var address = DefaultAddress
var httpAddress string
var password string
var paused bool
var loadFile string
var loadTurn int
var saveReplays bool
var replayDir string
var configFile string
var debug bool

var Logger = zap.NewNop()
var LogFilePath string

type fileConfig struct {
	Address     *string `yaml:"address"`
	HTTP        *string `yaml:"http"`
	Password    *string `yaml:"password"`
	Paused      *bool   `yaml:"paused"`
	LoadFile    *string `yaml:"loadFile"`
	LoadTurn    *int    `yaml:"loadTurn"`
	SaveReplays *bool   `yaml:"saveReplays"`
	ReplayDir   *string `yaml:"replayDir"`
	Debug       *bool   `yaml:"debug"`
}

// SetupLogger logs to stderr.
func SetupLogger() {
	c := loggerConfig()
	c.OutputPaths = []string{"stderr"}
	build(c)
}

// SetupFileLogger logs to a fresh file in the user config folder,
// leaving the terminal to the viewer.
func SetupFileLogger() {
	c := loggerConfig()
	LogFilePath = createLogFile()
	c.OutputPaths = []string{LogFilePath}
	build(c)
}

func loggerConfig() zap.Config {
	var c zap.Config
	if debug {
		c = zap.NewDevelopmentConfig()
	} else {
		c = zap.NewProductionConfig()
	}
	c.Development = false
	return c
}

func build(c zap.Config) {
	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	Logger = logger
}

func createLogFile() string {
	name := fmt.Sprintf("%s-%s.log", ApplicationName, time.Now().UTC().Format(time.RFC3339))
	name = strings.Replace(name, ":", "-", -1)

	configDirs := configdir.New(VendorName, ApplicationName)
	folders := configDirs.QueryFolders(configdir.Global)
	path := filepath.Join(folders[0].Path, logsDirectory, name)

	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		panic(err)
	}

	if _, err := os.Create(path); err != nil {
		panic(err)
	}

	return path
}

// ParseArguments layers the server configuration:
// defaults, then the YAML file, then the environment (.env included),
// then flags given on the command line.
func ParseArguments(name string, args []string) error {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&configFile, "config", "", "YAML configuration file")
	flags.StringVar(&address, "address", DefaultAddress, "Lobby listen multiaddress")
	flags.StringVar(&httpAddress, "http", "", "Admin HTTP listen address, disabled when empty")
	flags.StringVar(&password, "password", "", "Administrator password")
	flags.BoolVar(&paused, "paused", false, "Pause games created on join")
	flags.StringVar(&loadFile, "loadFile", "", "Replay file to load the initial state from")
	flags.IntVar(&loadTurn, "loadTurn", 0, "Turn to load from the replay file")
	flags.BoolVar(&saveReplays, "saveReplays", false, "Save a replay of every finished game")
	flags.StringVar(&replayDir, "replayDir", "", "Replay folder, user config folder when empty")
	flags.BoolVar(&debug, "debug", false, "Show debug info")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	explicit := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	if configFile != "" {
		err = applyFile(configFile, explicit)
		if err != nil {
			return err
		}
	}

	return applyEnvironment(explicit)
}

func applyFile(path string, explicit map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	var c fileConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return errors.Wrap(err, "failed to parse config file")
	}

	setString(&address, c.Address, !explicit["address"])
	setString(&httpAddress, c.HTTP, !explicit["http"])
	setString(&password, c.Password, !explicit["password"])
	setBool(&paused, c.Paused, !explicit["paused"])
	setString(&loadFile, c.LoadFile, !explicit["loadFile"])
	if c.LoadTurn != nil && !explicit["loadTurn"] {
		loadTurn = *c.LoadTurn
	}
	setBool(&saveReplays, c.SaveReplays, !explicit["saveReplays"])
	setString(&replayDir, c.ReplayDir, !explicit["replayDir"])
	setBool(&debug, c.Debug, !explicit["debug"])
	return nil
}

func applyEnvironment(explicit map[string]bool) error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to load .env")
	}

	if value, ok := os.LookupEnv(envAddress); ok && !explicit["address"] {
		address = value
	}
	if value, ok := os.LookupEnv(envHTTP); ok && !explicit["http"] {
		httpAddress = value
	}
	if value, ok := os.LookupEnv(envPassword); ok && !explicit["password"] {
		password = value
	}
	if value, ok := os.LookupEnv(envPaused); ok && !explicit["paused"] {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", envPaused)
		}
		paused = parsed
	}
	return nil
}

func setString(target *string, value *string, allowed bool) {
	if value != nil && allowed {
		*target = *value
	}
}

func setBool(target *bool, value *bool, allowed bool) {
	if value != nil && allowed {
		*target = *value
	}
}

func Address() string {
	return address
}

func HTTPAddress() string {
	return httpAddress
}

func Password() string {
	return password
}

func Paused() bool {
	return paused
}

func LoadFile() string {
	return loadFile
}

func LoadTurn() int {
	return loadTurn
}

func SaveReplays() bool {
	return saveReplays
}

func ReplayDir() string {
	return replayDir
}

func Debug() bool {
	return debug
}

func SetDebug(value bool) {
	debug = value
}

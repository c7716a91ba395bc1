package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/tabdock/internal/config"
	"github.com/zjrosen/tabdock/internal/drag"
	"github.com/zjrosen/tabdock/internal/flags"
	"github.com/zjrosen/tabdock/internal/keys"
	"github.com/zjrosen/tabdock/internal/log"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/tracing"
	"github.com/zjrosen/tabdock/internal/transfer"
	"github.com/zjrosen/tabdock/internal/ui/workspace"
	"github.com/zjrosen/tabdock/internal/window"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, otherwise
	// the OSC 11 reply can leak into the input loop.
	_ = lipgloss.HasDarkBackground()
}

const welcomeText = "Drag a file tab onto another window to move it there, or drop it outside every window to give it a window of its own."

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tabdock [files...]",
	Short: "Tabbed terminal windows with drag and drop between them",
	Long: `tabdock opens a set of tabbed windows in the terminal. File tabs can be
reordered, dragged from one window to another, or dropped outside every
window to open them in a new one.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/tabdock/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by TABDOCK_DEBUG)")
	rootCmd.Flags().IntP("windows", "w", 0, "number of windows to open")
	rootCmd.Flags().StringP("dir", "C", "", "context directory of the opened windows")
	rootCmd.Flags().Bool("no-mouse", false, "disable mouse drag and drop")

	_ = viper.BindPFlag("windows", rootCmd.Flags().Lookup("windows"))
	_ = viper.BindPFlag("directory", rootCmd.Flags().Lookup("dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("windows", defaults.Windows)
	viper.SetDefault("transfer.timeout", defaults.Transfer.Timeout)
	viper.SetDefault("transfer.dedup_ttl", defaults.Transfer.DedupTTL)
	viper.SetDefault("drag.settle_duration", defaults.Drag.SettleDuration)
	viper.SetDefault("bus.buffer_size", defaults.Bus.BufferSize)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.mouse", defaults.UI.Mouse)
	for name, enabled := range defaults.Flags {
		viper.SetDefault("flags."+name, enabled)
	}

	viper.SetEnvPrefix("TABDOCK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .tabdock/config.yaml (current directory)
		// 2. ~/.config/tabdock/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else if dir := userConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "tabdock: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

const localConfigPath = ".tabdock/config.yaml"

func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tabdock")
}

// configPath is where the config subcommands write.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return localConfigPath
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	debug := debugFlag || os.Getenv("TABDOCK_DEBUG") != ""
	if debug {
		logPath := os.Getenv("TABDOCK_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "tabdock")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
		log.Info(log.CatConfig, "tabdock starting", "config", viper.ConfigFileUsed(), "windows", cfg.Windows)
	}

	dir := cfg.Directory
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		dir = wd
	}

	provider, err := tracing.NewProvider(cmd.Context(), tracingConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}()

	featureFlags := flags.New(cfg.Flags)
	bus := transfer.NewBus(cfg.Bus.BufferSize)
	defer bus.Close()

	manager := window.NewManager(window.Config{
		Registry:          drag.NewRegistry(),
		Bus:               bus,
		Tracer:            provider.Tracer(),
		TransferTimeout:   cfg.Transfer.Timeout,
		AnsweredTTL:       cfg.Transfer.DedupTTL,
		SettleDuration:    cfg.Drag.SettleDuration,
		DetachToNewWindow: featureFlags.Enabled(flags.FlagDetachNewWindow),
		WatchFiles:        featureFlags.Enabled(flags.FlagWatchFiles),
		WatchDebounce:     cfg.Watch.Debounce,
	})
	defer func() { _ = manager.Close() }()

	files, err := absPaths(args)
	if err != nil {
		return err
	}
	if err := openWindows(manager, cfg.Windows, dir, files); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var logs *log.LogListener
	if debug {
		logs = log.NewListener(ctx)
	}
	model := workspace.New(ctx, workspace.Config{
		Manager:       manager,
		Keys:          keys.DefaultKeyMap(),
		ShowStatusBar: cfg.UI.ShowStatusBar,
		Logs:          logs,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if noMouse, _ := cmd.Flags().GetBool("no-mouse"); cfg.UI.Mouse && !noMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// tracingConfig fills unset tracing values from the defaults.
func tracingConfig(c config.TracingConfig) tracing.Config {
	d := tracing.DefaultConfig()
	if c.Exporter == "" {
		c.Exporter = d.Exporter
	}
	if c.OTLPEndpoint == "" {
		c.OTLPEndpoint = d.OTLPEndpoint
	}
	if c.ServiceName == "" {
		c.ServiceName = d.ServiceName
	}
	if c.FilePath == "" {
		c.FilePath = config.DefaultTracesFilePath()
	}
	return c
}

func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", arg, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// openWindows opens n windows in dir. The first holds the given files, or a
// welcome tab when there are none; the others start with an empty tab.
func openWindows(m *window.Manager, n int, dir string, files []string) error {
	for i := range n {
		initial := []tabs.Tab{tabs.NewEmptyTab()}
		if i == 0 {
			initial = initialTabs(files)
		}
		if _, err := m.Open(initial, dir, nil); err != nil {
			return fmt.Errorf("opening window %d: %w", i+1, err)
		}
	}
	return nil
}

func initialTabs(files []string) []tabs.Tab {
	if len(files) == 0 {
		return []tabs.Tab{tabs.NewInlineTab(welcomeText)}
	}
	out := make([]tabs.Tab, 0, len(files))
	for _, f := range files {
		out = append(out, tabs.NewFileTab(f))
	}
	return out
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

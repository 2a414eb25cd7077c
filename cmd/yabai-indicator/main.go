package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazywalker/YabaiIndicator/internal/config"
	"github.com/lazywalker/YabaiIndicator/internal/ipc"
	"github.com/lazywalker/YabaiIndicator/internal/logging"
	"github.com/lazywalker/YabaiIndicator/internal/output"
	"github.com/lazywalker/YabaiIndicator/internal/state"
	"github.com/lazywalker/YabaiIndicator/internal/sysquery"
	"github.com/lazywalker/YabaiIndicator/internal/yabai"
)

var (
	configPath string
	socketPath string
	timeout    time.Duration
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// list flags
	listVisual bool
	listSpace  int

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	keyColor     = color.New(color.FgYellow)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "yabai-indicator",
	Short: "Status bar indicator for yabai spaces",
	Long: `yabai-indicator mirrors yabai's spaces, displays and windows in the macOS
status bar.

Run it with "yabai-indicator run", then install the yabai signals with
"yabai-indicator signals install" so space and window changes refresh the
indicator immediately.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// refreshCmd asks a running indicator to refresh
var refreshCmd = &cobra.Command{
	Use:       "refresh [spaces|windows]",
	Short:     "Ask the running indicator to refresh",
	Long:      `Writes a refresh command line to the indicator's IPC socket. Without an argument both spaces and windows are queried.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"spaces", "windows"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmdLine, err := ipc.ParseCommand(strings.Join(append([]string{"refresh"}, args...), " "))
		if err != nil {
			printError(err.Error())
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		path := indicatorSocket(cfg)
		if err := ipc.Send(ctx, path, cmdLine); err != nil {
			printError(err.Error())
			return err
		}

		if jsonOutput {
			return printJSON(map[string]string{"sent": string(cmdLine), "socket": path})
		}
		successColor.Printf("✓ Sent %q\n", cmdLine)
		return nil
	},
}

// listCmd queries the sources directly, without a running indicator
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Query displays, spaces or windows",
}

var listDisplaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List active displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		displays, err := sysquery.NewClient(sysquery.NativePlatform()).QueryDisplays(cmd.Context())
		if err != nil {
			printError(fmt.Sprintf("Failed to query displays: %v", err))
			return err
		}

		if jsonOutput {
			return printJSON(displays)
		}
		output.PrintDisplaysTable(os.Stdout, displays)
		return nil
	},
}

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "List spaces across all displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		spaces, err := sysquery.NewClient(sysquery.NativePlatform()).QuerySpaces(cmd.Context())
		if err != nil {
			printError(fmt.Sprintf("Failed to query spaces: %v", err))
			return err
		}

		if jsonOutput {
			return printJSON(spaces)
		}
		output.PrintSpacesTable(os.Stdout, spaces)
		return nil
	},
}

var listWindowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List windows known to yabai",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		windows, err := newYabaiClient(cfg).QueryWindows(ctx)
		if err != nil {
			printError(fmt.Sprintf("Failed to query windows: %v", err))
			return err
		}

		if jsonOutput {
			return printJSON(windows)
		}

		if listVisual {
			displays, err := sysquery.NewClient(sysquery.NativePlatform()).QueryDisplays(cmd.Context())
			if err != nil {
				printError(fmt.Sprintf("Failed to query displays: %v", err))
				return err
			}
			return output.PrintVisualization(os.Stdout, displays, windows, listSpace, output.DefaultVisualizationOptions())
		}

		output.PrintWindowsTable(os.Stdout, windows)
		return nil
	},
}

// focusCmd focuses a space by its yabai index
var focusCmd = &cobra.Command{
	Use:   "focus <index>",
	Short: "Focus a space by yabai index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			printError(fmt.Sprintf("Invalid space index: %s", args[0]))
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if err := newYabaiClient(cfg).FocusSpace(ctx, index); err != nil {
			printError(fmt.Sprintf("Failed to focus space %d: %v", index, err))
			return err
		}

		successColor.Printf("✓ Focused space %d\n", index)
		return nil
	},
}

// signalsCmd manages the yabai signals that drive refreshes
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Manage yabai signals that notify the indicator",
}

var signalsPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the yabai signal commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		signals := yabai.IndicatorSignals(indicatorSocket(cfg))
		if jsonOutput {
			return printJSON(signals)
		}
		for _, s := range signals {
			fmt.Printf("yabai -m signal --add event=%s action=\"%s\" label=%s\n", s.Event, s.Action, s.Label())
		}
		return nil
	},
}

var signalsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the signals with the running yabai",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachSignal(cmd.Context(), "Installed", func(ctx context.Context, c *yabai.Client, s yabai.Signal) error {
			return c.AddSignal(ctx, s)
		})
	},
}

var signalsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the signals from the running yabai",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachSignal(cmd.Context(), "Removed", func(ctx context.Context, c *yabai.Client, s yabai.Signal) error {
			return c.RemoveSignal(ctx, s.Label())
		})
	},
}

// stateCmd inspects the snapshot written by the running indicator
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the last persisted snapshot",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the last snapshot written by the indicator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.StatusFilePath()
		if path == "" {
			err := fmt.Errorf("status file is disabled in the configuration")
			printError(err.Error())
			return err
		}

		snap, err := state.NewStore(path).Load()
		if err != nil {
			printError(err.Error())
			return err
		}

		if jsonOutput {
			return printJSON(snap)
		}

		keyColor.Print("Updated: ")
		if snap.UpdatedAt.IsZero() {
			fmt.Println("never")
		} else {
			fmt.Println(snap.UpdatedAt.Format(time.RFC3339))
		}
		if snap.IsError() {
			errorColor.Print("Error: ")
			fmt.Println(snap.ErrorMessage)
		}

		infoColor.Println("\nDisplays:")
		output.PrintDisplaysTable(os.Stdout, snap.Displays)
		infoColor.Println("\nSpaces:")
		output.PrintSpacesTable(os.Stdout, snap.Spaces)
		infoColor.Println("\nWindows:")
		output.PrintWindowsTable(os.Stdout, snap.Windows)
		return nil
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for showing, validating and creating the indicator configuration.`,
}

// configShowCmd shows the effective config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cfg)
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

// configValidateCmd validates a config file
var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			printError(fmt.Sprintf("Validation failed: %v", err))
			return err
		}

		successColor.Println("✓ Configuration is valid")
		fmt.Printf("  Button style: %s\n", cfg.Settings.ButtonStyle)
		fmt.Printf("  Refresh interval: %v\n", cfg.RefreshInterval())
		fmt.Printf("  Yabai transport: %s\n", cfg.Yabai.Transport)
		return nil
	},
}

// configInitCmd creates the default config file
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}

		if err := config.WriteDefault(path); err != nil {
			printError(err.Error())
			return err
		}

		successColor.Printf("✓ Created %s\n", path)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/yabaiindicator/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Indicator IPC socket path (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	// Add top-level commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(signalsCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)

	listCmd.AddCommand(listDisplaysCmd)
	listCmd.AddCommand(listSpacesCmd)
	listCmd.AddCommand(listWindowsCmd)
	listWindowsCmd.Flags().BoolVar(&listVisual, "visual", false, "Sketch window frames per display")
	listWindowsCmd.Flags().IntVar(&listSpace, "space", 0, "Only sketch windows on this yabai space index")

	signalsCmd.AddCommand(signalsPrintCmd)
	signalsCmd.AddCommand(signalsInstallCmd)
	signalsCmd.AddCommand(signalsRemoveCmd)

	stateCmd.AddCommand(stateShowCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	// Disable color if requested, enable debug logging if requested
	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
		if debugMode {
			logging.SetDebug(true)
		}
	})
}

func main() {
	// Initialize logging
	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Helper functions

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}

// loadConfig loads --config, or the default location
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		printError(fmt.Sprintf("Failed to load config: %v", err))
		return nil, err
	}
	return cfg, nil
}

// indicatorSocket applies the --socket override
func indicatorSocket(cfg *config.Config) string {
	if socketPath != "" {
		return socketPath
	}
	return cfg.IPC.SocketPath
}

func newYabaiClient(cfg *config.Config) *yabai.Client {
	return yabai.NewClient(cfg.NewYabaiTransport(), cfg.YabaiLimits())
}

// forEachSignal applies fn to every indicator signal, reporting each result
func forEachSignal(ctx context.Context, verb string, fn func(context.Context, *yabai.Client, yabai.Signal) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newYabaiClient(cfg)
	signals := yabai.IndicatorSignals(indicatorSocket(cfg))
	failed := 0
	for _, s := range signals {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		err := fn(reqCtx, client, s)
		cancel()

		if err != nil {
			failed++
			printError(fmt.Sprintf("%s: %v", s.Label(), err))
			continue
		}
		if !jsonOutput {
			fmt.Printf("%s %s\n", successColor.Sprint("✓"), s.Label())
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d signals failed", failed, len(signals))
	}
	if jsonOutput {
		return printJSON(map[string]int{strings.ToLower(verb): len(signals)})
	}
	successColor.Printf("%s %d signals\n", verb, len(signals))
	return nil
}

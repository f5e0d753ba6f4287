package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/fatih/color"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Zachdehooge/energy-dashboard/internal/choropleth"
	"github.com/Zachdehooge/energy-dashboard/internal/config"
	"github.com/Zachdehooge/energy-dashboard/internal/fetcher"
	"github.com/Zachdehooge/energy-dashboard/internal/generator"
	"github.com/Zachdehooge/energy-dashboard/internal/panel"
	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
	"github.com/Zachdehooge/energy-dashboard/internal/server"
)

var (
	configPath string
	outputFile string
	verbose    bool
	interval   int
	watchMode  bool
	openPage   bool
	format     string
	selection  scenario.Scenario
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "energy-dashboard",
		Short: "Compare energy scenarios on synchronized maps",
		Long: `Energy Dashboard fetches scenario datasets from a GeoServer feature source,
colors them by carrier and value, and renders a side-by-side comparison page.`,
		Run: func(cmd *cobra.Command, args []string) {
			// Generate the static comparison page
			err := renderSnapshot(cmd)
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to render scenarios: %w", err))
				os.Exit(1)
			}

			// Watch mode
			if watchMode {
				runWatchMode(cmd)
			}
		},
	}

	// Flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("geoserver-url", "", "GeoServer base URL")
	rootCmd.PersistentFlags().String("workspace", "", "GeoServer workspace")
	rootCmd.PersistentFlags().String("economic-url", "", "Economic data API base URL")
	rootCmd.PersistentFlags().String("country", "", "Country whose scenarios are compared")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "scenarios.html", "Output HTML file path")
	rootCmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously update the scenarios HTML")

	// Additional commands
	addServeCmd(rootCmd)
	addLegendCmd(rootCmd)
	addListCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, env and command flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.New(), configPath, cmd.Flags())
}

func newClient(cfg *config.Config) *fetcher.Client {
	return fetcher.NewClient(cfg.GeoServerURL, cfg.Workspace, cfg.EconomicURL, cfg.Country, cfg.FetchTimeout)
}

func newController(cfg *config.Config, client *fetcher.Client) *panel.Controller {
	return panel.New(client, client, panel.Options{
		Country:     cfg.Country,
		LegendSteps: cfg.LegendSteps,
		Sync:        cfg.Sync,
		Timeout:     cfg.FetchTimeout,
	})
}

// renderSnapshot loads both default panels and writes the static page
func renderSnapshot(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if verbose {
		cmd.Println(fmt.Sprintf("Fetching scenarios from %s...", cfg.GeoServerURL))
	}

	controller := newController(cfg, newClient(cfg))
	if err := controller.Init(cmd.Context(), scenario.Defaults()); err != nil {
		return fmt.Errorf("failed to load scenarios: %w", err)
	}

	if verbose {
		cmd.Println(fmt.Sprintf("Generating HTML to %s...", outputFile))
	}
	data, err := generator.NewPageData("Energy Scenario Comparison", controller, true)
	if err != nil {
		return err
	}
	if err := generator.WriteSnapshot(outputFile, data); err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	cmd.Println(fmt.Sprintf("Scenario comparison saved to %s", outputFile))
	return nil
}

// runWatchMode continuously regenerates the snapshot
func runWatchMode(cmd *cobra.Command) {
	// Enforce minimum interval
	if interval < 30 {
		interval = 30
	}

	cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", interval))
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		err := renderSnapshot(cmd)
		if err != nil {
			cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
		}
	}
}

// addServeCmd adds the live comparison server with synchronized maps
func addServeCmd(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live scenario comparison page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := newClient(cfg)
			controller := newController(cfg, client)
			srv := server.New(controller, client)
			if err := controller.Init(ctx, scenario.Defaults()); err != nil {
				return fmt.Errorf("failed to load scenarios: %w", err)
			}

			url := "http://localhost" + cfg.Listen
			cmd.Println(fmt.Sprintf("Open at %s", url))
			if openPage {
				go func() {
					time.Sleep(500 * time.Millisecond)
					if err := browser.OpenURL(url); err != nil {
						cmd.PrintErrln(fmt.Errorf("failed to open browser: %w", err))
					}
				}()
			}
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}
	serveCmd.Flags().String("listen", ":8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&openPage, "open", false, "Open the page in a browser")
	rootCmd.AddCommand(serveCmd)
}

func addScenarioFlags(cmd *cobra.Command) {
	d := scenario.Defaults()[0]
	cmd.Flags().StringVar(&selection.Carrier, "carrier", d.Carrier, "Carrier to color")
	cmd.Flags().StringVar(&selection.Variable, "variable", d.Variable, "Value field to color by")
	cmd.Flags().StringVar(&selection.Year, "year", d.Year, "Scenario year")
}

// fetchSelection validates the scenario flags and fetches its features once
func fetchSelection(cmd *cobra.Command, source panel.FeatureSource) (*config.Config, *geojson.FeatureCollection, error) {
	selection.MapID = "cli"
	if err := selection.Validate(); err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if source == nil {
		source = newClient(cfg)
	}
	fc, err := source.FetchFeatures(cmd.Context(), selection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch features: %w", err)
	}
	return cfg, fc, nil
}

// addLegendCmd adds a 'legend' subcommand printing the color buckets of one scenario
func addLegendCmd(rootCmd *cobra.Command) {
	legendCmd := &cobra.Command{
		Use:   "legend",
		Short: "Print the legend of a scenario",
		Run: func(cmd *cobra.Command, args []string) {
			legend, err := scenarioLegend(cmd, nil)
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}
			if err := printLegend(cmd, legend); err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}
		},
	}
	addScenarioFlags(legendCmd)
	legendCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(legendCmd)
}

// scenarioLegend builds the legend of the selected scenario with the configured step count
func scenarioLegend(cmd *cobra.Command, source panel.FeatureSource) (choropleth.Legend, error) {
	cfg, fc, err := fetchSelection(cmd, source)
	if err != nil {
		return choropleth.Legend{}, err
	}
	return choropleth.BuildLegend(fc.Features, selection.Carrier, selection.Variable, cfg.LegendSteps), nil
}

func printLegend(cmd *cobra.Command, legend choropleth.Legend) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(legend, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
	case "yaml":
		out, err := yaml.Marshal(legend)
		if err != nil {
			return err
		}
		cmd.Print(string(out))
	case "text":
		if legend.NoData {
			cmd.Println("No data available")
			return nil
		}
		cmd.Println(legend.Title)
		for _, s := range legend.Swatches {
			c, err := swatchColor(s.Color)
			if err != nil {
				return err
			}
			cmd.Println(fmt.Sprintf("%s %s  %s", c.Sprint("    "), s.Color, s.Label))
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// swatchColor returns a background painter for a #rrggbb swatch
func swatchColor(hex string) (*color.Color, error) {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, fmt.Errorf("bad swatch color %q: %w", hex, err)
	}
	return color.BgRGB(r, g, b), nil
}

// addListCmd adds a 'list' subcommand to show feature counts without generating HTML
func addListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List feature counts by carrier for a scenario",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, fc, err := fetchSelection(cmd, nil)
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}

			if len(fc.Features) == 0 {
				cmd.Println("No features in this scenario.")
				return
			}

			cmd.Println(fmt.Sprintf("Features for %s/%s:", cfg.Country, selection.Year))
			for _, c := range fetcher.CarrierCounts(fc) {
				cmd.Println(fmt.Sprintf("%-12s %d", c.Carrier, c.Count))
			}
		},
	}
	addScenarioFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

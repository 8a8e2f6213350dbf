package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/l3aro/go-pygraph/internal/config"
	"github.com/l3aro/go-pygraph/internal/healthcheck"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pyg configuration interactively",
	Long: `Guides you through setting up pyg configuration step by step.
Creates a config file with the source root, cache locations and drawing
settings, then runs the health check against it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context())
	},
}

func runInit(ctx context.Context) error {
	defaults := config.DefaultConfig()

	// === SECTION 1: Sources and caches ===
	sourceRoot := defaults.SourceRoot
	classCache := defaults.ClassCache
	callCache := defaults.CallCache
	var useStore bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source root").
				Description("Directory (or single file) with the Python sources").
				Placeholder(defaults.SourceRoot).
				Value(&sourceRoot),
			huh.NewInput().
				Title("Class graph cache").
				Placeholder(defaults.ClassCache).
				Value(&classCache),
			huh.NewInput().
				Title("Call graph cache").
				Placeholder(defaults.CallCache).
				Value(&callCache),
			huh.NewConfirm().
				Title("Keep the call graph in a badger store instead?").
				Affirmative("Yes").
				Negative("No").
				Value(&useStore),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	storeDir := ""
	if useStore {
		storeDir = ".pyg/store"
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Store directory").
					Placeholder(".pyg/store").
					Value(&storeDir),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}

	// === SECTION 2: Drawing ===
	output := defaults.Output
	maxDepth := strconv.Itoa(defaults.MaxDepth)
	view := string(defaults.CallView)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SVG output file").
				Placeholder(defaults.Output).
				Value(&output),
			huh.NewInput().
				Title("Call tree max depth").
				Placeholder(maxDepth).
				Validate(validateDepth).
				Value(&maxDepth),
			huh.NewSelect[string]().
				Title("Call graph drawing").
				Options(
					huh.NewOption("Spring, high-degree nodes highlighted", string(config.ViewSpring)),
					huh.NewOption("Spring", string(config.ViewGraph)),
					huh.NewOption("Columns by in-degree", string(config.ViewTree)),
				).
				Value(&view),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Project (./.pyg/config.yaml)", "project"),
					huh.NewOption("Global (~/.pyg/config.yaml)", "global"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	newCfg := config.DefaultConfig()
	newCfg.SourceRoot = sourceRoot
	newCfg.ClassCache = classCache
	newCfg.CallCache = callCache
	newCfg.StoreDir = storeDir
	newCfg.Output = output
	newCfg.MaxDepth, _ = strconv.Atoi(maxDepth)
	newCfg.CallView = config.CallView(view)

	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println(headerStyle.Render("Configuration Preview"))
	fmt.Println(labelStyle.Render("path") + configPath)
	fmt.Println(labelStyle.Render("sources") + newCfg.SourceRoot)
	fmt.Println(labelStyle.Render("classes") + newCfg.ClassCache)
	if newCfg.StoreDir != "" {
		fmt.Println(labelStyle.Render("store") + newCfg.StoreDir)
	} else {
		fmt.Println(labelStyle.Render("calls") + newCfg.CallCache)
	}
	fmt.Println(labelStyle.Render("output") + newCfg.Output)
	fmt.Println(labelStyle.Render("depth") + strconv.Itoa(newCfg.MaxDepth))
	fmt.Println(labelStyle.Render("view") + string(newCfg.CallView))

	if err := newCfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to: %s\n\n", configPath)

	// === SECTION 4: Health Check ===
	loadedCfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := healthcheck.Check(ctx, loadedCfg, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	displayDoctorResult(result)
	return nil
}

func validateDepth(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	if n < 0 {
		return fmt.Errorf("depth must be non-negative")
	}
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}

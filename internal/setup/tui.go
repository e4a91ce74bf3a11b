package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/libra/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		exercise        string
		sensorKind      string
		tickIntervalStr string
		durationStr     string
		seedStr         string
		simMinStr       string
		simMaxStr       string
		readTimeoutStr  string
		slightStr       string
		significantStr  string
		historyCapStr   string
		demoHistory     bool
		webAddr         string
		confirm         bool
	)

	// defaults
	exercise = "Bench Press"
	tickIntervalStr = "1s"
	durationStr = "0s"
	seedStr = "0"
	simMinStr = "40"
	simMaxStr = "60"
	readTimeoutStr = "2s"
	slightStr = "10"
	significantStr = "20"
	historyCapStr = "0"
	webAddr = ":8080"

	// step 1: welcome
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your balance feedback dialed in.\n"))

	// exercise
	fmt.Println(stepStyle.Render("STEP 1: EXERCISE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Exercise").
				Description("Label shown on feedback and history views").
				Value(&exercise).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("exercise cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// sensor
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: SENSOR"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Reading Source").
				Options(
					huh.NewOption("Simulation (uniform random readings)", "simulate"),
					huh.NewOption("Device (external force sensor)", "device"),
				).
				Value(&sensorKind),
		),
	).Run()
	if err != nil {
		return err
	}

	// timing
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tick Interval").
				Description("Duration string (e.g. 500ms, 1s, 2s)").
				Value(&tickIntervalStr).
				Validate(validateDuration),
			huh.NewInput().
				Title("Session Duration").
				Description("0s for open-ended (e.g. 5m, 30m)").
				Value(&durationStr).
				Validate(validateDuration),
		),
	).Run()
	if err != nil {
		return err
	}

	// sensor specifics
	if sensorKind == "simulate" {
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
		fmt.Println(stepStyle.Render("STEP 4: SIMULATION SETTINGS"))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Minimum Reading %").
					Description("Lower bound of the simulated range (0-100)").
					Value(&simMinStr).
					Validate(validatePercent),
				huh.NewInput().
					Title("Maximum Reading %").
					Description("Upper bound of the simulated range (0-100)").
					Value(&simMaxStr).
					Validate(validatePercent),
				huh.NewInput().
					Title("Seed").
					Description("0 for a time-based seed, any other value for reproducible readings").
					Value(&seedStr).
					Validate(validateSeed),
			),
		).Run()
		if err != nil {
			return err
		}
	} else if sensorKind == "device" {
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
		fmt.Println(stepStyle.Render("STEP 4: DEVICE SETTINGS"))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Read Timeout").
					Description("Max wait for one device reading (e.g. 2s)").
					Value(&readTimeoutStr).
					Validate(validateDuration),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	// feedback tiers
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 5: FEEDBACK TIERS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Slight Imbalance Threshold %").
				Description("Side difference that triggers a slight imbalance warning (e.g. 10)").
				Value(&slightStr).
				Validate(validatePercent),
			huh.NewInput().
				Title("Significant Imbalance Threshold %").
				Description("Side difference that triggers a significant imbalance warning (e.g. 20)").
				Value(&significantStr).
				Validate(validatePercent),
		),
	).Run()
	if err != nil {
		return err
	}

	// history and web
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 6: HISTORY & WEB"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("History Capacity").
				Description("Max stored samples, 0 for unlimited").
				Value(&historyCapStr).
				Validate(validateCount),
			huh.NewConfirm().
				Title("Seed demo history?").
				Description("Pre-fills the history with a week of synthetic samples").
				Value(&demoHistory),
			huh.NewInput().
				Title("Web Address").
				Description("Dashboard listen address (e.g. :8080), empty to disable").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("LIBRA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	webDisplay := webAddr
	if webDisplay == "" {
		webDisplay = "disabled"
	}

	// show summary
	summary := fmt.Sprintf(
		"Exercise: %s\nSensor: %s\nTick interval: %s\nThresholds: %s%% / %s%%\nWeb: %s\n",
		exercise, sensorKind, tickIntervalStr, slightStr, significantStr, webDisplay,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	// generate config
	tickInterval, _ := time.ParseDuration(tickIntervalStr)
	sessionDuration, _ := time.ParseDuration(durationStr)

	cfgTmp := config.ConfigTmp{
		Exercise:                exercise,
		TickInterval:            tickInterval,
		Duration:                sessionDuration,
		Sensor:                  sensorKind,
		SlightThresholdStr:      slightStr,
		SignificantThresholdStr: significantStr,
		HistoryCapacityStr:      historyCapStr,
		DemoHistory:             demoHistory,
		WebAddr:                 webAddr,
	}

	if sensorKind == "simulate" {
		seed, _ := strconv.ParseInt(seedStr, 10, 64)
		cfgTmp.SensorSeed = seed
		cfgTmp.SimMinStr = simMinStr
		cfgTmp.SimMaxStr = simMaxStr
	} else {
		readTimeout, _ := time.ParseDuration(readTimeoutStr)
		cfgTmp.ReadTimeout = readTimeout
	}

	configs := []config.ConfigTmp{cfgTmp}

	data, err := yaml.Marshal(configs)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	// write to config.gen.yaml
	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting session...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validatePercent(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThan(decimal.Zero) || d.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("must be between 0 and 100")
	}
	return nil
}

func validateDuration(s string) error {
	_, err := time.ParseDuration(s)
	return err
}

func validateCount(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateSeed(s string) error {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

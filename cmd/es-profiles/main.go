// es-profiles lists the stream profiles and generates their register
// settings for a given master clock.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/profiles"
)

var (
	generateAll = flag.Bool("generate", false, "Generate all profile configs for -mclk")
	configDir   = flag.String("config-dir", "etc/gosabre/profiles", "Directory for profile configs")
	showProfile = flag.String("show", "", "Print a generated profile config (name or path)")
	mclk        = 100 * physic.MegaHertz
)

func main() {
	flag.Var(&mclk, "mclk", "Master clock frequency (e.g. 100MHz, 45.1584MHz)")
	flag.Parse()

	var err error
	switch {
	case *generateAll:
		err = doGenerateProfiles()
	case *showProfile != "":
		err = doShowProfile()
	default:
		doListProfiles()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func doListProfiles() {
	mclkHz := uint32(mclk / physic.Hertz)

	fmt.Printf("Profiles at MCLK %s:\n\n", mclk)
	for _, p := range profiles.List() {
		nco := "(no master mode)"
		if s, err := p.ToSettings(mclkHz); err == nil {
			nco = fmt.Sprintf("NCO 0x%08X", s.NCO)
		}
		fmt.Printf("  %-10s  %-10s  %-36s  %s\n", p.Name, p.Format, p.Description, nco)
	}
}

func doGenerateProfiles() error {
	absPath, err := filepath.Abs(*configDir)
	if err != nil {
		return fmt.Errorf("invalid config directory: %w", err)
	}

	fmt.Printf("Generating profiles for MCLK %s to %s\n", mclk, absPath)
	if err := profiles.GenerateProfiles(absPath, uint32(mclk/physic.Hertz)); err != nil {
		return err
	}

	// List generated files
	files, err := filepath.Glob(filepath.Join(absPath, "*.json"))
	if err != nil {
		return err
	}
	fmt.Printf("Generated %d profile configs:\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", filepath.Base(f))
	}

	return nil
}

func doShowProfile() error {
	configPath := *showProfile
	if filepath.Ext(configPath) == "" {
		configPath = filepath.Join(*configDir, configPath+".json")
	}

	cfg, err := profiles.LoadProfileFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	fmt.Printf("Profile: %s\n", cfg.Profile.Name)
	fmt.Printf("  Description:   %s\n", cfg.Profile.Description)
	fmt.Printf("  Rate:          %d Hz\n", cfg.Profile.RateHz)
	fmt.Printf("  Format:        %s (%d bits)\n", cfg.Profile.Format, cfg.Profile.Width)
	fmt.Printf("  MCLK:          %d Hz\n", cfg.MCLKHz)
	fmt.Printf("  DSD:           %v\n", cfg.Settings.DSD)
	fmt.Printf("  Serial Length: 0x%02X\n", cfg.Settings.SerialLength)
	fmt.Printf("  NCO:           0x%08X (% X)\n", cfg.Settings.NCO, cfg.Settings.NCOBytes[:])
	fmt.Printf("  Generated:     %s\n", cfg.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}

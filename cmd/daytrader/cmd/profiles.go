package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/profiles"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage risk profiles",
	Long: `List, inspect and create risk profiles in the profiles database.

Examples:
  daytrader profiles list
  daytrader profiles show safe_mode
  daytrader profiles create scalper 0.5 1.5 2`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profile names",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's risk settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create <name> <stop%> <take%> <allocation%>",
	Short: "Create or replace a profile",
	Args:  cobra.ExactArgs(4),
	RunE:  runProfilesCreate,
}

var profilesDBPath string

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesCreateCmd)

	profilesCmd.PersistentFlags().StringVarP(&profilesDBPath, "db", "d", "./profiles.db", "path to profiles database")
}

func openProfiles() (*profiles.SQLite, error) {
	s, err := profiles.NewSQLite(profilesDBPath)
	if err != nil {
		return nil, fmt.Errorf("open profiles db: %w", err)
	}
	return s, nil
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	s, err := openProfiles()
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.All()
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	s, err := openProfiles()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n", args[0])
	fmt.Printf("  stop loss:   %.2f%%\n", p.StopLossPct)
	fmt.Printf("  take profit: %.2f%%\n", p.TakeProfitPct)
	fmt.Printf("  allocation:  %.2f%%\n", p.CapitalAllocationPct)
	return nil
}

func runProfilesCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	vals := make([]float64, 3)
	for i, raw := range args[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("argument %q must be a positive number", raw)
		}
		vals[i] = v
	}

	s, err := openProfiles()
	if err != nil {
		return err
	}
	defer s.Close()

	p := profiles.Profile{
		StopLossPct:          vals[0],
		TakeProfitPct:        vals[1],
		CapitalAllocationPct: vals[2],
	}
	if err := s.Create(name, p); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	fmt.Printf("created profile %s\n", name)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "salespulse-api",
	Short: "SalesPulse API - Sales analytics dashboard backend",
	Long:  `SalesPulse API serves revenue metrics, pipeline analytics and AI-style insights on top of Salesforce CRM data, with a built-in sample dataset when no CRM is reachable.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/mealsense/internal/application/analysis"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate and normalize a saved analysis result",
	Long: `Reads an analysis result as JSON from file (or stdin when file is "-" or
omitted) and prints {valid, normalized}. Exits 1 when the result is not valid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	svc := &appanalysis.Service{}
	res, err := svc.Validate(data)
	if err != nil {
		return fmt.Errorf("parse analysis: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("analysis is missing a description or nutrients")
	}
	return nil
}

package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/predict"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the prediction service",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		cfg := predictConfig(v)

		h, err := predict.NewHTTPBackend(cfg, &http.Client{}).Health(commandContext(cmd))
		out := cmd.OutOrStdout()
		if v.GetBool("json") && h != nil {
			if werr := writeJSON(out, h); werr != nil {
				return werr
			}
		} else if h != nil {
			fmt.Fprintf(out, "URL:       %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "Status:    %s\n", h.Status)
			fmt.Fprintf(out, "Model:     %s\n", h.Model)
			fmt.Fprintf(out, "Version:   %s\n", h.Version)
			fmt.Fprintf(out, "Features:  %d\n", h.FeaturesCount)
			fmt.Fprintf(out, "SHAP:      %v\n", h.SHAPAvailable)
		}
		if err != nil {
			return fmt.Errorf("prediction service at %s is not usable: %w", cfg.BaseURL, err)
		}
		return nil
	},
}

func init() {
	f := healthCmd.Flags()
	f.Bool("json", false, "Print the health payload as JSON")
	addModelFlags(f)
}

package main

import (
	"fmt"

	"github.com/example/go-script-tts/internal/tts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newVoicesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List built-in provider voices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			voices := tts.ListVoices()
			w := cmd.OutOrStdout()

			switch output {
			case "yaml":
				return yaml.NewEncoder(w).Encode(voices)
			case "text":
				for _, v := range voices {
					marker := " "
					if v.ID == cfg.TTS.Voice {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %-8s  %s\n", marker, v.ID, v.Description)
				}
				return nil
			default:
				return fmt.Errorf("--output must be 'text' or 'yaml'")
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text|yaml")

	return cmd
}

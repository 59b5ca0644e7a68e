package main

import (
	"fmt"

	"github.com/example/go-pocket-tts/internal/engine"
	"github.com/spf13/cobra"
)

func newVoicesCmd() *cobra.Command {
	var cacheRoot string
	var modelDir string
	var assetBaseURL string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the Kokoro voices available in the asset cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := requireConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()

			cfg := engine.DefaultConfig()
			cfg.BackendKind = "kokoro"
			cfg.CacheRoot = flagOrDefault(flags, "cache-root", cacheRoot, appCfg.Paths.CacheRoot)
			cfg.ModelDir = flagOrDefault(flags, "model-dir", modelDir, appCfg.Paths.ModelDir)
			cfg.AssetBaseURL = flagOrDefault(flags, "asset-base-url", assetBaseURL, appCfg.Paths.AssetBaseURL)
			cfg.ORTLibraryPath = appCfg.Runtime.ORTLibraryPath

			eng, err := engine.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize kokoro engine: %w", err)
			}
			defer eng.Shutdown()

			voices := eng.ListVoices()
			if len(voices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no voices found")
				return nil
			}
			for _, v := range voices {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", v.ID, v.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheRoot, "cache-root", "", "Override the asset cache root directory")
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "Use a local model directory instead of fetching into the cache")
	cmd.Flags().StringVar(&assetBaseURL, "asset-base-url", "", "Override the base URL assets are fetched from")

	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tarjuma/tarjuma/internal/project"
	"github.com/tarjuma/tarjuma/internal/translate"
)

var refineCmd = &cobra.Command{
	Use:   "refine [project_file]",
	Short: "Re-polish the Arabic translations of a captioned project",
	Long: `Refine rewrites every caption's Arabic translation in a more
elevated, poetic register while leaving timings and original text
untouched. The project file is updated in place unless --output names
a different path.

Examples:
  tarjuma refine video.tarjuma.json
  tarjuma refine video.tarjuma.json --provider anthropic
  tarjuma refine video.tarjuma.json --provider openai --model gpt-5`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

func init() {
	rootCmd.AddCommand(refineCmd)

	refineCmd.Flags().
		StringP("provider", "p", "gemini", "Refinement provider (gemini, openai, anthropic)")
	refineCmd.Flags().
		StringP("api-key", "k", "", "Provider API key (or set the provider's env var)")
	refineCmd.Flags().
		String("model", "", "Model to use (provider default when empty)")
	refineCmd.Flags().
		String("prompt", "", "Extra refinement instructions")
	refineCmd.Flags().
		Int("batch-size", 0, "Captions per API request")
}

func runRefine(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	ctx := context.Background()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")

	provider := translate.Provider(strings.ToLower(providerStr))
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar(provider))
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s",
			apiKeyEnvVar(provider),
		)
	}

	proj, err := project.Load(projectPath)
	if err != nil {
		return err
	}
	if len(proj.Lines) == 0 {
		return fmt.Errorf("project has no captions to refine")
	}

	refiner, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		Model:     model,
		Prompt:    prompt,
		BatchSize: batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create refiner: %w", err)
	}

	logger.Infow("Refining translations",
		"project", projectPath,
		"provider", provider,
		"captions", len(proj.Lines),
	)

	lines, err := refiner.Refine(ctx, proj.Lines)
	if err != nil {
		return fmt.Errorf("refinement failed: %w", err)
	}

	if outputPath == "" {
		outputPath = projectPath
	}
	if err := project.Save(proj.WithLines(lines), outputPath); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	logger.Infow("Refinement complete", "project", outputPath)
	return nil
}

func apiKeyEnvVar(provider translate.Provider) string {
	switch provider {
	case translate.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

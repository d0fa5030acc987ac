package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"connectkit/internal/config"
	"connectkit/internal/credentials"
	"connectkit/internal/replicate"
)

// Generate-specific flags
var (
	generateModel        string
	generateAspectRatio  string
	generateOutputDir    string
	generatePollInterval time.Duration
)

// Video generation flags
var (
	videoModel        string
	videoOutputDir    string
	videoPollInterval time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an image with Replicate",
	Long: `Create a Replicate prediction for the configured image model, poll
it until it finishes and download the generated files.

The model is taken from --model or the REPLICATE_IMAGE_MODEL key in the
credentials file.

Examples:
  connectkit generate "a lighthouse at dawn"
  connectkit generate "product shot" --aspect-ratio 16:9 --output-dir ./out`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("missing required argument: prompt\nUsage: connectkit generate <prompt>")
		}
		return nil
	},
	RunE: runGenerate,
}

// generateVideoCmd represents the generate-video command
var generateVideoCmd = &cobra.Command{
	Use:   "generate-video <prompt>",
	Short: "Generate a video with Replicate",
	Long: `Create a Replicate prediction for the configured video model, poll
it until it finishes and download the generated video.

The model is taken from --model or the REPLICATE_VIDEO_MODEL key in the
credentials file. Video predictions typically take one to two minutes.

Examples:
  connectkit generate-video "a person walking through a forest"
  connectkit generate-video "sunset timelapse" --output-dir ./videos`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("missing required argument: prompt\nUsage: connectkit generate-video <prompt>")
		}
		return nil
	},
	RunE: runGenerateVideo,
}

func init() {
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Replicate model as owner/name")
	generateCmd.Flags().StringVar(&generateAspectRatio, "aspect-ratio", "1:1", "output aspect ratio (1:1, 16:9, 9:16, 4:3, 3:2, 21:9)")
	generateCmd.Flags().StringVar(&generateOutputDir, "output-dir", ".", "directory for downloaded files")
	generateCmd.Flags().DurationVar(&generatePollInterval, "poll-interval", replicate.DefaultPollInterval, "prediction poll interval")

	generateVideoCmd.Flags().StringVar(&videoModel, "model", "", "Replicate model as owner/name")
	generateVideoCmd.Flags().StringVar(&videoOutputDir, "output-dir", ".", "directory for downloaded files")
	generateVideoCmd.Flags().DurationVar(&videoPollInterval, "poll-interval", replicate.DefaultPollInterval, "prediction poll interval")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(generateVideoCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}
	if err := creds.RequireReplicate(); err != nil {
		return err
	}

	model, err := resolveModel(generateModel, creds.ReplicateModel, credentials.KeyReplicateModel)
	if err != nil {
		return err
	}

	input := map[string]any{
		"prompt":        args[0],
		"aspect_ratio":  generateAspectRatio,
		"output_format": "png",
	}

	return runPrediction(cmd, newReplicateClient(cfg, creds), predictionRun{
		model:        model,
		input:        input,
		outputDir:    generateOutputDir,
		pollInterval: generatePollInterval,
		ext:          "png",
	})
}

func runGenerateVideo(cmd *cobra.Command, args []string) error {
	cfg, creds, err := loadSetup()
	if err != nil {
		return err
	}
	if err := creds.RequireReplicate(); err != nil {
		return err
	}

	model, err := resolveModel(videoModel, creds.ReplicateVideoModel, credentials.KeyReplicateVideoModel)
	if err != nil {
		return err
	}

	return runPrediction(cmd, newReplicateClient(cfg, creds), predictionRun{
		model:        model,
		input:        map[string]any{"prompt": args[0]},
		outputDir:    videoOutputDir,
		pollInterval: videoPollInterval,
		ext:          "mp4",
	})
}

// newReplicateClient builds the Replicate client, honoring the config
// file's base URL override.
func newReplicateClient(cfg config.Config, creds *credentials.Credentials) *replicate.Client {
	return replicate.NewClient(replicate.ClientConfig{
		APIToken: creds.ReplicateAPIToken,
		BaseURL:  cfg.ReplicateBaseURL,
	})
}

// resolveModel prefers the --model flag over the credentials file entry.
func resolveModel(flagValue, storedValue, key string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if storedValue != "" {
		return storedValue, nil
	}
	return "", &credentials.MissingError{
		Key:  key,
		Hint: "set it in the credentials file or pass --model owner/name",
	}
}

// predictionRun describes one create-poll-download cycle.
type predictionRun struct {
	model        string
	input        map[string]any
	outputDir    string
	pollInterval time.Duration
	ext          string
}

func runPrediction(cmd *cobra.Command, client *replicate.Client, run predictionRun) error {
	out := cmd.OutOrStdout()

	prediction, err := client.CreatePrediction(cmd.Context(), run.model, run.input)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Prediction %s created (%s)\n", prediction.ID, run.model)

	var s *spinner.Spinner
	if isTTY() && !verbose {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Generating..."
		s.Start()
	}

	prediction, err = client.Wait(cmd.Context(), prediction.ID, run.pollInterval)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	urls := prediction.OutputURLs()
	if len(urls) == 0 {
		return fmt.Errorf("prediction %s succeeded but produced no output", prediction.ID)
	}

	paths, err := downloadOutputs(cmd.Context(), run, prediction.ID, urls)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Fprintf(out, "Saved %s\n", path)
	}
	return nil
}

// downloadOutputs fetches all prediction output files concurrently.
func downloadOutputs(ctx context.Context, run predictionRun, predictionID string, urls []string) ([]string, error) {
	httpClient := &http.Client{Timeout: 2 * time.Minute}
	paths := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		url := url
		path := filepath.Join(run.outputDir, outputFileName(predictionID, i, len(urls), run.ext))
		paths[i] = path

		g.Go(func() error {
			return downloadFile(ctx, httpClient, url, path)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// outputFileName names a downloaded output file. The index suffix is
// omitted for single-output predictions.
func outputFileName(predictionID string, index, total int, ext string) string {
	if total == 1 {
		return fmt.Sprintf("replicate_%s.%s", predictionID, ext)
	}
	return fmt.Sprintf("replicate_%s_%d.%s", predictionID, index, ext)
}

// downloadFile streams a URL to a local file.
func downloadFile(ctx context.Context, client *http.Client, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Command cli answers a homework question from the terminal and renders the
// solution as ANSI-styled markdown.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"solvesnap/api/internal/config"
	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/llm/deepseek"
	"solvesnap/api/internal/llm/gemini"
	"solvesnap/api/internal/llm/openai"
	"solvesnap/api/internal/solution"
	"solvesnap/api/internal/util"
)

const solveTimeout = 180 * time.Second

var (
	flagConfig   string
	flagEngine   string
	flagLanguage string
	flagImage    string
	flagRaw      bool
)

func main() {
	root := &cobra.Command{
		Use:   "solvesnap [question]",
		Short: "Solve a homework question with step-by-step explanations",
		Long: `Solve a homework question with step-by-step explanations.

The question is taken from the arguments, or from stdin when no arguments are
given. A photo of the task can be attached with --image.`,
		Args: cobra.ArbitraryArgs,
		RunE: run,
	}
	root.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	root.Flags().StringVarP(&flagEngine, "engine", "e", "", "engine to use (gemini | gpt | deepseek)")
	root.Flags().StringVarP(&flagLanguage, "language", "l", "", "answer language")
	root.Flags().StringVarP(&flagImage, "image", "i", "", "path to an image of the task")
	root.Flags().BoolVar(&flagRaw, "raw", false, "print the raw model answer without rendering")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	question, err := readQuestion(args)
	if err != nil {
		return err
	}

	in := llm.SolveInput{
		Question: question,
		Language: firstNonEmpty(flagLanguage, cfg.DefaultLanguage),
	}
	if flagImage != "" {
		dataURL, err := loadImage(flagImage)
		if err != nil {
			return err
		}
		in.ImageDataURL = dataURL
	}
	if !in.HasQuestion() && !in.HasImage() {
		return fmt.Errorf("nothing to solve: pass a question or --image")
	}

	engines := &llm.Engines{
		Gemini:   gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model),
		OpenAI:   openai.NewWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL),
		Deepseek: deepseek.NewWithBaseURL(cfg.Deepseek.APIKey, cfg.Deepseek.Model, cfg.Deepseek.BaseURL),
		Default:  cfg.DefaultEngine,
	}
	engine, err := engines.GetEngine(firstNonEmpty(flagEngine, cfg.DefaultEngine))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Solving with %s (%s)...\n", engine.Name(), engine.GetModel())

	ctx, cancel := context.WithTimeout(cmd.Context(), solveTimeout)
	defer cancel()

	raw, err := engine.GenerateSolution(ctx, in)
	if err != nil {
		return err
	}
	if flagRaw {
		fmt.Println(raw)
		return nil
	}

	res := solution.Parse(raw)
	md := res.Markdown()
	if md == "" {
		md = raw
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// Rendering is cosmetic; fall back to plain markdown.
		fmt.Println(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func readQuestion(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	st, err := os.Stdin.Stat()
	if err == nil && (st.Mode()&os.ModeCharDevice) != 0 {
		// Interactive terminal with no args: nothing piped in.
		return "", nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func loadImage(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return util.MakeDataURL(util.SniffMimeHTTP(b), base64.StdEncoding.EncodeToString(b)), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

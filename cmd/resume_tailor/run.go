package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/export/docx"
	"github.com/jonathan/resume-tailor/internal/export/pdf"
	"github.com/jonathan/resume-tailor/internal/generator"
	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/render"
	"github.com/jonathan/resume-tailor/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full resume pipeline end-to-end",
	Long: `Runs the generation pipeline without the interactive server: experience -> projects -> skills -> export.

Each step either calls the generation backend or, with the matching --skip flag, copies the profile data through unchanged.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runJobRole        string
	runJobURL         string
	runJobFile        string
	runSkipExperience bool
	runSkipProjects   bool
	runSkipSkills     bool
	runDensities      []int
	runInstruction    string
	runWebResearch    bool
	runUseBrowser     bool
	runVerbose        bool
	runOutDir         string
	runFormat         string
	runRefreshProfile bool
)

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by env and flags)")
	runCmd.Flags().StringVarP(&runJobRole, "job-role", "r", "", "Target job role (required)")
	runCmd.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job-file)")
	runCmd.Flags().StringVarP(&runJobFile, "job-file", "j", "", "Path to a job posting text file (mutually exclusive with --job-url)")
	runCmd.Flags().BoolVar(&runSkipExperience, "skip-experience", false, "Copy profile experiences through without generation")
	runCmd.Flags().BoolVar(&runSkipProjects, "skip-projects", false, "Copy profile projects through without generation")
	runCmd.Flags().BoolVar(&runSkipSkills, "skip-skills", false, "Copy profile skills through without generation")
	runCmd.Flags().IntSliceVar(&runDensities, "densities", nil, "Bullet counts per item, e.g. 5,4,3 (defaults per step)")
	runCmd.Flags().StringVar(&runInstruction, "instruction", "", "Extra instruction passed to every generation call")
	runCmd.Flags().BoolVar(&runWebResearch, "web-research", false, "Let the skills step research the role online")
	runCmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA job postings (requires Chrome)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	runCmd.Flags().StringVarP(&runOutDir, "out-dir", "o", ".", "Directory to write exported files into")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "docx", "Export format: docx, pdf or both")
	runCmd.Flags().BoolVar(&runRefreshProfile, "refresh-profile", false, "Fetch a fresh profile snapshot before running")
	rootCmd.AddCommand(runCmd)
}

func runPipelineCmd(_ *cobra.Command, _ []string) error {
	if runJobRole == "" {
		return fmt.Errorf("--job-role is required")
	}
	if runJobURL != "" && runJobFile != "" {
		return fmt.Errorf("--job-url and --job-file are mutually exclusive")
	}

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	if runUseBrowser {
		cfg.UseBrowser = true
	}
	if runVerbose {
		cfg.Verbose = true
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer closeStore()

	if runRefreshProfile || len(st.ApplicantInfo().Experiences) == 0 {
		snapshot, err := newProfileSource(cfg).Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}
		if err := st.SetApplicantInfo(*snapshot); err != nil {
			return err
		}
	}

	jobDescription, err := resolveJobDescription(ctx, cfg.UseBrowser, cfg.Verbose)
	if err != nil {
		return err
	}

	client, err := newGenClient(ctx, cfg)
	if err != nil {
		return err
	}

	pipe := pipeline.New()
	pipe.SetSharedFields(runJobRole, jobDescription)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintJobPosting(runJobRole, jobDescription)
	}

	if err := runSteps(ctx, st, pipe, client); err != nil {
		return err
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		draft := st.Draft()
		printer.PrintExperiences(draft.Experiences)
		printer.PrintProjects(draft.Projects)
		printer.PrintSkills(draft.Skills)
	}

	return exportDocument(st, runOutDir, runFormat, nil)
}

// resolveJobDescription reads the posting from a file or fetches it from a
// URL. Generation steps tolerate an empty description only when skipped, so
// a missing source is fine for an all-skip run.
func resolveJobDescription(ctx context.Context, useBrowser, verbose bool) (string, error) {
	switch {
	case runJobFile != "":
		data, err := os.ReadFile(runJobFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting file: %w", err)
		}
		return string(data), nil
	case runJobURL != "":
		opts := ingestion.DefaultOptions()
		opts.UseBrowser = useBrowser
		opts.Verbose = verbose
		text, err := ingestion.JobDescriptionFromURL(ctx, runJobURL, opts)
		if err != nil {
			return "", err
		}
		return text, nil
	default:
		return "", nil
	}
}

func runSteps(ctx context.Context, st *store.Store, pipe *pipeline.Controller, client genclient.Client) error {
	experience := generator.NewExperience(st, pipe, client)
	if runSkipExperience {
		if err := experience.Skip(); err != nil {
			return fmt.Errorf("experience step: %w", err)
		}
	} else {
		if err := experience.Generate(ctx, generator.ExperienceOptions{
			Densities:   runDensities,
			Instruction: runInstruction,
		}); err != nil {
			return fmt.Errorf("experience step: %w", err)
		}
		if err := experience.Complete(); err != nil {
			return fmt.Errorf("experience step: %w", err)
		}
	}

	project := generator.NewProject(st, pipe, client)
	if runSkipProjects {
		if err := project.Skip(); err != nil {
			return fmt.Errorf("project step: %w", err)
		}
	} else {
		if err := project.Generate(ctx, generator.ProjectOptions{
			Densities:   runDensities,
			Instruction: runInstruction,
		}); err != nil {
			return fmt.Errorf("project step: %w", err)
		}
		if err := project.Complete(); err != nil {
			return fmt.Errorf("project step: %w", err)
		}
	}

	skills := generator.NewSkills(st, pipe, client)
	if runSkipSkills {
		if err := skills.Skip(); err != nil {
			return fmt.Errorf("skills step: %w", err)
		}
	} else {
		if err := skills.Generate(ctx, generator.SkillsOptions{
			Instruction: runInstruction,
			WebResearch: runWebResearch,
		}); err != nil {
			return fmt.Errorf("skills step: %w", err)
		}
		if err := skills.Complete(); err != nil {
			return fmt.Errorf("skills step: %w", err)
		}
	}
	return nil
}

// exportDocument renders the stored draft and writes the requested formats.
func exportDocument(st *store.Store, outDir, format string, dateValues []string) error {
	snapshot := st.ApplicantInfo()
	draft := st.Draft()
	doc := render.Build(&snapshot, &draft)
	export.ApplyDateOverrides(doc, dateValues)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	formats := strings.Split(strings.ToLower(format), ",")
	if format == "both" {
		formats = []string{"docx", "pdf"}
	}
	for _, f := range formats {
		var err error
		switch strings.TrimSpace(f) {
		case "docx":
			err = writeFile(filepath.Join(outDir, export.Filename(snapshot.BasicInformation.FullName, "docx")), doc, docx.Write)
		case "pdf":
			err = writeFile(filepath.Join(outDir, export.Filename(snapshot.BasicInformation.FullName, "pdf")), doc, pdf.Write)
		default:
			err = fmt.Errorf("unknown export format: %s", f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, doc *render.Document, write func(*render.Document, io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := write(doc, file); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

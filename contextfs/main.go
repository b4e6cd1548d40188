package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fpt/contextfs/internal/app"
	"github.com/fpt/contextfs/internal/config"
	"github.com/fpt/contextfs/internal/source"
	"github.com/fpt/contextfs/internal/tool"
	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/client"
	pkgLogger "github.com/fpt/contextfs/pkg/logger"
	"github.com/fpt/contextfs/pkg/vfs"
)

// resolveStringFlag returns the non-empty value, preferring short flag over long flag
func resolveStringFlag(shortVal, longVal string) string {
	if shortVal != "" {
		return shortVal
	}
	return longVal
}

func printUsage() {
	fmt.Println("contextfs - expose conversation context to an AI agent as a virtual filesystem")
	fmt.Println()
	fmt.Println("Mounted directories:")
	fmt.Println("  /attachments            Files shared with the agent this conversation")
	fmt.Println("  /history                Archived earlier conversations")
	fmt.Println()
	fmt.Println("The agent browses these with ls and view tools on its own; ask it")
	fmt.Println("questions about the mounted content in plain language.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  contextfs                                        # Interactive mode")
	fmt.Println("  contextfs \"Summarize the attached report\"        # One-shot mode")
	fmt.Println("  contextfs -a ./docs \"What files did I share?\"    # Mount ./docs as /attachments")
	fmt.Println("  contextfs -b openai \"Compare the two drafts\"     # Use OpenAI backend")
	fmt.Println("  contextfs -f prompts.txt                         # Multi-turn from file")
	fmt.Println("  contextfs -v \"Debug this\"                        # Verbose debug logging")
	fmt.Println()
}

func main() {
	ctx := context.Background()

	// Define command line flags
	var backend = flag.String("b", "", "LLM backend (anthropic or openai)")
	var backendLong = flag.String("backend", "", "LLM backend (anthropic or openai)")
	var model = flag.String("m", "", "Model name to use")
	var modelLong = flag.String("model", "", "Model name to use")
	var attachmentsDir = flag.String("a", "", "Directory to mount as /attachments")
	var attachmentsDirLong = flag.String("attachments", "", "Directory to mount as /attachments")
	var archiveDir = flag.String("archive", "", "Directory to mount as /history (default: per-project archive)")
	var summarize = flag.Bool("summarize", false, "Generate attachment descriptions with the model")
	var settingsPath = flag.String("settings", "", "Path to settings file")
	var promptFile = flag.String("f", "", "File containing multi-turn prompts separated by '----'")
	var verbose = flag.Bool("v", false, "Enable verbose logging (debug level)")
	var verboseLong = flag.Bool("verbose", false, "Enable verbose logging (debug level)")
	var help = flag.Bool("h", false, "Show this help message")
	var helpLong = flag.Bool("help", false, "Show this help message")

	// Custom usage function
	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}

	// Parse flags
	flag.Parse()

	// Handle help flag
	if *help || *helpLong {
		flag.Usage()
		return
	}

	// Resolve long/short flag conflicts (prefer the one that was set)
	resolvedBackend := resolveStringFlag(*backend, *backendLong)
	resolvedModel := resolveStringFlag(*model, *modelLong)
	resolvedAttachmentsDir := resolveStringFlag(*attachmentsDir, *attachmentsDirLong)
	resolvedVerbose := *verbose || *verboseLong

	// Get remaining arguments as the command
	args := flag.Args()

	// Load settings
	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Printf("Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}

	// Initialize structured logger based on settings
	logLevel := settings.Agent.LogLevel
	if resolvedVerbose {
		logLevel = "debug"
	}
	out := os.Stdout
	pkgLogger.SetGlobalLoggerWithConsoleWriter(pkgLogger.LogLevel(logLevel), out)
	logger := pkgLogger.NewLoggerWithConsoleWriter(pkgLogger.LogLevel(logLevel), out)

	// Override settings with command line arguments
	if resolvedBackend != "" {
		settings.LLM.Backend = resolvedBackend
		if resolvedModel != "" {
			settings.LLM.Model = resolvedModel
		}
	} else if resolvedModel != "" {
		settings.LLM.Model = resolvedModel
	}
	if resolvedAttachmentsDir != "" {
		settings.Sources.AttachmentsDir = resolvedAttachmentsDir
	}
	if *archiveDir != "" {
		settings.Sources.ArchiveDir = *archiveDir
	}
	if *summarize {
		settings.Sources.Summarize = true
	}

	// Validate settings
	if err := config.ValidateSettings(settings); err != nil {
		logger.Error("Settings validation failed", "error", err)
		os.Exit(1)
	}

	// Create LLM client based on settings
	llmClient, err := client.NewLLMClient(settings.LLM)
	if err != nil {
		logger.Error("Failed to create LLM client", "error", err)
		os.Exit(1)
	}

	// Build the virtual filesystem from the configured sources
	fs, err := buildVirtualFileSystem(ctx, settings, llmClient, logger)
	if err != nil {
		logger.Error("Failed to build virtual filesystem", "error", err)
		os.Exit(1)
	}

	vfsToolManager := tool.NewVFSToolManager(fs, settings.View.MaxBytes)
	toolManager := tool.NewCompositeToolManager(vfsToolManager)

	a := app.NewAgent(llmClient, toolManager, settings, logger, out)

	// Handle multi-turn prompt file if specified
	if *promptFile != "" {
		executeMultiTurnFile(ctx, a, *promptFile)
		return
	}

	// Determine if we should run in interactive mode or one-shot mode
	if len(args) > 0 {
		userInput := strings.Join(args, " ")
		executeCommand(ctx, a, userInput)
	} else {
		historyFile := ""
		if userConfig, err := config.DefaultUserConfig(); err == nil {
			if path, err := userConfig.GetProjectHistoryFile("."); err == nil {
				historyFile = path
			}
		}
		app.StartInteractiveMode(ctx, a, historyFile)
	}
}

// buildVirtualFileSystem assembles the mount list from settings: an in-memory
// attachment snapshot when an attachments directory is configured, and the
// conversation archive, falling back to the per-project archive directory.
func buildVirtualFileSystem(ctx context.Context, settings *config.Settings, llmClient domain.LLM, logger *pkgLogger.Logger) (*vfs.VirtualFileSystem, error) {
	var mounts []vfs.MountPoint

	if dir := settings.Sources.AttachmentsDir; dir != "" {
		attachments, err := source.LoadAttachmentsDir(dir)
		if err != nil {
			return nil, err
		}
		if settings.Sources.Summarize {
			structuredClient, err := client.NewStructuredClient[source.AttachmentSummary](llmClient)
			if err != nil {
				logger.Warn("Summarization unavailable for this backend", "error", err)
			} else {
				attachments = source.NewSummarizer(structuredClient).DescribeAll(ctx, attachments)
			}
		}
		mount, err := source.NewAttachmentSource(attachments).Mount()
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, mount)
		logger.DebugWithIntention(pkgLogger.IntentionStatus, "Mounted attachments",
			"dir", dir, "files", len(attachments))
	}

	archiveDir := settings.Sources.ArchiveDir
	if archiveDir == "" {
		userConfig, err := config.DefaultUserConfig()
		if err == nil {
			archiveDir, _ = userConfig.GetProjectArchiveDir(".")
		}
	}
	if archiveDir != "" {
		// A mount whose directory is missing would advertise a history
		// entry that cannot be listed; skip it instead.
		if info, statErr := os.Stat(archiveDir); statErr != nil || !info.IsDir() {
			logger.Warn("Archive directory not found, skipping history mount", "dir", archiveDir)
		} else {
			mount, err := source.NewArchiveSource(archiveDir).Mount()
			if err != nil {
				return nil, err
			}
			mounts = append(mounts, mount)
			logger.DebugWithIntention(pkgLogger.IntentionStatus, "Mounted archive", "dir", archiveDir)
		}
	}

	return vfs.New(mounts...)
}

func executeCommand(ctx context.Context, a *app.Agent, userInput string) {
	fmt.Print("\n")

	response, err := a.Invoke(ctx, userInput)
	if err != nil {
		fmt.Printf("Command execution failed: %v\n", err)
		os.Exit(1)
	}

	w := a.OutWriter()
	model := a.GetLLMClient().ModelID()
	app.WriteResponseHeader(w, model, false)
	fmt.Fprintln(w, response.Content())
	printTokenUsage(a.GetLLMClient())
}

func executeMultiTurnFile(ctx context.Context, a *app.Agent, filePath string) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("Failed to read prompt file '%s': %v\n", filePath, err)
		os.Exit(1)
	}

	prompts := strings.Split(string(content), "----")
	if len(prompts) == 0 {
		fmt.Printf("No prompts found in file '%s'\n", filePath)
		os.Exit(1)
	}

	fmt.Printf("Executing %d turns from file: %s (memory preserved between turns)\n\n", len(prompts), filePath)

	for i, prompt := range prompts {
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			continue
		}

		fmt.Printf("Turn %d/%d:\n", i+1, len(prompts))
		fmt.Printf("Prompt: %s\n", prompt)
		fmt.Print("\n")

		response, err := a.Invoke(ctx, prompt)
		if err != nil {
			fmt.Printf("Turn %d failed: %v\n", i+1, err)
			continue
		}

		w := a.OutWriter()
		model := a.GetLLMClient().ModelID()
		app.WriteResponseHeader(w, model, false)
		fmt.Fprintln(w, response.Content())
		fmt.Fprintf(w, "%s\n\n", strings.Repeat("-", 60))
		printTokenUsage(a.GetLLMClient())
	}

	fmt.Println("All turns completed.")
}

// printTokenUsage prints a [usage] line to stderr if the client exposes token usage.
// The line is written to stderr so it does not pollute stdout output parsing in tests.
// Format: [usage] input=N output=N total=N cached=N
func printTokenUsage(llm domain.LLM) {
	provider, ok := llm.(domain.TokenUsageProvider)
	if !ok {
		return
	}
	usage, ok := provider.LastTokenUsage()
	if !ok {
		return
	}
	fmt.Fprintf(os.Stderr, "[usage] input=%d output=%d total=%d cached=%d cache_creation=%d\n",
		usage.InputTokens, usage.OutputTokens, usage.TotalTokens, usage.CachedTokens, usage.CacheCreationTokens)
}

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
)

// SlashCommand represents a command that starts with /
type SlashCommand struct {
	Name        string
	Description string
	Handler     func(*Agent) bool // Returns true if should exit
}

// getSlashCommands returns all available slash commands
func getSlashCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:        "help",
			Description: "Show available commands and usage information",
			Handler: func(a *Agent) bool {
				showInteractiveHelp()
				return false
			},
		},
		{
			Name:        "log",
			Description: "Show conversation history (preview)",
			Handler: func(a *Agent) bool {
				history := a.GetConversationPreview(1000)
				if strings.TrimSpace(history) == "" {
					fmt.Println("No conversation history found.")
					return false
				}
				fmt.Println(history)
				return false
			},
		},
		{
			Name:        "clear",
			Description: "Clear conversation history and start fresh",
			Handler: func(a *Agent) bool {
				a.ClearHistory()
				fmt.Println("Conversation history cleared.")
				return false
			},
		},
		{
			Name:        "quit",
			Description: "Exit the interactive session",
			Handler: func(a *Agent) bool {
				fmt.Println("Goodbye!")
				return true
			},
		},
		{
			Name:        "exit",
			Description: "Exit the interactive session (alias for quit)",
			Handler: func(a *Agent) bool {
				fmt.Println("Goodbye!")
				return true
			},
		},
	}
}

// handleSlashCommand processes commands that start with /
// Returns true if the command requests program exit, false otherwise
func handleSlashCommand(input string, a *Agent) bool {
	// Check if this is just "/" - show command selector
	if strings.TrimSpace(input) == "/" {
		return showCommandSelector(a)
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	commandName := strings.TrimPrefix(parts[0], "/")
	commands := getSlashCommands()

	// Find and execute the command
	for _, cmd := range commands {
		if cmd.Name == commandName {
			return cmd.Handler(a)
		}
	}

	// Command not found - show available commands
	fmt.Printf("Unknown command: /%s\n", commandName)
	fmt.Println("Available commands:")
	for _, cmd := range commands {
		fmt.Printf("  /%s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\nTip: Type just '/' to see an interactive command selector.")
	return false
}

// showCommandSelector shows an interactive command selector using promptui
func showCommandSelector(a *Agent) bool {
	commands := getSlashCommands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Name | cyan }} - {{ .Description | faint }}",
		Inactive: "  {{ .Name | cyan }} - {{ .Description | faint }}",
		Selected: "{{ .Name | red | cyan }}",
	}

	searcher := func(input string, index int) bool {
		command := commands[index]
		name := strings.ReplaceAll(strings.ToLower(command.Name), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			fmt.Println("\nCancelled.")
			return false
		}
		fmt.Printf("Command selection failed: %v\n", err)
		return false
	}
	return commands[i].Handler(a)
}

// StartInteractiveMode runs the readline-based REPL. historyFile may be empty
// to disable persistent input history.
func StartInteractiveMode(ctx context.Context, a *Agent, historyFile string) {
	rlCfg := &readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		AutoComplete:      createAutoCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		HistoryLimit:      2000,
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Printf("Failed to initialize interactive mode: %v\n", err)
		fmt.Println("Please use one-shot mode instead: contextfs \"your request here\"")
		return
	}
	defer rl.Close()

	WriteSplashScreen(os.Stdout, true)
	fmt.Printf("Model: %s\n", a.GetLLMClient().ModelID())
	fmt.Println("Commands start with '/', everything else goes to the agent.")
	fmt.Println("Ask about the mounted files; the agent reads them with ls and view.")
	fmt.Println(strings.Repeat("=", 60))

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		userInput := strings.TrimSpace(line)
		if userInput == "" {
			continue
		}

		if strings.HasPrefix(userInput, "/") {
			if handleSlashCommand(userInput, a) {
				break
			}
			continue
		}

		// Execute with a cancellable context so Ctrl+C aborts the turn,
		// not the session.
		execCtx, cancel := context.WithCancel(ctx)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT)

		go func() {
			select {
			case <-sigChan:
				fmt.Println()
				cancel()
			case <-execCtx.Done():
			}
		}()

		response, invokeErr := a.Invoke(execCtx, userInput)

		wasCanceled := execCtx.Err() == context.Canceled

		signal.Stop(sigChan)
		close(sigChan)
		cancel()

		if invokeErr != nil {
			if wasCanceled {
				fmt.Println("Ready for next command.")
			} else {
				fmt.Printf("Error: %v\n", invokeErr)
			}
			continue
		}

		w := a.OutWriter()
		WriteResponseHeader(w, a.GetLLMClient().ModelID(), true)
		fmt.Fprintln(w, response.Content())
	}
}

// createAutoCompleter creates an autocompletion function for readline
func createAutoCompleter() *readline.PrefixCompleter {
	commands := getSlashCommands()
	var pcItems []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		pcItems = append(pcItems, readline.PcItem("/"+cmd.Name))
	}
	pcItems = append(pcItems, readline.PcItem("/"))
	for _, pattern := range []string{
		"What files are in", "Summarize", "Compare", "List the attachments",
		"Find the conversation about", "Show me", "What does",
	} {
		pcItems = append(pcItems, readline.PcItem(pattern))
	}
	return readline.NewPrefixCompleter(pcItems...)
}

func showInteractiveHelp() {
	commands := getSlashCommands()
	fmt.Println("\nInteractive Commands:")
	fmt.Println("  /                - Show interactive command selector")
	for _, cmd := range commands {
		fmt.Printf("  /%-15s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\nKeys:")
	fmt.Println("  Ctrl+C           - Cancel current input or running turn")
	fmt.Println("  Ctrl+R           - Search input history")
	fmt.Println("  Tab              - Auto-complete commands and patterns")
	fmt.Println("\nExample requests:")
	fmt.Println("  > What files did I share?")
	fmt.Println("  > Summarize the report in the attachments")
	fmt.Println("  > Find the earlier conversation about deployment")
	fmt.Println("\nThe agent browses mounted files with ls and view on its own.")
}

package cli

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

// cmdCompletion generates shell completion scripts.
func (a *app) cmdCompletion(args []string) int {
	shell := ""
	alias := ""

	for _, arg := range args {
		switch {
		case arg == "-h" || arg == "--help":
			a.printCompletionUsage()
			return livetest.ExitSuccess
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			a.out.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return 2
		case strings.HasPrefix(arg, "-"):
			a.out.ErrorPrefix("completion: unknown flag: %s", arg)
			a.printCompletionUsage()
			return 2
		default:
			if shell != "" {
				a.out.ErrorPrefix("completion: unexpected argument: %s", arg)
				return 2
			}
			shell = arg
		}
	}

	if shell == "" {
		a.out.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		a.printCompletionUsage()
		return 2
	}

	cmdName := "livetest"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		a.out.Print("%s", generateBashCompletion(cmdName))
	case "zsh":
		a.out.Print("%s", generateZshCompletion(cmdName))
	case "fish":
		a.out.Print("%s", generateFishCompletion(cmdName))
	default:
		a.out.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return 2
	}
	return livetest.ExitSuccess
}

func (a *app) printCompletionUsage() {
	w := a.out

	w.HelpTitle("livetest completion - generate shell completion scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("livetest completion <shell> [--alias=<name>]")

	w.HelpSection("Arguments:")
	w.HelpFlag("<shell>", "Shell type: bash, zsh, or fish", 14)

	w.HelpSection("Options:")
	w.HelpFlag("--alias=<name>", "Generate completion for command alias", 14)
	w.HelpFlag("-h, --help", "Show this help", 14)

	w.HelpSection("Installation:")
	w.Println("  Bash:  eval \"$(livetest completion bash)\"")
	w.Println("  Zsh:   eval \"$(livetest completion zsh)\"")
	w.Println("  Fish:  livetest completion fish | source")
	w.Println("")
}

// commands lists the subcommands with their descriptions.
var commands = []struct{ name, usage string }{
	{"config", "Show or validate the resolved settings"},
	{"completion", "Generate shell completion"},
	{"version", "Show version information"},
	{"help", "Show help"},
}

var (
	configSubcommands = []string{"show", "validate", "schema"}
	completionShells  = []string{"bash", "zsh", "fish"}
	ansiModes         = []string{"auto", "on", "off", "simple"}
)

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

// flagNames returns every spelling of the global flags.
func flagNames() []string {
	var names []string
	for _, f := range flagSpecs {
		if f.short != "" {
			names = append(names, f.short)
		}
		names = append(names, f.long)
	}
	return append(names, "--help", "--version")
}

func aliasNote(cmdName, hint string) string {
	if cmdName == "livetest" {
		return ""
	}
	return fmt.Sprintf("\n# This completion is generated for the alias %q\n# Make sure the alias is defined: %s\n", cmdName, hint)
}

func generateBashCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	return fmt.Sprintf(`# livetest bash completion
# Add to ~/.bashrc: eval "$(livetest completion bash)"
%s
%s() {
    local cur prev words cword
    _init_completion || return

    local commands="%s"
    local flags="%s"

    case "${prev}" in
        config)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            return
            ;;
        --ansi)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            return
            ;;
        --config|--base-dir)
            _filedir
            return
            ;;
        --minimum-expected|--parallel|-p)
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "${flags}" -- "${cur}"))
        return
    fi

    # The input file is the only positional argument besides the commands.
    COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
    _filedir
}

complete -F %s %s
`, aliasNote(cmdName, fmt.Sprintf("alias %s=livetest", cmdName)), funcName,
		strings.Join(commandNames(), " "), strings.Join(flagNames(), " "),
		strings.Join(configSubcommands, " "), strings.Join(completionShells, " "), strings.Join(ansiModes, " "),
		funcName, cmdName)
}

func generateZshCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var cmds strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&cmds, "        '%s:%s'\n", c.name, c.usage)
	}

	var flags strings.Builder
	for _, f := range flagSpecs {
		fmt.Fprintf(&flags, "        %s\n", zshFlag(f))
	}

	return fmt.Sprintf(`#compdef %s
# livetest zsh completion
# Add to ~/.zshrc: eval "$(livetest completion zsh)"
%s
%s() {
    local -a commands flags

    commands=(
%s    )

    flags=(
%s        '(- *)--help[Show help]'
        '(- *)--version[Show version]'
    )

    case "${words[2]}" in
        config)
            _values 'config subcommand' %s
            ;;
        completion)
            _values 'shell' %s
            ;;
        *)
            _arguments -s $flags[@] \
                '1: :->first'
            if [[ $state == first ]]; then
                _describe -t commands 'command' commands
                _files
            fi
            ;;
    esac
}

compdef %s %s
`, cmdName, aliasNote(cmdName, fmt.Sprintf("alias %s=livetest", cmdName)), funcName,
		cmds.String(), flags.String(),
		strings.Join(configSubcommands, " "), strings.Join(completionShells, " "),
		funcName, cmdName)
}

// zshFlag renders one _arguments spec.
func zshFlag(f flagSpec) string {
	desc := strings.NewReplacer("[", "(", "]", ")", "'", "").Replace(f.usage)
	var action string
	switch f.long {
	case "--ansi":
		action = ":mode:(" + strings.Join(ansiModes, " ") + ")"
	case "--config":
		action = ":file:_files"
	case "--base-dir":
		action = ":directory:_directories"
	default:
		if f.value != "" {
			action = ":" + strings.Trim(f.value, "<>") + ":"
		}
	}
	if f.short == "" {
		return fmt.Sprintf("'%s[%s]%s'", f.long, desc, action)
	}
	return fmt.Sprintf("'(%s %s)'{%s,%s}'[%s]%s'", f.short, f.long, f.short, f.long, desc, action)
}

func generateFishCompletion(cmdName string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# livetest fish completion\n# Add to config: livetest completion fish | source\n%s\n",
		aliasNote(cmdName, fmt.Sprintf("alias %s livetest", cmdName)))

	for _, c := range commands {
		fmt.Fprintf(&sb, "complete -c %s -n '__fish_use_subcommand' -a '%s' -d '%s'\n", cmdName, c.name, c.usage)
	}

	sb.WriteString("\n# Config subcommands\n")
	for _, sub := range configSubcommands {
		fmt.Fprintf(&sb, "complete -c %s -f -n '__fish_seen_subcommand_from config' -a '%s'\n", cmdName, sub)
	}

	sb.WriteString("\n# Shells\n")
	for _, shell := range completionShells {
		fmt.Fprintf(&sb, "complete -c %s -f -n '__fish_seen_subcommand_from completion' -a '%s'\n", cmdName, shell)
	}

	sb.WriteString("\n# Flags\n")
	for _, f := range flagSpecs {
		line := fmt.Sprintf("complete -c %s -l %s", cmdName, strings.TrimPrefix(f.long, "--"))
		if f.short != "" {
			line += " -s " + strings.TrimPrefix(f.short, "-")
		}
		switch f.long {
		case "--ansi":
			line += " -x -a '" + strings.Join(ansiModes, " ") + "'"
		case "--config", "--base-dir":
			line += " -r -F"
		default:
			if f.value != "" {
				line += " -x"
			}
		}
		fmt.Fprintf(&sb, "%s -d '%s'\n", line, strings.ReplaceAll(f.usage, "'", ""))
	}
	fmt.Fprintf(&sb, "complete -c %s -l help -s h -d 'Show help'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -l version -d 'Show version'\n", cmdName)

	return sb.String()
}

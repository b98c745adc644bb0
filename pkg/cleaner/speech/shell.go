package speech

import (
	"regexp"
	"strings"
)

// homePhrase replaces '~' in spoken paths.
const homePhrase = "your home directory"

// commandPattern maps one recognized command-line shape to a sentence.
type commandPattern struct {
	re     *regexp.Regexp
	render func(m []string) string
}

var promptPrefix = regexp.MustCompile(`^(?:\$|%|>)\s+`)

// shellCommands is checked in order; the first match wins.
var shellCommands = []commandPattern{
	{
		re: regexp.MustCompile(`^cd(?:\s+(.+))?$`),
		render: func(m []string) string {
			path := strings.TrimSpace(m[1])
			if path == "" {
				path = "~"
			}
			return "First, change directory to " + strings.ReplaceAll(path, "~", homePhrase) + "."
		},
	},
	{
		re: regexp.MustCompile(`^ls(?:\s.*)?$`),
		render: func([]string) string {
			return "Now, list the files in the directory."
		},
	},
	{
		re: regexp.MustCompile(`^unzip\s+(.+)$`),
		render: func(m []string) string {
			args := positional(m[1])
			if len(args) == 0 {
				return ""
			}
			return "Next, unzip the file named " + args[0] + "."
		},
	},
	{
		re: regexp.MustCompile(`^python3?\s+-m\s+venv\s+(.+)$`),
		render: func(m []string) string {
			args := positional(m[1])
			if len(args) == 0 {
				return ""
			}
			return "Create a virtual environment named " + args[len(args)-1] + "."
		},
	},
	{
		re: regexp.MustCompile(`^pip3?\s+install\s+-r\s+(\S+)`),
		render: func(m []string) string {
			return "Install the packages listed in " + m[1] + " with pip."
		},
	},
	{
		re: regexp.MustCompile(`^pip3?\s+install\s+(.+)$`),
		render: func(m []string) string {
			args := positional(m[1])
			if len(args) == 0 {
				return ""
			}
			return "Install " + strings.Join(args, " and ") + " with pip."
		},
	},
	{
		re: regexp.MustCompile(`^(?:source|\.)\s+\S*activate$`),
		render: func([]string) string {
			return "Activate the virtual environment."
		},
	},
}

// TranslateCommand paraphrases one shell command line as an instruction.
// Unrecognized commands are read out verbatim. Blank input yields "".
func TranslateCommand(line string) string {
	cmd := strings.TrimSpace(promptPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
	if cmd == "" {
		return ""
	}

	for _, p := range shellCommands {
		m := p.re.FindStringSubmatch(cmd)
		if m == nil {
			continue
		}
		if sentence := p.render(m); sentence != "" {
			return sentence
		}
		break
	}

	return "Run the command: " + cmd + "."
}

// positional returns the non-flag arguments of an argument string.
func positional(args string) []string {
	var out []string
	for _, f := range strings.Fields(args) {
		if strings.HasPrefix(f, "-") {
			continue
		}
		out = append(out, f)
	}
	return out
}

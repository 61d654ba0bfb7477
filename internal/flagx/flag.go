// Package flagx holds small helpers for sharing os.Args between several
// independent flag sets (config file lookup, server flags, client flags).
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags.
//
// Supported formats:
//
//	-c conf.json        flag and value as separate arguments
//	--config=conf.json  flag and value joined by '='
//	-x                  bare flag (boolean), when the next token is another flag
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag extracts the config file path given via -c, -config or
// --config.
// Other arguments are ignored. Empty string means no file was requested.
func ConfigFileFlag(args []string) string {
	var config string

	filtered := FilterArgs(args, []string{"-c", "-config", "--config"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(filtered)

	return config
}
